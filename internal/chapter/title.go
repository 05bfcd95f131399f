package chapter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	maxTitleRunes   = 100
	maxCleanedRunes = 80

	// numerals accepted in numbered markers: ASCII digits and CJK numerals.
	numerals = `\d一二三四五六七八九十百千`
)

// Predicate reports whether a trimmed line looks like a chapter title.
type Predicate func(line string) bool

func matches(pattern string) Predicate {
	re := regexp.MustCompile(pattern)
	return re.MatchString
}

// titlePredicates is an unordered set: a line is a title if any predicate
// accepts it.
var titlePredicates = map[string]Predicate{
	"cjk-ordinal":     matches(`^第[` + numerals + `]+[章篇节]`),
	"numeral-marker":  matches(`^[` + numerals + `]+[.、\s\x{3000}]`),
	"numeral-chapter": matches(`^[` + numerals + `]+[章篇节]`),
	"chapter-keyword": matches(`(?i)^chapter\s+\d+`),
	"section-keyword": matches(`(?i)^section\s+\d+`),
	"numbered-title":  matches(`^\d+\.\s*[\x{4e00}-\x{9fa5}a-zA-Z]`),
	"markdown":        matches(`^#+\s+`),
	"equals-banner":   matches(`^={3,}.*={3,}$`),
	"dash-banner":     matches(`^-{3,}.*-{3,}$`),
	"bracketed":       matches(`^\[.*\]$`),
	"clock-prefix":    matches(`^\d{1,2}[:\s]`),
}

// IsTitle reports whether line, already trimmed, is a chapter title.
func IsTitle(line string) bool {
	n := utf8.RuneCountInString(line)
	if n < 1 || n >= maxTitleRunes {
		return false
	}
	for _, p := range titlePredicates {
		if p(line) {
			return true
		}
	}
	return false
}

// skippable reports lines that are never titles: blanks and rules made
// only of '-', '_', '=' and whitespace.
func skippable(line string) bool {
	if line == "" {
		return true
	}
	for _, r := range line {
		if r != '-' && r != '_' && r != '=' && !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}

var titleStrippers = []*regexp.Regexp{
	regexp.MustCompile(`^#+\s*`),
	regexp.MustCompile(`={3,}\s*$`),
	regexp.MustCompile(`-{3,}\s*$`),
	regexp.MustCompile(`^\[\s*`),
	regexp.MustCompile(`\s*\]$`),
}

// CleanTitle removes heading markers, trailing rules and brackets, and
// limits the result to 80 runes. CleanTitle(CleanTitle(s)) == CleanTitle(s).
func CleanTitle(title string) string {
	for {
		next := cleanOnce(title)
		if next == title {
			return next
		}
		title = next
	}
}

func cleanOnce(s string) string {
	for _, re := range titleStrippers {
		s = re.ReplaceAllString(s, "")
	}
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxCleanedRunes {
		s = string([]rune(s)[:maxCleanedRunes])
	}
	return s
}
