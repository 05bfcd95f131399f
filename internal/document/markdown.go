package document

import (
	"fmt"
	"os"
	"strings"
)

// MarkdownFormat implements Format for Markdown files.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

// Lines returns the file's lines with any YAML front matter blanked out.
// Line numbers stay the same as in the file.
func (f *MarkdownFormat) Lines(filename string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	text, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, filename)
	}
	lines := SplitLines(text)
	stripFrontMatter(lines)
	return lines, nil
}

func stripFrontMatter(lines []string) {
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != "---" {
		return
	}
	for end := 1; end < len(lines); end++ {
		if t := strings.TrimSpace(lines[end]); t == "---" || t == "..." {
			for i := 0; i <= end; i++ {
				lines[i] = ""
			}
			return
		}
	}
}
