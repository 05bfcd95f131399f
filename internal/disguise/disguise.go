// Package disguise interleaves synthetic log lines with document text so a
// page reads like service output.
package disguise

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"time"
)

// TimestampLayout is the second-granularity clock format used in synthetic lines.
const TimestampLayout = "2006-01-02 15:04:05"

var (
	levels = []string{"INFO", "DEBUG", "WARN", "ERROR"}

	components = []string{
		"DatabaseManager", "UserService", "FileProcessor", "CacheManager",
		"NetworkClient", "DataValidator", "AuthService", "LogManager",
		"ConfigLoader", "APIHandler", "StorageService", "TaskScheduler",
	}

	actions = []string{
		"initialized successfully", "processing request", "data validation passed",
		"cache updated", "connection established", "operation completed",
		"warning threshold reached", "error occurred during processing",
		"user authenticated", "file loaded", "database query executed",
		"memory usage optimized", "service restarted", "timeout detected",
	}

	logPattern = regexp.MustCompile(`^\[\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\] (\w+) \w+:`)
)

// Rand is the source of choices for synthetic lines. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Clock supplies timestamps for synthetic lines.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Line is one row of mixed output. LineNumber is the zero-based document
// line of a genuine row and -1 for a synthetic one.
type Line struct {
	Text       string
	Genuine    bool
	LineNumber int
}

// Options controls whether and how densely a page is disguised.
type Options struct {
	Enabled bool
	Ratio   float64
}

// Mixer produces disguised pages.
type Mixer struct {
	rand  Rand
	clock Clock
}

// NewMixer returns a Mixer drawing from r and c. A nil r is seeded from the
// current time; a nil c uses the wall clock.
func NewMixer(r Rand, c Clock) *Mixer {
	if r == nil {
		r = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c == nil {
		c = systemClock{}
	}
	return &Mixer{rand: r, clock: c}
}

// New returns a Mixer with a deterministic generator seeded by seed.
func New(seed int64) *Mixer {
	return NewMixer(rand.New(rand.NewSource(seed)), nil)
}

// LinesPerContentLine returns max(1, round(ratio*10)) with ratio clamped to
// [0,1]. A ratio of 0 still yields one synthetic line per genuine line.
func LinesPerContentLine(ratio float64) int {
	if math.IsNaN(ratio) || ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	k := int(math.Round(ratio * 10))
	if k < 1 {
		k = 1
	}
	return k
}

// Mix emits, for each content line, k synthetic lines followed by the
// genuine line. The i-th genuine line maps to document line startLine+i.
func (m *Mixer) Mix(content []string, startLine int, ratio float64) []Line {
	k := LinesPerContentLine(ratio)
	out := make([]Line, 0, len(content)*(k+1))
	for i, text := range content {
		for j := 0; j < k; j++ {
			out = append(out, Line{Text: m.Synthetic(), LineNumber: -1})
		}
		out = append(out, Line{Text: text, Genuine: true, LineNumber: startLine + i})
	}
	return out
}

// Render returns the page as-is when disguise is disabled and mixed
// otherwise.
func (m *Mixer) Render(content []string, startLine int, opts Options) []Line {
	if !opts.Enabled {
		return Passthrough(content, startLine)
	}
	return m.Mix(content, startLine, opts.Ratio)
}

// Synthetic returns one fake log line.
func (m *Mixer) Synthetic() string {
	ts := m.clock.Now().Format(TimestampLayout)
	level := levels[m.rand.Intn(len(levels))]
	component := components[m.rand.Intn(len(components))]
	action := actions[m.rand.Intn(len(actions))]
	return fmt.Sprintf("[%s] %s %s: %s", ts, level, component, action)
}

// Passthrough tags every content line as genuine.
func Passthrough(content []string, startLine int) []Line {
	out := make([]Line, len(content))
	for i, text := range content {
		out[i] = Line{Text: text, Genuine: true, LineNumber: startLine + i}
	}
	return out
}

// Genuine returns the genuine lines of mixed output in order.
func Genuine(lines []Line) []Line {
	var out []Line
	for _, l := range lines {
		if l.Genuine {
			out = append(out, l)
		}
	}
	return out
}

// LooksLikeLog reports whether text has the shape of a synthetic line. It
// is a display hint only; use Line.Genuine to tell real text apart.
func LooksLikeLog(text string) bool {
	return logPattern.MatchString(text)
}

// Level returns the level word of a log-shaped line, or "".
func Level(text string) string {
	m := logPattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
