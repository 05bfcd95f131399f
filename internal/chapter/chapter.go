// Package chapter splits a document's lines into titled, contiguous spans.
package chapter

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
)

const (
	// FullTextTitle names the single span produced when no title line is found.
	FullTextTitle = "Full Text"
	// PrefaceTitle names the span holding text that precedes the first title.
	PrefaceTitle = "Preface"
)

// Span is a contiguous, inclusive range of document lines with a title.
type Span struct {
	Title      string `json:"title"`
	StartLine  int    `json:"start_line"`
	EndLine    int    `json:"end_line"`
	LineCount  int    `json:"line_count"`
	DocumentID string `json:"document_id,omitempty"`
}

// Contains reports whether the zero-based line falls inside the span.
func (s Span) Contains(line int) bool {
	return line >= s.StartLine && line <= s.EndLine
}

// Same reports whether two spans name the same chapter. The start line
// disambiguates duplicate titles.
func (s Span) Same(o Span) bool {
	return s.Title == o.Title && s.StartLine == o.StartLine
}

func (s Span) String() string {
	return fmt.Sprintf("%s [%d-%d]", s.Title, s.StartLine, s.EndLine)
}

func (s *Span) close(end int) {
	s.EndLine = end
	s.LineCount = s.EndLine - s.StartLine + 1
}

// Source yields the current lines of a document.
type Source interface {
	Lines(ctx context.Context, documentID string) ([]string, error)
}

// Detector finds chapter titles in a document.
type Detector struct {
	Logger *log.Logger
}

// NewDetector returns a Detector that logs recovered failures to logger.
// A nil logger discards them.
func NewDetector(logger *log.Logger) *Detector {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Detector{Logger: logger}
}

// Detect splits lines into spans using the default detector.
func Detect(lines []string) []Span {
	return (&Detector{}).Detect("", lines)
}

// Detect scans lines once and returns ordered spans covering every line.
// It never fails: an internal error degrades to a single Full Text span.
func (d *Detector) Detect(documentID string, lines []string) (spans []Span) {
	defer func() {
		if r := recover(); r != nil {
			d.logf("detect %q: recovered: %v", documentID, r)
			spans = []Span{FullText(documentID, len(lines))}
		}
	}()

	total := len(lines)
	if total == 0 {
		return []Span{FullText(documentID, 0)}
	}

	var current *Span
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if skippable(line) || !IsTitle(line) {
			continue
		}
		switch {
		case current != nil:
			current.close(i - 1)
			spans = append(spans, *current)
		case i > 0 && hasText(lines[:i]):
			preface := Span{Title: PrefaceTitle, StartLine: 0, DocumentID: documentID}
			preface.close(i - 1)
			spans = append(spans, preface)
		}
		start := i
		if current == nil && len(spans) == 0 {
			// Leading blank lines belong to the first chapter.
			start = 0
		}
		current = &Span{
			Title:      CleanTitle(line),
			StartLine:  start,
			EndLine:    total - 1,
			DocumentID: documentID,
		}
	}

	if current != nil {
		current.close(total - 1)
		spans = append(spans, *current)
	}

	if len(spans) == 0 {
		return []Span{FullText(documentID, total)}
	}
	return spans
}

// DetectSource reads the document from src and detects its chapters. When
// the document cannot be read the returned spans hold the Unreadable
// placeholder and err describes the failure.
func (d *Detector) DetectSource(ctx context.Context, src Source, documentID string) ([]Span, error) {
	lines, err := src.Lines(ctx, documentID)
	if err != nil {
		d.logf("detect %q: %v", documentID, err)
		return []Span{Unreadable(documentID)}, err
	}
	return d.Detect(documentID, lines), nil
}

// FullText returns the span covering a whole document of total lines.
// An empty document yields an empty span.
func FullText(documentID string, total int) Span {
	s := Span{Title: FullTextTitle, DocumentID: documentID}
	s.close(total - 1)
	return s
}

// Unreadable is the placeholder span listed for a document that could not be read.
func Unreadable(documentID string) Span {
	return Span{Title: FullTextTitle, StartLine: 0, EndLine: 0, LineCount: 1, DocumentID: documentID}
}

func (d *Detector) logf(format string, args ...any) {
	if d == nil || d.Logger == nil {
		return
	}
	d.Logger.Printf(format, args...)
}

func hasText(lines []string) bool {
	for _, l := range lines {
		if !skippable(strings.TrimSpace(l)) {
			return true
		}
	}
	return false
}
