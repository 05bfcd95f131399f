package session

import (
	"fmt"
	"testing"

	"github.com/metcalfc/trr/internal/chapter"
)

func sessionWithLines(start, n int) *Session {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("line %d", start+i)
	}
	sp := chapter.Span{Title: "T", StartLine: start, EndLine: start + n - 1, LineCount: n}
	return &Session{Chapters: []chapter.Span{sp}, CurrentLines: lines}
}

func TestPage(t *testing.T) {
	s := sessionWithLines(100, 120)

	tests := []struct {
		n, perPage             int
		number, total          int
		startLine, endLine, ln int
	}{
		{1, 50, 1, 3, 100, 149, 50},
		{2, 50, 2, 3, 150, 199, 50},
		{3, 50, 3, 3, 200, 219, 20},
		{9, 50, 3, 3, 200, 219, 20},
		{0, 50, 1, 3, 100, 149, 50},
		{1, 0, 1, 3, 100, 149, 50},
		{1, 200, 1, 1, 100, 219, 120},
	}
	for _, tt := range tests {
		p := s.Page(tt.n, tt.perPage)
		if p.Number != tt.number || p.Total != tt.total || p.StartLine != tt.startLine || p.EndLine != tt.endLine || len(p.Lines) != tt.ln {
			t.Errorf("Page(%d, %d) = {%d/%d %d-%d %d lines}", tt.n, tt.perPage, p.Number, p.Total, p.StartLine, p.EndLine, len(p.Lines))
		}
		if len(p.Lines) > 0 && p.Lines[0] != fmt.Sprintf("line %d", p.StartLine) {
			t.Errorf("Page(%d, %d) first line %q", tt.n, tt.perPage, p.Lines[0])
		}
	}
}

func TestPageEmptyChapter(t *testing.T) {
	s := &Session{Chapters: []chapter.Span{chapter.FullText("x", 0)}}
	p := s.Page(1, 50)
	if p.Number != 1 || p.Total != 1 || len(p.Lines) != 0 {
		t.Errorf("empty page = %+v", p)
	}
}

func TestSessionBounds(t *testing.T) {
	s := &Session{Chapters: make([]chapter.Span, 3)}
	if !s.AtStart() || s.AtEnd() {
		t.Error("index 0 should be start only")
	}
	s.CurrentIndex = 2
	if s.AtStart() || !s.AtEnd() {
		t.Error("index 2 should be end only")
	}
}

func TestDirectionString(t *testing.T) {
	if Forward.String() != "forward" || Backward.String() != "backward" {
		t.Errorf("got %s, %s", Forward, Backward)
	}
}
