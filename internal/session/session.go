// Package session tracks the chapter a reader is on and moves between
// chapters, saving progress as it goes.
package session

import "github.com/metcalfc/trr/internal/chapter"

// Direction is the way Advance moves through the chapter list.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// Session is the state of one open document. CurrentLines always holds
// exactly the lines of Chapters[CurrentIndex].
type Session struct {
	DocumentID   string
	Chapters     []chapter.Span
	CurrentIndex int
	CurrentLines []string
}

// Current returns the active chapter.
func (s *Session) Current() chapter.Span {
	return s.Chapters[s.CurrentIndex]
}

// CurrentContent returns a copy of the active chapter's lines.
func (s *Session) CurrentContent() []string {
	return append([]string(nil), s.CurrentLines...)
}

// AtStart reports whether the first chapter is active.
func (s *Session) AtStart() bool { return s.CurrentIndex == 0 }

// AtEnd reports whether the last chapter is active.
func (s *Session) AtEnd() bool { return s.CurrentIndex == len(s.Chapters)-1 }

func (s *Session) clone() *Session {
	return &Session{
		DocumentID:   s.DocumentID,
		Chapters:     append([]chapter.Span(nil), s.Chapters...),
		CurrentIndex: s.CurrentIndex,
		CurrentLines: s.CurrentContent(),
	}
}

// spanLines copies the lines covered by sp out of the document.
func spanLines(lines []string, sp chapter.Span) ([]string, bool) {
	if sp.LineCount == 0 {
		return nil, true
	}
	if sp.StartLine < 0 || sp.EndLine >= len(lines) || sp.StartLine > sp.EndLine {
		return nil, false
	}
	return append([]string(nil), lines[sp.StartLine:sp.EndLine+1]...), true
}
