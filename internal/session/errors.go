package session

import (
	"errors"
	"fmt"

	"github.com/metcalfc/trr/internal/chapter"
)

var (
	// ErrNoSession is returned by navigation when no document is open.
	ErrNoSession = errors.New("session: no document open")
	// ErrChapterNotFound means saved progress names a chapter the document
	// no longer has. The session was opened at the first chapter.
	ErrChapterNotFound = errors.New("session: chapter not found, resumed from start")
	// ErrDocumentChanged means the document no longer holds the lines of a
	// chapter detected earlier.
	ErrDocumentChanged = errors.New("session: document changed since chapters were detected")
	// ErrOutOfRange is returned by Jump for an index outside the chapter list.
	ErrOutOfRange = errors.New("session: chapter index out of range")
)

// ReadError is a failed document read. The session is left as it was.
type ReadError struct {
	DocumentID string
	Chapter    string
	Err        error
}

func (e *ReadError) Error() string {
	if e.Chapter == "" {
		return fmt.Sprintf("read %s: %v", e.DocumentID, e.Err)
	}
	return fmt.Sprintf("read %s (%s): %v", e.DocumentID, e.Chapter, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ResumeError reports that saved progress could not be honoured. The
// session it accompanies is usable.
type ResumeError struct {
	DocumentID   string
	ChapterTitle string
	Err          error
}

func (e *ResumeError) Error() string {
	return fmt.Sprintf("resume %s at %q: %v", e.DocumentID, e.ChapterTitle, e.Err)
}

func (e *ResumeError) Unwrap() error { return e.Err }

// PersistError means the chapter changed but progress was not saved.
type PersistError struct {
	DocumentID string
	Chapter    chapter.Span
	Err        error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("save progress for %s at %q: %v", e.DocumentID, e.Chapter.Title, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }
