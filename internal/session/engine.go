package session

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/metcalfc/trr/internal/chapter"
	"github.com/metcalfc/trr/internal/state"
)

// Loader returns the current lines of a document. It is called on every
// chapter change, so edits on disk are picked up.
type Loader interface {
	Lines(ctx context.Context, documentID string) ([]string, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context, documentID string) ([]string, error)

func (f LoaderFunc) Lines(ctx context.Context, documentID string) ([]string, error) {
	return f(ctx, documentID)
}

// Engine owns at most one open Session and the store its progress goes to.
// Its methods are safe to call from several goroutines; navigation is
// serialised.
type Engine struct {
	mu       sync.Mutex
	session  *Session
	store    state.Store
	loader   Loader
	detector *chapter.Detector
	logger   *log.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDetector replaces the default chapter detector.
func WithDetector(d *chapter.Detector) Option {
	return func(e *Engine) { e.detector = d }
}

// New returns an Engine with no open document.
func New(store state.Store, loader Loader, opts ...Option) *Engine {
	e := &Engine{store: store, loader: loader}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard, "[session] ", log.LstdFlags)
	}
	if e.detector == nil {
		e.detector = chapter.NewDetector(e.logger)
	}
	return e
}

// Chapters detects the chapters of a document without opening it. The
// returned spans are always usable; a read error comes back alongside the
// single placeholder span.
func (e *Engine) Chapters(ctx context.Context, documentID string) ([]chapter.Span, error) {
	return e.detector.DetectSource(ctx, e.loader, documentID)
}

// Open reads and segments the document and makes it the open session. The
// chapter matching target by title and start line is selected, or the
// first chapter if target is nil or gone. Any previous session is replaced
// only when the read succeeds.
func (e *Engine) Open(ctx context.Context, documentID string, target *chapter.Span) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.open(ctx, documentID, func(spans []chapter.Span) int {
		if target == nil {
			return 0
		}
		for i, sp := range spans {
			if sp.Same(*target) {
				return i
			}
		}
		e.logger.Printf("%s: chapter %q at line %d not found, opening first chapter", documentID, target.Title, target.StartLine)
		return 0
	})
}

// Resume opens the document at the chapter saved in the store. Without
// saved progress it opens the first chapter. If the saved chapter title is
// gone, the first chapter is opened and a *ResumeError wrapping
// ErrChapterNotFound is returned with the session.
func (e *Engine) Resume(ctx context.Context, documentID string) (*Session, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.store.Get(documentID)
	if !ok {
		e.logger.Printf("%s: no saved progress", documentID)
		return e.open(ctx, documentID, func([]chapter.Span) int { return 0 })
	}

	found := true
	s, err := e.open(ctx, documentID, func(spans []chapter.Span) int {
		i := findSaved(spans, p)
		if i < 0 {
			found = false
			return 0
		}
		return i
	})
	if s == nil || found {
		return s, err
	}
	e.logger.Printf("%s: saved chapter %q not found, resumed from start", documentID, p.ChapterTitle)
	rerr := &ResumeError{DocumentID: documentID, ChapterTitle: p.ChapterTitle, Err: ErrChapterNotFound}
	if err != nil {
		return s, fmt.Errorf("%w; %w", rerr, err)
	}
	return s, rerr
}

// findSaved matches saved progress by exact title. Among chapters sharing
// the title, the one starting at the saved line wins.
func findSaved(spans []chapter.Span, p state.Progress) int {
	first := -1
	for i, sp := range spans {
		if sp.Title != p.ChapterTitle {
			continue
		}
		if sp.StartLine == p.LineNumber {
			return i
		}
		if first < 0 {
			first = i
		}
	}
	return first
}

func (e *Engine) open(ctx context.Context, documentID string, pick func([]chapter.Span) int) (*Session, error) {
	lines, err := e.loader.Lines(ctx, documentID)
	if err != nil {
		e.logger.Printf("%s: open: %v", documentID, err)
		return nil, &ReadError{DocumentID: documentID, Err: err}
	}

	spans := e.detector.Detect(documentID, lines)
	idx := pick(spans)
	content, _ := spanLines(lines, spans[idx])

	e.session = &Session{
		DocumentID:   documentID,
		Chapters:     spans,
		CurrentIndex: idx,
		CurrentLines: content,
	}
	e.logger.Printf("%s: opened with %d chapters at %q", documentID, len(spans), spans[idx].Title)

	snapshot := e.session.clone()
	if err := e.persist(); err != nil {
		return snapshot, err
	}
	return snapshot, nil
}

// Advance moves one chapter in dir. At either end it does nothing and
// reports false. The document is re-read first; if that fails the session
// stays on its chapter and a *ReadError is returned.
func (e *Engine) Advance(ctx context.Context, dir Direction) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return false, ErrNoSession
	}
	next := e.session.CurrentIndex + 1
	if dir == Backward {
		next = e.session.CurrentIndex - 1
	}
	if next < 0 || next >= len(e.session.Chapters) {
		return false, nil
	}
	return e.moveTo(ctx, next)
}

// Jump makes chapter index the active one.
func (e *Engine) Jump(ctx context.Context, index int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil {
		return false, ErrNoSession
	}
	if index < 0 || index >= len(e.session.Chapters) {
		return false, fmt.Errorf("%w: %d of %d", ErrOutOfRange, index, len(e.session.Chapters))
	}
	if index == e.session.CurrentIndex {
		return false, nil
	}
	return e.moveTo(ctx, index)
}

// moveTo loads chapter index and commits it only once its lines are in
// hand. The bool reports whether the commit happened; a *PersistError can
// accompany a committed move.
func (e *Engine) moveTo(ctx context.Context, index int) (bool, error) {
	s := e.session
	sp := s.Chapters[index]

	lines, err := e.loader.Lines(ctx, s.DocumentID)
	if err != nil {
		e.logger.Printf("%s: load %q: %v", s.DocumentID, sp.Title, err)
		return false, &ReadError{DocumentID: s.DocumentID, Chapter: sp.Title, Err: err}
	}
	content, ok := spanLines(lines, sp)
	if !ok {
		e.logger.Printf("%s: %q ends at line %d but document has %d lines", s.DocumentID, sp.Title, sp.EndLine, len(lines))
		return false, &ReadError{DocumentID: s.DocumentID, Chapter: sp.Title, Err: ErrDocumentChanged}
	}

	s.CurrentIndex = index
	s.CurrentLines = content
	e.logger.Printf("%s: moved to chapter %d %q", s.DocumentID, index, sp.Title)
	return true, e.persist()
}

func (e *Engine) persist() error {
	s := e.session
	sp := s.Current()
	if err := e.store.Set(s.DocumentID, sp.Title, sp.StartLine); err != nil {
		e.logger.Printf("%s: save progress: %v", s.DocumentID, err)
		return &PersistError{DocumentID: s.DocumentID, Chapter: sp, Err: err}
	}
	return nil
}

// Session returns a copy of the open session, or nil.
func (e *Engine) Session() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	return e.session.clone()
}

// Close discards the open session. Saved progress is kept.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session != nil {
		e.logger.Printf("%s: closed", e.session.DocumentID)
	}
	e.session = nil
}
