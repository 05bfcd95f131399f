package session

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/metcalfc/trr/internal/chapter"
	"github.com/metcalfc/trr/internal/state"
)

// fakeDocs is an in-memory Loader whose contents and failures can be
// changed between calls.
type fakeDocs struct {
	mu    sync.Mutex
	docs  map[string][]string
	err   error
	reads int
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{docs: map[string][]string{}}
}

func (f *fakeDocs) put(id string, lines ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[id] = lines
}

func (f *fakeDocs) fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeDocs) Lines(_ context.Context, id string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	lines, ok := f.docs[id]
	if !ok {
		return nil, os.ErrNotExist
	}
	return append([]string(nil), lines...), nil
}

// failingStore accepts reads but rejects every write.
type failingStore struct {
	*state.MemoryStore
}

var errDiskFull = errors.New("disk full")

func (failingStore) Set(string, string, int) error { return errDiskFull }

var novel = []string{
	"# One",     // 0
	"a",         // 1
	"b",         // 2
	"# Two",     // 3
	"c",         // 4
	"# Three",   // 5
	"d",         // 6
	"e",         // 7
	"f",         // 8
}

func newEngine(t *testing.T) (*Engine, *fakeDocs, *state.MemoryStore) {
	t.Helper()
	docs := newFakeDocs()
	docs.put("novel.txt", novel...)
	store := state.NewMemoryStore()
	return New(store, docs), docs, store
}

func TestOpenDefaultsToFirstChapter(t *testing.T) {
	e, _, store := newEngine(t)

	s, err := e.Open(context.Background(), "novel.txt", nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.CurrentIndex != 0 || s.Current().Title != "One" {
		t.Errorf("opened at %d %q", s.CurrentIndex, s.Current().Title)
	}
	if want := []string{"# One", "a", "b"}; !reflect.DeepEqual(s.CurrentContent(), want) {
		t.Errorf("CurrentContent = %q, want %q", s.CurrentContent(), want)
	}
	if len(s.Chapters) != 3 {
		t.Errorf("got %d chapters", len(s.Chapters))
	}
	if p, ok := store.Get("novel.txt"); !ok || p.ChapterTitle != "One" || p.LineNumber != 0 {
		t.Errorf("progress = %+v %v", p, ok)
	}
}

func TestOpenTarget(t *testing.T) {
	e, docs, _ := newEngine(t)
	docs.put("dup.txt", "# Part", "x", "# Part", "y", "z")

	target := chapter.Span{Title: "Part", StartLine: 2}
	s, err := e.Open(context.Background(), "dup.txt", &target)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.CurrentIndex != 1 {
		t.Errorf("duplicate title should be told apart by start line, got index %d", s.CurrentIndex)
	}

	missing := chapter.Span{Title: "Part", StartLine: 4}
	s, err = e.Open(context.Background(), "dup.txt", &missing)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.CurrentIndex != 0 {
		t.Errorf("unknown target should open first chapter, got %d", s.CurrentIndex)
	}
}

func TestOpenReadError(t *testing.T) {
	e, _, store := newEngine(t)
	if _, err := e.Open(context.Background(), "novel.txt", nil); err != nil {
		t.Fatal(err)
	}

	_, err := e.Open(context.Background(), "missing.txt", nil)
	var rerr *ReadError
	if !errors.As(err, &rerr) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ReadError wrapping ErrNotExist, got %v", err)
	}
	if s := e.Session(); s == nil || s.DocumentID != "novel.txt" {
		t.Errorf("failed open replaced the session: %+v", s)
	}
	if _, ok := store.Get("missing.txt"); ok {
		t.Error("failed open saved progress")
	}
}

func TestAdvance(t *testing.T) {
	e, _, store := newEngine(t)
	ctx := context.Background()
	if _, err := e.Open(ctx, "novel.txt", nil); err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		dir   Direction
		moved bool
		title string
	}{
		{Forward, true, "Two"},
		{Forward, true, "Three"},
		{Forward, false, "Three"},
		{Backward, true, "Two"},
		{Backward, true, "One"},
		{Backward, false, "One"},
	}
	for i, st := range steps {
		moved, err := e.Advance(ctx, st.dir)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		s := e.Session()
		if moved != st.moved || s.Current().Title != st.title {
			t.Errorf("step %d %s: moved=%v at %q, want moved=%v at %q", i, st.dir, moved, s.Current().Title, st.moved, st.title)
		}
		if p, _ := store.Get("novel.txt"); p.ChapterTitle != st.title || p.LineNumber != s.Current().StartLine {
			t.Errorf("step %d: progress %+v", i, p)
		}
		if !reflect.DeepEqual(s.CurrentLines, novel[s.Current().StartLine:s.Current().EndLine+1]) {
			t.Errorf("step %d: CurrentLines %q do not match chapter", i, s.CurrentLines)
		}
	}
}

func TestAdvanceBoundsDoNotWrite(t *testing.T) {
	e, docs, store := newEngine(t)
	ctx := context.Background()
	if _, err := e.Open(ctx, "novel.txt", nil); err != nil {
		t.Fatal(err)
	}
	writes, reads := store.Writes(), docs.reads

	if moved, err := e.Advance(ctx, Backward); moved || err != nil {
		t.Fatalf("Advance(Backward) at start = %v, %v", moved, err)
	}
	if store.Writes() != writes || docs.reads != reads {
		t.Error("no-op at start touched the store or the document")
	}

	e.Jump(ctx, 2)
	writes = store.Writes()
	if moved, err := e.Advance(ctx, Forward); moved || err != nil {
		t.Fatalf("Advance(Forward) at end = %v, %v", moved, err)
	}
	if store.Writes() != writes {
		t.Error("no-op at end wrote progress")
	}
}

func TestAdvanceRollsBackOnReadError(t *testing.T) {
	e, docs, store := newEngine(t)
	ctx := context.Background()
	if _, err := e.Open(ctx, "novel.txt", nil); err != nil {
		t.Fatal(err)
	}
	before := e.Session()

	docs.fail(os.ErrPermission)
	moved, err := e.Advance(ctx, Forward)
	var rerr *ReadError
	if !errors.As(err, &rerr) || !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected ReadError, got %v", err)
	}
	if moved {
		t.Error("failed advance reported a move")
	}
	if rerr.Chapter != "Two" {
		t.Errorf("ReadError.Chapter = %q", rerr.Chapter)
	}
	if after := e.Session(); !reflect.DeepEqual(after, before) {
		t.Errorf("session changed on failure: %+v", after)
	}
	if p, _ := store.Get("novel.txt"); p.ChapterTitle != "One" {
		t.Errorf("progress moved on failure: %+v", p)
	}

	docs.fail(nil)
	if moved, err := e.Advance(ctx, Forward); !moved || err != nil {
		t.Fatalf("advance after recovery = %v, %v", moved, err)
	}
}

func TestAdvanceDocumentShrank(t *testing.T) {
	e, docs, _ := newEngine(t)
	ctx := context.Background()
	if _, err := e.Open(ctx, "novel.txt", nil); err != nil {
		t.Fatal(err)
	}
	docs.put("novel.txt", novel[:6]...)

	e.Jump(ctx, 1)
	moved, err := e.Advance(ctx, Forward)
	if !errors.Is(err, ErrDocumentChanged) {
		t.Fatalf("expected ErrDocumentChanged, got %v", err)
	}
	if moved {
		t.Error("failed advance reported a move")
	}
	if s := e.Session(); s.CurrentIndex != 1 {
		t.Errorf("index = %d after failed move", s.CurrentIndex)
	}
}

func TestAdvanceRereadsDocument(t *testing.T) {
	e, docs, _ := newEngine(t)
	ctx := context.Background()
	if _, err := e.Open(ctx, "novel.txt", nil); err != nil {
		t.Fatal(err)
	}
	edited := append([]string(nil), novel...)
	edited[4] = "c (revised)"
	docs.put("novel.txt", edited...)

	e.Advance(ctx, Forward)
	if got := e.Session().CurrentLines; got[1] != "c (revised)" {
		t.Errorf("chapter lines not reloaded: %q", got)
	}
}

func TestPersistError(t *testing.T) {
	docs := newFakeDocs()
	docs.put("novel.txt", novel...)
	e := New(failingStore{state.NewMemoryStore()}, docs)
	ctx := context.Background()

	s, err := e.Open(ctx, "novel.txt", nil)
	var perr *PersistError
	if !errors.As(err, &perr) || !errors.Is(err, errDiskFull) {
		t.Fatalf("expected PersistError, got %v", err)
	}
	if s == nil || s.Current().Title != "One" {
		t.Fatalf("session should be open despite save failure: %+v", s)
	}

	moved, err := e.Advance(ctx, Forward)
	if !moved || !errors.As(err, &perr) {
		t.Errorf("Advance = %v, %v", moved, err)
	}
	if perr.Chapter.Title != "Two" {
		t.Errorf("PersistError chapter = %q", perr.Chapter.Title)
	}
}

func TestResume(t *testing.T) {
	ctx := context.Background()

	t.Run("no progress", func(t *testing.T) {
		e, _, _ := newEngine(t)
		s, err := e.Resume(ctx, "novel.txt")
		if err != nil || s.CurrentIndex != 0 {
			t.Fatalf("Resume = %+v, %v", s, err)
		}
	})

	t.Run("saved chapter", func(t *testing.T) {
		e, _, store := newEngine(t)
		store.Set("novel.txt", "Three", 5)
		s, err := e.Resume(ctx, "novel.txt")
		if err != nil || s.Current().Title != "Three" {
			t.Fatalf("Resume = %+v, %v", s, err)
		}
	})

	t.Run("title match wins over line", func(t *testing.T) {
		e, _, store := newEngine(t)
		store.Set("novel.txt", "Two", 99)
		s, err := e.Resume(ctx, "novel.txt")
		if err != nil || s.Current().Title != "Two" {
			t.Fatalf("Resume = %+v, %v", s, err)
		}
	})

	t.Run("duplicate titles", func(t *testing.T) {
		e, docs, store := newEngine(t)
		docs.put("dup.txt", "# Part", "x", "# Part", "y")
		store.Set("dup.txt", "Part", 2)
		s, err := e.Resume(ctx, "dup.txt")
		if err != nil || s.CurrentIndex != 1 {
			t.Fatalf("Resume = %+v, %v", s, err)
		}
	})

	t.Run("chapter gone", func(t *testing.T) {
		e, _, store := newEngine(t)
		store.Set("novel.txt", "Deleted Chapter", 40)
		s, err := e.Resume(ctx, "novel.txt")
		if !errors.Is(err, ErrChapterNotFound) {
			t.Fatalf("expected ErrChapterNotFound, got %v", err)
		}
		var rerr *ResumeError
		if !errors.As(err, &rerr) || rerr.ChapterTitle != "Deleted Chapter" {
			t.Errorf("expected ResumeError, got %v", err)
		}
		if s == nil || s.CurrentIndex != 0 {
			t.Fatalf("expected session at first chapter, got %+v", s)
		}
		if e.Session() == nil {
			t.Error("session should stay open after recoverable resume error")
		}
	})

	t.Run("unreadable", func(t *testing.T) {
		e, docs, store := newEngine(t)
		store.Set("novel.txt", "Two", 3)
		docs.fail(os.ErrNotExist)
		s, err := e.Resume(ctx, "novel.txt")
		var rerr *ReadError
		if s != nil || !errors.As(err, &rerr) {
			t.Fatalf("Resume = %+v, %v", s, err)
		}
	})
}

func TestJump(t *testing.T) {
	e, _, store := newEngine(t)
	ctx := context.Background()

	if _, err := e.Jump(ctx, 0); !errors.Is(err, ErrNoSession) {
		t.Fatalf("Jump without session = %v", err)
	}
	if _, err := e.Open(ctx, "novel.txt", nil); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Jump(ctx, 3); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("Jump(3) = %v", err)
	}
	writes := store.Writes()
	if moved, err := e.Jump(ctx, 0); moved || err != nil || store.Writes() != writes {
		t.Errorf("Jump to current chapter = %v, %v", moved, err)
	}
	if moved, err := e.Jump(ctx, 2); !moved || err != nil {
		t.Fatalf("Jump(2) = %v, %v", moved, err)
	}
	if p, _ := store.Get("novel.txt"); p.ChapterTitle != "Three" {
		t.Errorf("progress = %+v", p)
	}
}

func TestJumpReadError(t *testing.T) {
	e, docs, store := newEngine(t)
	ctx := context.Background()
	if _, err := e.Open(ctx, "novel.txt", nil); err != nil {
		t.Fatal(err)
	}
	docs.fail(os.ErrPermission)

	moved, err := e.Jump(ctx, 2)
	var rerr *ReadError
	if !errors.As(err, &rerr) || !errors.Is(err, os.ErrPermission) {
		t.Fatalf("expected ReadError, got %v", err)
	}
	if moved {
		t.Error("failed jump reported a move")
	}
	if s := e.Session(); s.CurrentIndex != 0 {
		t.Errorf("index = %d after failed jump", s.CurrentIndex)
	}
	if p, _ := store.Get("novel.txt"); p.ChapterTitle != "One" {
		t.Errorf("progress = %+v", p)
	}
}

func TestNoSession(t *testing.T) {
	e, _, _ := newEngine(t)
	if _, err := e.Advance(context.Background(), Forward); !errors.Is(err, ErrNoSession) {
		t.Errorf("Advance = %v", err)
	}
	if e.Session() != nil {
		t.Error("expected nil session")
	}
}

func TestClose(t *testing.T) {
	e, _, store := newEngine(t)
	ctx := context.Background()
	e.Open(ctx, "novel.txt", nil)
	e.Jump(ctx, 1)
	e.Close()

	if e.Session() != nil {
		t.Error("session survived Close")
	}
	if p, ok := store.Get("novel.txt"); !ok || p.ChapterTitle != "Two" {
		t.Errorf("Close lost progress: %+v %v", p, ok)
	}
}

func TestChapters(t *testing.T) {
	e, docs, _ := newEngine(t)
	ctx := context.Background()

	spans, err := e.Chapters(ctx, "novel.txt")
	if err != nil || len(spans) != 3 {
		t.Fatalf("Chapters = %v, %v", spans, err)
	}

	docs.fail(os.ErrPermission)
	spans, err = e.Chapters(ctx, "novel.txt")
	if err == nil {
		t.Error("expected read error")
	}
	if len(spans) != 1 || spans[0] != chapter.Unreadable("novel.txt") {
		t.Errorf("expected placeholder span, got %+v", spans)
	}
}

func TestEnginesAreIndependent(t *testing.T) {
	docs := newFakeDocs()
	docs.put("a.txt", novel...)
	docs.put("b.txt", "# Only", "x")
	store := state.NewMemoryStore()
	e1, e2 := New(store, docs), New(store, docs)
	ctx := context.Background()

	e1.Open(ctx, "a.txt", nil)
	e2.Open(ctx, "b.txt", nil)
	e1.Advance(ctx, Forward)

	if e1.Session().DocumentID != "a.txt" || e2.Session().DocumentID != "b.txt" {
		t.Error("engines share session state")
	}
	if e2.Session().CurrentIndex != 0 {
		t.Error("advancing one engine moved the other")
	}
}

func TestSessionSnapshotIsCopy(t *testing.T) {
	e, _, _ := newEngine(t)
	s, _ := e.Open(context.Background(), "novel.txt", nil)
	s.CurrentLines[0] = "mutated"
	s.CurrentIndex = 2
	if got := e.Session(); got.CurrentLines[0] != "# One" || got.CurrentIndex != 0 {
		t.Error("caller mutation leaked into engine")
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	docs := newFakeDocs()
	docs.put("novel.txt", novel...)
	e := New(state.NewMemoryStore(), docs, WithLogger(log.New(&buf, "[session] ", 0)))
	e.Open(context.Background(), "novel.txt", nil)
	if !strings.Contains(buf.String(), "[session] novel.txt: opened with 3 chapters") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestWithDetector(t *testing.T) {
	var buf bytes.Buffer
	docs := newFakeDocs()
	docs.put("novel.txt", novel...)
	d := chapter.NewDetector(log.New(&buf, "[chapter] ", 0))
	e := New(state.NewMemoryStore(), docs, WithDetector(d))

	docs.fail(os.ErrPermission)
	if _, err := e.Chapters(context.Background(), "novel.txt"); err == nil {
		t.Fatal("expected read error")
	}
	if !strings.Contains(buf.String(), "[chapter] detect \"novel.txt\"") {
		t.Errorf("detector logger not used: %q", buf.String())
	}
}

func TestLoaderFunc(t *testing.T) {
	var loader Loader = LoaderFunc(func(_ context.Context, id string) ([]string, error) {
		return []string{id}, nil
	})
	lines, err := loader.Lines(context.Background(), "x")
	if err != nil || len(lines) != 1 || lines[0] != "x" {
		t.Errorf("LoaderFunc = %q, %v", lines, err)
	}
}
