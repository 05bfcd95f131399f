package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"sync"
)

const stateFileName = "reading_list.json"

// JSONStore keeps every record in one JSON file, in the order documents
// were added.
type JSONStore struct {
	path string
	data []Record
	mu   sync.RWMutex
}

// NewJSONStore creates or loads state from dir.
func NewJSONStore(dir string) (*JSONStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	store := &JSONStore{path: filepath.Join(dir, stateFileName)}
	if err := store.load(); err != nil {
		// Non-fatal - start with empty state
		store.data = nil
	}
	return store, nil
}

// Path returns the backing file.
func (s *JSONStore) Path() string { return s.path }

// Get returns saved progress for the document.
func (s *JSONStore) Get(documentID string) (Progress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(documentID); i >= 0 && s.data[i].Progress != nil {
		return *s.data[i].Progress, true
	}
	return Progress{}, false
}

// Set saves progress for the document, adding it to the list if needed.
func (s *JSONStore) Set(documentID, chapterTitle string, lineNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(documentID)
	if i >= 0 && sameProgress(s.data[i].Progress, chapterTitle, lineNumber) {
		return nil
	}
	next, i := s.withRecord(documentID, i)
	next[i].Progress = &Progress{ChapterTitle: chapterTitle, LineNumber: lineNumber}
	return s.commit(next)
}

// Remove drops the document from the list.
func (s *JSONStore) Remove(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(documentID)
	if i < 0 {
		return nil
	}
	return s.commit(slices.Delete(slices.Clone(s.data), i, i+1))
}

// DisplayName returns the stored name or the base name of the path.
func (s *JSONStore) DisplayName(documentID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(documentID); i >= 0 && s.data[i].DisplayName != "" {
		return s.data[i].DisplayName
	}
	return filepath.Base(documentID)
}

// SetDisplayName names the document, adding it to the list if needed.
func (s *JSONStore) SetDisplayName(documentID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(documentID)
	if i >= 0 && s.data[i].DisplayName == name {
		return nil
	}
	next, i := s.withRecord(documentID, i)
	next[i].DisplayName = name
	return s.commit(next)
}

// List returns a copy of all records.
func (s *JSONStore) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.data))
	for i, r := range s.data {
		if r.Progress != nil {
			p := *r.Progress
			r.Progress = &p
		}
		out[i] = r
	}
	return out
}

// withRecord returns a copy of the records holding documentID at the
// returned index, appending a new record when i is negative.
func (s *JSONStore) withRecord(documentID string, i int) ([]Record, int) {
	next := slices.Clone(s.data)
	if i < 0 {
		next = append(next, newRecord(documentID))
		i = len(next) - 1
	}
	return next, i
}

// commit writes records to disk and only then makes them current, so a
// failed write leaves the store as it was.
func (s *JSONStore) commit(records []Record) error {
	if err := save(s.path, records); err != nil {
		return err
	}
	s.data = records
	return nil
}

func (s *JSONStore) index(documentID string) int {
	for i, r := range s.data {
		if r.Path == documentID {
			return i
		}
	}
	return -1
}

func (s *JSONStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.data)
}

func save(path string, records []Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
