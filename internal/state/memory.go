package state

import (
	"path/filepath"
	"sync"
)

// MemoryStore is a Store that forgets everything when the process exits.
type MemoryStore struct {
	mu     sync.RWMutex
	order  []string
	data   map[string]Record
	writes int
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Record)}
}

// Writes returns how many calls changed stored data.
func (s *MemoryStore) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}

func (s *MemoryStore) Get(documentID string) (Progress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.data[documentID]; ok && r.Progress != nil {
		return *r.Progress, true
	}
	return Progress{}, false
}

func (s *MemoryStore) Set(documentID, chapterTitle string, lineNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.record(documentID)
	if sameProgress(r.Progress, chapterTitle, lineNumber) {
		return nil
	}
	r.Progress = &Progress{ChapterTitle: chapterTitle, LineNumber: lineNumber}
	s.data[documentID] = r
	s.writes++
	return nil
}

func (s *MemoryStore) Remove(documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[documentID]; !ok {
		return nil
	}
	delete(s.data, documentID)
	for i, id := range s.order {
		if id == documentID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.writes++
	return nil
}

func (s *MemoryStore) DisplayName(documentID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.data[documentID]; ok && r.DisplayName != "" {
		return r.DisplayName
	}
	return filepath.Base(documentID)
}

func (s *MemoryStore) SetDisplayName(documentID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.record(documentID)
	if _, exists := s.data[documentID]; exists && r.DisplayName == name {
		return nil
	}
	r.DisplayName = name
	s.data[documentID] = r
	s.writes++
	return nil
}

func (s *MemoryStore) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, 0, len(s.order))
	for _, id := range s.order {
		r := s.data[id]
		if r.Progress != nil {
			p := *r.Progress
			r.Progress = &p
		}
		out = append(out, r)
	}
	return out
}

// record returns the stored record or a fresh one, registering its order.
func (s *MemoryStore) record(documentID string) Record {
	if r, ok := s.data[documentID]; ok {
		return r
	}
	s.order = append(s.order, documentID)
	return newRecord(documentID)
}
