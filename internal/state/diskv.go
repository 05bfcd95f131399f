package state

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/peterbourgon/diskv/v3"
)

// DiskvStore keeps one file per document under a base directory.
type DiskvStore struct {
	d        *diskv.Diskv
	basePath string
}

// NewDiskvStore opens a store rooted at basePath.
func NewDiskvStore(basePath string) (*DiskvStore, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("state: ensure base path: %w", err)
	}
	return &DiskvStore{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      256 * 1024,
	}), basePath: basePath}, nil
}

// Get returns saved progress. Unreadable or malformed records count as none.
func (s *DiskvStore) Get(documentID string) (Progress, bool) {
	r, err := s.read(toKey(documentID))
	if err != nil || r.Progress == nil {
		return Progress{}, false
	}
	return *r.Progress, true
}

// Set saves progress for the document.
func (s *DiskvStore) Set(documentID, chapterTitle string, lineNumber int) error {
	key := toKey(documentID)
	r, err := s.read(key)
	if err != nil {
		r = newRecord(documentID)
	} else if sameProgress(r.Progress, chapterTitle, lineNumber) {
		return nil
	}
	r.Progress = &Progress{ChapterTitle: chapterTitle, LineNumber: lineNumber}
	return s.write(key, r)
}

// Remove erases the document's record.
func (s *DiskvStore) Remove(documentID string) error {
	key := toKey(documentID)
	if !s.d.Has(key) {
		return nil
	}
	return s.d.Erase(key)
}

// DisplayName returns the stored name or the base name of the path.
func (s *DiskvStore) DisplayName(documentID string) string {
	if r, err := s.read(toKey(documentID)); err == nil && r.DisplayName != "" {
		return r.DisplayName
	}
	return filepath.Base(documentID)
}

// SetDisplayName names the document.
func (s *DiskvStore) SetDisplayName(documentID, name string) error {
	key := toKey(documentID)
	r, err := s.read(key)
	if err != nil {
		r = newRecord(documentID)
	} else if r.DisplayName == name {
		return nil
	}
	r.DisplayName = name
	return s.write(key, r)
}

// List returns all readable records sorted by display name.
func (s *DiskvStore) List() []Record {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var out []Record
	for key := range s.d.Keys(ctx.Done()) {
		r, err := s.read(key)
		if err != nil {
			fmt.Fprintf(os.Stderr, "state: %s: %s\n", key, err)
			continue
		}
		out = append(out, r)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DisplayName == out[j].DisplayName {
			return out[i].Path < out[j].Path
		}
		return out[i].DisplayName < out[j].DisplayName
	})
	return out
}

func (s *DiskvStore) read(key string) (Record, error) {
	val, err := s.d.Read(key)
	if err != nil {
		return Record{}, err
	}
	var r Record
	if err := json.Unmarshal(val, &r); err != nil {
		return Record{}, err
	}
	if r.Path == "" {
		if path, ok := fromKey(key); ok {
			r.Path = path
		}
	}
	return r, nil
}

func (s *DiskvStore) write(key string, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	return s.d.Write(key, data)
}

func keyToPathTransform(key string) *diskv.PathKey {
	return &diskv.PathKey{Path: []string{}, FileName: key}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return pathKey.FileName
}

// toKey makes a file-name-safe key from a document path.
func toKey(documentID string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(documentID))
}

func fromKey(key string) (string, bool) {
	b, err := base64.RawURLEncoding.DecodeString(key)
	if err != nil {
		return "", false
	}
	return string(b), true
}
