// Package state persists the reading list and per-document reading progress.
package state

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
)

const hashBytes = 8192 // First 8KB for content hash

// Progress is the last chapter a reader was on.
type Progress struct {
	ChapterTitle string `json:"chapter_title"`
	LineNumber   int    `json:"line_number"`
}

// Record is everything stored for one document.
type Record struct {
	Path        string    `json:"path"`
	DisplayName string    `json:"display_name"`
	Progress    *Progress `json:"progress,omitempty"`
}

// Store is a durable record per document path. Setting a value equal to
// the stored one does not write.
type Store interface {
	// Get returns the saved progress. ok is false when there is none.
	Get(documentID string) (p Progress, ok bool)
	Set(documentID, chapterTitle string, lineNumber int) error
	Remove(documentID string) error
	// DisplayName returns the custom name, or the file's base name.
	DisplayName(documentID string) string
	SetDisplayName(documentID, name string) error
	List() []Record
}

// HasCustomName reports whether documentID has a display name other than
// its base name.
func HasCustomName(s Store, documentID string) bool {
	for _, r := range s.List() {
		if r.Path == documentID {
			return r.DisplayName != "" && r.DisplayName != filepath.Base(documentID)
		}
	}
	return false
}

// DefaultDir returns XDG_STATE_HOME/trr or ~/.local/state/trr
func DefaultDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "trr")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "trr")
}

// ComputeHash generates content hash for file identity
func ComputeHash(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, hashBytes)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	hash := sha256.Sum256(buf[:n])
	return hex.EncodeToString(hash[:16]), nil // First 16 bytes = 32 hex chars
}

func sameProgress(p *Progress, title string, line int) bool {
	return p != nil && p.ChapterTitle == title && p.LineNumber == line
}

func newRecord(documentID string) Record {
	return Record{Path: documentID, DisplayName: filepath.Base(documentID)}
}
