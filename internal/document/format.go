// Package document loads files as ordered lines of text.
package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/simplifiedchinese"
)

// ErrEncoding is returned for files that are neither UTF-8 nor GB18030.
var ErrEncoding = errors.New("document: unsupported text encoding")

// Format defines a file format reader for extracting lines.
type Format interface {
	Name() string
	Extensions() []string
	Lines(filename string) ([]string, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// ReadLines loads a file, using a registered format or plain text fallback.
func ReadLines(filename string) ([]string, error) {
	if f := formatFor(filename); f != nil {
		return f.Lines(filename)
	}
	return readText(filename)
}

func formatFor(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f
			}
		}
	}
	return nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	out := []string{"Plain text (any other extension)"}
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

// SplitLines splits text on '\n', keeping blank lines in place. A trailing
// '\r' on each line and a leading byte order mark are dropped.
func SplitLines(text string) []string {
	text = strings.TrimPrefix(text, "\ufeff")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

func readText(filename string) ([]string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	text, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, filename)
	}
	return SplitLines(text), nil
}

// decode returns data as UTF-8, converting from GB18030 when needed.
func decode(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	out, err := simplifiedchinese.GB18030.NewDecoder().Bytes(data)
	if err != nil || !utf8.Valid(out) {
		return "", ErrEncoding
	}
	return string(out), nil
}

// FileLoader reads documents from the local file system on every call.
type FileLoader struct{}

// Lines returns the current lines of the file at path.
func (FileLoader) Lines(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadLines(path)
}
