package document

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/text/encoding/simplifiedchinese"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"a\nb", []string{"a", "b"}},
		{"a\r\nb\r\n", []string{"a", "b", ""}},
		{"a\n\n\nb", []string{"a", "", "", "b"}},
		{"\ufeffhello", []string{"hello"}},
		{"", []string{""}},
	}
	for _, tt := range tests {
		if got := SplitLines(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestReadLines(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("plain text", func(t *testing.T) {
		path := filepath.Join(tmpDir, "test.txt")
		os.WriteFile(path, []byte("Chapter 1\r\nHello world\r\n\r\nbye"), 0644)

		got, err := ReadLines(path)
		if err != nil {
			t.Fatalf("ReadLines: %v", err)
		}
		want := []string{"Chapter 1", "Hello world", "", "bye"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("unknown extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "notes.log")
		os.WriteFile(path, []byte("one\ntwo"), 0644)

		got, err := ReadLines(path)
		if err != nil {
			t.Fatalf("ReadLines: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("got %q", got)
		}
	})

	t.Run("gb18030", func(t *testing.T) {
		text := "第一章 开始\n天下大势"
		encoded, err := simplifiedchinese.GB18030.NewEncoder().String(text)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		path := filepath.Join(tmpDir, "novel.txt")
		os.WriteFile(path, []byte(encoded), 0644)

		got, err := ReadLines(path)
		if err != nil {
			t.Fatalf("ReadLines: %v", err)
		}
		want := []string{"第一章 开始", "天下大势"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("nonexistent file", func(t *testing.T) {
		if _, err := ReadLines(filepath.Join(tmpDir, "nonexistent.txt")); err == nil {
			t.Error("expected error")
		}
	})
}

func TestFileLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	os.WriteFile(path, []byte("x\ny"), 0644)

	lines, err := FileLoader{}.Lines(context.Background(), path)
	if err != nil || len(lines) != 2 {
		t.Fatalf("Lines = %q, %v", lines, err)
	}

	// Changes on disk are visible on the next call.
	os.WriteFile(path, []byte("x\ny\nz"), 0644)
	lines, _ = FileLoader{}.Lines(context.Background(), path)
	if len(lines) != 3 {
		t.Errorf("expected reread, got %q", lines)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (FileLoader{}).Lines(ctx, path); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	found := map[string]bool{}
	for _, f := range formats {
		found[f] = true
	}
	for _, want := range []string{"EPUB (.epub)", "Markdown (.md, .markdown)"} {
		if !found[want] {
			t.Errorf("%s not registered: %v", want, formats)
		}
	}
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		file string
		want string
	}{
		{"book.EPUB", "EPUB"},
		{"README.md", "Markdown"},
		{"notes.markdown", "Markdown"},
		{"novel.txt", ""},
	}
	for _, tt := range tests {
		got := ""
		if f := formatFor(tt.file); f != nil {
			got = f.Name()
		}
		if got != tt.want {
			t.Errorf("formatFor(%q) = %q, want %q", tt.file, got, tt.want)
		}
	}
}
