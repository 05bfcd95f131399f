package printers

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"github.com/metcalfc/trr/internal/chapter"
	"github.com/metcalfc/trr/internal/disguise"
	"github.com/metcalfc/trr/internal/session"
	"github.com/metcalfc/trr/internal/state"
)

const (
	contentGlyph = "│"
	logGlyph     = "┊"
)

var separator = strings.Repeat("═", 60)

// PrettyPrint writes pages and listings to Out, or color.Output when Out
// is nil.
type PrettyPrint struct {
	Out io.Writer
}

func (pp *PrettyPrint) out() io.Writer {
	if pp.Out == nil {
		return color.Output
	}
	return pp.Out
}

// PageHeader describes the page being shown.
type PageHeader struct {
	Path     string
	Chapter  chapter.Span
	FileSize int64
	Page     session.Page
	Disguise disguise.Options
}

func (pp *PrettyPrint) Header(h PageHeader) {
	w := pp.out()
	faint := color.New(color.Faint)
	label := color.New(color.Bold)
	row := func(name, format string, args ...any) {
		_, _ = label.Fprintf(w, "%-10s", name)
		_, _ = fmt.Fprintf(w, format+"\n", args...)
	}

	_, _ = faint.Fprintln(w, separator)
	row("Reading", "%s", filepath.Base(h.Path))
	row("Chapter", "%s", h.Chapter.Title)
	row("Lines", "%d", h.Chapter.LineCount)
	row("Size", "%.1fMB", float64(h.FileSize)/(1024*1024))
	if len(h.Page.Lines) == 0 {
		row("Page", "%d/%d", h.Page.Number, h.Page.Total)
	} else {
		row("Page", "%d/%d (%d-%d)", h.Page.Number, h.Page.Total, h.Page.StartLine+1, h.Page.EndLine+1)
	}
	if h.Disguise.Enabled {
		row("Disguise", "on (%.0f%%)", h.Disguise.Ratio*100)
	} else {
		row("Disguise", "off")
	}
	_, _ = faint.Fprintln(w, separator)
	_, _ = fmt.Fprintln(w)
}

// Lines prints a page of mixed output. Genuine lines carry their one-based
// document line number; synthetic lines have none.
func (pp *PrettyPrint) Lines(lines []disguise.Line) {
	w := pp.out()
	gutter := color.New(color.FgHiYellow, color.Faint)
	for _, l := range lines {
		if l.Genuine {
			_, _ = gutter.Fprintf(w, "%5d ", l.LineNumber+1)
			_, _ = fmt.Fprintf(w, "%s %s\n", contentGlyph, l.Text)
			continue
		}
		_, _ = gutter.Fprintf(w, "%5s ", "")
		_, _ = levelColor(l.Text).Fprintf(w, "%s %s\n", logGlyph, l.Text)
	}
}

func levelColor(text string) *color.Color {
	switch disguise.Level(text) {
	case "ERROR":
		return color.New(color.FgRed)
	case "WARN":
		return color.New(color.FgYellow)
	case "DEBUG":
		return color.New(color.Faint)
	default:
		return color.New(color.FgCyan)
	}
}

// Chapters prints one row per span with one-based line ranges.
func (pp *PrettyPrint) Chapters(spans []chapter.Span, current int) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 80
	tbl.AddRow(bold("#"), bold("Title"), bold("Lines"), bold("Count"))
	for i, sp := range spans {
		mark := fmt.Sprintf("%d", i+1)
		if i == current {
			mark = "*" + mark
		}
		lines := "-"
		if sp.LineCount > 0 {
			lines = fmt.Sprintf("%d-%d", sp.StartLine+1, sp.EndLine+1)
		}
		tbl.AddRow(mark, sp.Title, lines, sp.LineCount)
	}
	_, _ = fmt.Fprintln(pp.out(), tbl)
}

// ReadingList prints the documents the store knows about.
func (pp *PrettyPrint) ReadingList(records []state.Record) {
	w := pp.out()
	if len(records) == 0 {
		_, _ = color.New(color.Faint, color.Italic).Fprintln(w, " none")
		return
	}
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Name"), bold("Chapter"), bold("Line"), bold("Path"))
	for _, r := range records {
		title, line := "-", "-"
		if r.Progress != nil {
			title = r.Progress.ChapterTitle
			line = fmt.Sprintf("%d", r.Progress.LineNumber+1)
		}
		tbl.AddRow(r.DisplayName, title, line, r.Path)
	}
	_, _ = fmt.Fprintln(w, tbl)
}

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}
