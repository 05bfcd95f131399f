package document

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EPUBFormat implements Format for EPUB files.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

// Lines flattens the spine into lines. Headings come out as "# " lines so
// chapter detection sees them, and a spine item without a heading gets its
// table of contents label instead.
func (f *EPUBFormat) Lines(filename string) ([]string, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, errors.New("no rootfiles found in epub")
	}

	book := rc.Rootfiles[0]
	tocByHref := buildTOCHrefMap(filename, book)

	var lines []string
	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		r, err := ref.Item.Open()
		if err != nil {
			continue
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			continue
		}

		item := htmlLines(string(data))
		if len(item) == 0 {
			continue
		}
		if !hasHeading(item) {
			if t, ok := lookupTitle(tocByHref, ref.Item.HREF); ok {
				item = append([]string{headingPrefix + t}, item...)
			}
		}
		if len(lines) > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, item...)
	}
	return lines, nil
}

const headingPrefix = "# "

func lookupTitle(tocByHref map[string]string, href string) (string, bool) {
	if href == "" {
		return "", false
	}
	if t, ok := tocByHref[href]; ok && t != "" {
		return t, true
	}
	if t, ok := tocByHref[path.Base(href)]; ok && t != "" {
		return t, true
	}
	return "", false
}

func hasHeading(lines []string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, headingPrefix) {
			return true
		}
	}
	return false
}

var blockElements = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Br: true, atom.Li: true,
	atom.Tr: true, atom.Blockquote: true, atom.Section: true,
	atom.Article: true, atom.Pre: true, atom.Hr: true,
	atom.H1: true, atom.H2: true, atom.H3: true,
	atom.H4: true, atom.H5: true, atom.H6: true,
}

var headings = map[atom.Atom]bool{atom.H1: true, atom.H2: true, atom.H3: true}

// htmlLines returns one line per block of body text. Whitespace inside a
// block is collapsed.
func htmlLines(s string) []string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return nil
	}

	var lines []string
	var cur strings.Builder
	heading := false
	flush := func() {
		t := strings.Join(strings.Fields(cur.String()), " ")
		cur.Reset()
		if t == "" {
			return
		}
		if heading {
			t = headingPrefix + t
		}
		lines = append(lines, t)
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			cur.WriteString(n.Data)
			cur.WriteString(" ")
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Head, atom.Script, atom.Style:
				return
			}
			if blockElements[n.DataAtom] {
				flush()
				heading = headings[n.DataAtom]
				defer func() {
					flush()
					heading = false
				}()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	flush()
	return lines
}
