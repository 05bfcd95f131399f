package session

// DefaultLinesPerPage is the page size used when none is configured.
const DefaultLinesPerPage = 50

// Page is a window of the active chapter. Number and Total count from 1;
// StartLine and EndLine are zero-based document lines.
type Page struct {
	Number    int
	Total     int
	StartLine int
	EndLine   int
	Lines     []string
}

// Pages returns how many pages the active chapter fills. An empty chapter
// still has one (empty) page.
func (s *Session) Pages(perPage int) int {
	if perPage <= 0 {
		perPage = DefaultLinesPerPage
	}
	n := (len(s.CurrentLines) + perPage - 1) / perPage
	if n == 0 {
		n = 1
	}
	return n
}

// Page returns page n of the active chapter, clamping n into range.
func (s *Session) Page(n, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultLinesPerPage
	}
	total := s.Pages(perPage)
	if n < 1 {
		n = 1
	}
	if n > total {
		n = total
	}

	from := (n - 1) * perPage
	to := min(from+perPage, len(s.CurrentLines))
	base := s.Current().StartLine
	return Page{
		Number:    n,
		Total:     total,
		StartLine: base + from,
		EndLine:   base + to - 1,
		Lines:     append([]string(nil), s.CurrentLines[from:to]...),
	}
}
