//go:build !gui

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/metcalfc/trr/internal/chapter"
	"github.com/metcalfc/trr/internal/commands"
	"github.com/metcalfc/trr/internal/disguise"
	"github.com/metcalfc/trr/internal/session"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const gutterWidth = 6

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	gutterStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	contentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#DDDDDD"))

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	levelStyles = map[string]lipgloss.Style{
		"INFO":  lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFD7")),
		"DEBUG": lipgloss.NewStyle().Foreground(lipgloss.Color("#767676")),
		"WARN":  lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAA00")),
		"ERROR": lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
	}
)

// chapterItem is one row of the chapter picker.
type chapterItem struct {
	index int
	span  chapter.Span
}

func (i chapterItem) Title() string       { return i.span.Title }
func (i chapterItem) FilterValue() string { return i.span.Title }
func (i chapterItem) Description() string {
	if i.span.LineCount == 0 {
		return "empty"
	}
	return fmt.Sprintf("lines %d-%d (%d)", i.span.StartLine+1, i.span.EndLine+1, i.span.LineCount)
}

// navMsg reports the end of a chapter change run off the UI loop.
type navMsg struct {
	moved bool
	err   error
}

type model struct {
	ctx      context.Context
	r        *commands.Reader
	sess     *session.Session
	page     int
	perPage  int
	disguise disguise.Options
	lines    []disguise.Line
	picker   list.Model
	picking  bool
	view     viewport.Model
	status   string
	quitting bool
	width    int
	height   int
}

func newModel(ctx context.Context, r *commands.Reader) model {
	m := model{
		ctx:      ctx,
		r:        r,
		sess:     r.Engine.Session(),
		page:     1,
		perPage:  r.Config.Reader.LinesPerPage,
		disguise: r.Config.Disguise.Options(),
		view:     viewport.New(80, 22),
		width:    80,
		height:   24,
	}
	m.picker = newPicker(m.sess, m.width, m.height)
	m.render()
	return m
}

func newPicker(s *session.Session, width, height int) list.Model {
	var items []list.Item
	selected := 0
	if s != nil {
		for i, sp := range s.Chapters {
			items = append(items, chapterItem{index: i, span: sp})
		}
		selected = s.CurrentIndex
	}
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = "Chapters"
	l.Select(selected)
	return l
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.view.Width = msg.Width
		m.view.Height = max(msg.Height-2, 1)
		m.picker.SetSize(msg.Width, msg.Height)
		m.view.SetContent(m.content())
		return m, nil

	case navMsg:
		m.status = ""
		switch {
		case msg.err != nil:
			m.status = msg.err.Error()
		case !msg.moved:
			m.status = "no more chapters that way"
		}
		if s := m.r.Engine.Session(); s != nil {
			if m.sess == nil || s.CurrentIndex != m.sess.CurrentIndex {
				m.page = 1
			}
			m.sess = s
			m.picker.Select(s.CurrentIndex)
			m.render()
		}
		return m, nil

	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}
		switch msg.String() {
		case "q", "Q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "n", "right", "pgdown":
			if m.sess != nil && m.page < m.sess.Pages(m.perPage) {
				m.page++
				m.render()
			}
			return m, nil

		case "p", "left", "pgup":
			if m.page > 1 {
				m.page--
				m.render()
			}
			return m, nil

		case "]":
			return m, m.advance(session.Forward)

		case "[":
			return m, m.advance(session.Backward)

		case "t":
			m.picking = true
			return m, nil

		case "d":
			m.disguise.Enabled = !m.disguise.Enabled
			m.render()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "esc", "t", "q":
			m.picking = false
			return m, nil
		case "enter":
			m.picking = false
			if it, ok := m.picker.SelectedItem().(chapterItem); ok {
				return m, m.jump(it.index)
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m model) advance(dir session.Direction) tea.Cmd {
	e, ctx := m.r.Engine, m.ctx
	return func() tea.Msg {
		moved, err := e.Advance(ctx, dir)
		return navMsg{moved: moved, err: err}
	}
}

func (m model) jump(index int) tea.Cmd {
	e, ctx := m.r.Engine, m.ctx
	return func() tea.Msg {
		_, err := e.Jump(ctx, index)
		return navMsg{moved: true, err: err}
	}
}

// render mixes the current page and loads it into the viewport.
func (m *model) render() {
	if m.sess == nil {
		return
	}
	pg := m.sess.Page(m.page, m.perPage)
	m.page = pg.Number
	m.lines = m.r.Mixer.Render(pg.Lines, pg.StartLine, m.disguise)
	m.view.SetContent(m.content())
	m.view.GotoTop()
}

func (m model) content() string {
	width := max(m.view.Width-gutterWidth, 10)
	blank := strings.Repeat(" ", gutterWidth)

	var sb strings.Builder
	for _, l := range m.lines {
		gutter := blank
		style := contentStyle
		if l.Genuine {
			gutter = fmt.Sprintf("%5d ", l.LineNumber+1)
		} else if s, ok := levelStyles[disguise.Level(l.Text)]; ok {
			style = s
		}
		for i, part := range strings.Split(wordwrap.String(l.Text, width), "\n") {
			if i > 0 {
				gutter = blank
			}
			sb.WriteString(gutterStyle.Render(gutter))
			sb.WriteString(style.Render(part))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m model) View() string {
	if m.quitting {
		return ""
	}
	if m.sess == nil {
		return "No document open."
	}
	if m.picking {
		return m.picker.View()
	}

	cur := m.sess.Current()
	pg := m.sess.Page(m.page, m.perPage)
	disg := "off"
	if m.disguise.Enabled {
		disg = fmt.Sprintf("on (%.0f%%)", m.disguise.Ratio*100)
	}
	header := titleStyle.Render(m.r.Name) + statusStyle.Render(fmt.Sprintf(
		"%s | chapter %d/%d | page %d/%d | disguise %s",
		cur.Title, m.sess.CurrentIndex+1, len(m.sess.Chapters), pg.Number, pg.Total, disg,
	))

	footer := controlsStyle.Render("N/P: page  [/]: chapter  T: chapters  D: disguise  ↑/↓: scroll  Q: quit")
	if m.status != "" {
		footer = errorStyle.Render(m.status)
	}

	return header + "\n" + m.view.View() + "\n" + footer
}

func runTUI(ctx context.Context, r *commands.Reader) error {
	p := tea.NewProgram(newModel(ctx, r), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func main() {
	cmd := commands.New(commands.BuildInfo{Version: version, Commit: commit, Date: date}, runTUI)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
