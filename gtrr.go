//go:build gui

package main

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

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

var (
	gutterColor = color.RGBA{R: 0x66, G: 0x66, B: 0x66, A: 0xFF}
	levelColors = map[string]color.Color{
		"INFO":  color.RGBA{R: 0x5F, G: 0xAF, B: 0xD7, A: 0xFF},
		"DEBUG": color.RGBA{R: 0x76, G: 0x76, B: 0x76, A: 0xFF},
		"WARN":  color.RGBA{R: 0xFF, G: 0xAA, B: 0x00, A: 0xFF},
		"ERROR": color.RGBA{R: 0xFF, G: 0x5F, B: 0x5F, A: 0xFF},
	}
)

type model struct {
	r        *commands.Reader
	sess     *session.Session
	page     int
	perPage  int
	disguise disguise.Options
	fontSize float32
	status   string
}

func newModel(r *commands.Reader) *model {
	return &model{
		r:        r,
		sess:     r.Engine.Session(),
		page:     1,
		perPage:  r.Config.Reader.LinesPerPage,
		disguise: r.Config.Disguise.Options(),
		fontSize: 14,
	}
}

// pageLines mixes the current page, clamping the page number.
func (m *model) pageLines() []disguise.Line {
	pg := m.sess.Page(m.page, m.perPage)
	m.page = pg.Number
	return m.r.Mixer.Render(pg.Lines, pg.StartLine, m.disguise)
}

func (m *model) statusText() string {
	cur := m.sess.Current()
	disg := "off"
	if m.disguise.Enabled {
		disg = fmt.Sprintf("on (%.0f%%)", m.disguise.Ratio*100)
	}
	text := fmt.Sprintf("%s | %s | chapter %d/%d | page %d/%d | disguise %s",
		m.r.Name, cur.Title, m.sess.CurrentIndex+1, len(m.sess.Chapters),
		m.page, m.sess.Pages(m.perPage), disg)
	if m.status != "" {
		text += " | " + m.status
	}
	return text
}

// afterNav picks up the engine's session once a chapter change finishes.
func (m *model) afterNav(moved bool, err error) {
	m.status = ""
	switch {
	case err != nil:
		m.status = err.Error()
	case !moved:
		m.status = "no more chapters that way"
	}
	if s := m.r.Engine.Session(); s != nil {
		if s.CurrentIndex != m.sess.CurrentIndex {
			m.page = 1
		}
		m.sess = s
	}
}

func createPageDisplay(lines []disguise.Line, fontSize float32) *fyne.Container {
	box := container.NewVBox()
	for _, l := range lines {
		gutter := "      "
		var c color.Color = color.White
		if l.Genuine {
			gutter = fmt.Sprintf("%5d ", l.LineNumber+1)
		} else if lc, ok := levelColors[disguise.Level(l.Text)]; ok {
			c = lc
		}

		g := canvas.NewText(gutter, gutterColor)
		g.TextSize = fontSize
		g.TextStyle.Monospace = true

		t := canvas.NewText(l.Text, c)
		t.TextSize = fontSize
		t.TextStyle.Monospace = true

		box.Add(container.NewHBox(g, t))
	}
	return box
}

func runGUI(ctx context.Context, r *commands.Reader) error {
	m := newModel(r)
	if m.sess == nil {
		return session.ErrNoSession
	}

	a := app.New()
	w := a.NewWindow("gtrr - " + r.Name)

	statusLabel := widget.NewLabel(m.statusText())
	statusLabel.Alignment = fyne.TextAlignCenter

	controlsLabel := widget.NewLabel("←/→: page  [/]: chapter  T: chapters  D: disguise  +/-: font  F: fullscreen  Q: quit")
	controlsLabel.Alignment = fyne.TextAlignCenter

	pageContainer := container.NewMax()
	scroll := container.NewScroll(pageContainer)

	var chapterList *widget.List
	updateDisplay := func() {
		pageContainer.Objects = []fyne.CanvasObject{createPageDisplay(m.pageLines(), m.fontSize)}
		pageContainer.Refresh()
		scroll.ScrollToTop()
		statusLabel.SetText(m.statusText())
	}

	// Engine calls block on file reads, so they run off the UI goroutine.
	navigate := func(f func() (bool, error)) {
		go func() {
			moved, err := f()
			fyne.Do(func() {
				m.afterNav(moved, err)
				chapterList.Select(m.sess.CurrentIndex)
				updateDisplay()
			})
		}()
	}

	chapterList = widget.NewList(
		func() int { return len(m.sess.Chapters) },
		func() fyne.CanvasObject {
			return container.NewVBox(
				widget.NewLabel("Title"),
				widget.NewLabel("Lines"),
			)
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			sp := m.sess.Chapters[id]
			vbox := obj.(*fyne.Container)
			titleLabel := vbox.Objects[0].(*widget.Label)
			linesLabel := vbox.Objects[1].(*widget.Label)

			titleLabel.SetText(sp.Title)
			titleLabel.TextStyle.Bold = true
			if sp.LineCount == 0 {
				linesLabel.SetText("empty")
			} else {
				linesLabel.SetText(fmt.Sprintf("lines %d-%d (%d)", sp.StartLine+1, sp.EndLine+1, sp.LineCount))
			}
		},
	)
	chapterList.OnSelected = func(id widget.ListItemID) {
		if id == m.sess.CurrentIndex {
			return
		}
		navigate(func() (bool, error) { return r.Engine.Jump(ctx, id) })
	}
	chapterList.Select(m.sess.CurrentIndex)

	chaptersPanel := container.NewBorder(
		widget.NewLabel("Chapters"),
		widget.NewLabel("Click to jump • T to close"),
		nil, nil,
		chapterList,
	)
	chaptersPanel.Hide()

	readingContent := container.NewBorder(
		statusLabel,
		controlsLabel,
		nil, nil,
		scroll,
	)

	split := container.NewHSplit(chaptersPanel, readingContent)
	split.Offset = 0.3

	done := make(chan struct{})
	var closeOnce sync.Once
	quit := func() {
		closeOnce.Do(func() { close(done) })
		a.Quit()
	}
	go func() {
		select {
		case <-ctx.Done():
			fyne.Do(quit)
		case <-done:
		}
	}()

	w.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeyRight, fyne.KeyPageDown, fyne.KeyN:
			if m.page < m.sess.Pages(m.perPage) {
				m.page++
				updateDisplay()
			}

		case fyne.KeyLeft, fyne.KeyPageUp, fyne.KeyP:
			if m.page > 1 {
				m.page--
				updateDisplay()
			}

		case fyne.KeyF:
			w.SetFullScreen(!w.FullScreen())

		case fyne.KeyQ:
			quit()
		}
	})

	w.Canvas().SetOnTypedRune(func(c rune) {
		switch c {
		case ']':
			navigate(func() (bool, error) { return r.Engine.Advance(ctx, session.Forward) })

		case '[':
			navigate(func() (bool, error) { return r.Engine.Advance(ctx, session.Backward) })

		case 't', 'T':
			if chaptersPanel.Visible() {
				chaptersPanel.Hide()
			} else {
				chaptersPanel.Show()
			}
			split.Refresh()

		case 'd', 'D':
			m.disguise.Enabled = !m.disguise.Enabled
			updateDisplay()

		case '+', '=':
			if m.fontSize < 48 {
				m.fontSize += 2
				updateDisplay()
			}

		case '-':
			if m.fontSize > 8 {
				m.fontSize -= 2
				updateDisplay()
			}
		}
	})

	w.SetOnClosed(func() {
		closeOnce.Do(func() { close(done) })
	})

	w.Resize(fyne.NewSize(900, 650))
	w.SetContent(split)
	updateDisplay()
	w.ShowAndRun()
	return nil
}

func main() {
	cmd := commands.New(commands.BuildInfo{Version: version, Commit: commit, Date: date}, runGUI)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
