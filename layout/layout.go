// Package layout builds the wallet's terminal UI: a manual pane, a log pane,
// an echo pane for past commands and a single-line command input.
package layout

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/jroimartin/gocui"
)

// SubmitFunc consumes one entered command line. The returned error is echoed
// next to the line in the history pane.
type SubmitFunc func(line string) error

// history holds the last submitted line so the history view can echo it from
// its Layout call, which runs on the gui goroutine.
type history struct {
	m       sync.Mutex
	line    string
	pending bool
}

func (h *history) record(line string) {
	h.m.Lock()
	h.line = line
	h.pending = true
	h.m.Unlock()
}

func (h *history) take() (string, bool) {
	h.m.Lock()
	defer h.m.Unlock()
	if !h.pending {
		return "", false
	}
	h.pending = false
	return h.line, true
}

type historyView struct {
	name string
	h    *history
}

func (pv *historyView) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	v, _ := g.SetView(pv.name, 1, maxY*2/3, maxX/3, maxY-6)
	v.Autoscroll = true
	v.Wrap = true
	if line, ok := pv.h.take(); ok {
		fmt.Fprintln(v, "> "+line)
	}
	return nil
}

type loggerView struct {
	name string
}

func (lv *loggerView) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	v, _ := g.SetView(lv.name, maxX/3+1, 1, maxX-1, maxY-6)
	v.Autoscroll = true
	v.Wrap = true
	return nil
}

type manualView struct {
	name string
	path string
}

func (mv *manualView) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	v, _ := g.SetView(mv.name, 1, 1, maxX/3, maxY*2/3-1)
	v.Wrap = true
	v.Clear()
	dat, err := os.ReadFile(mv.path)
	if err != nil {
		g.Close()
		log.Fatal(err)
	}
	fmt.Fprintln(v, string(dat))
	return nil
}

// inputView is the editable one-line command box. Entered lines go through
// submit; the parse outcome is echoed in the history pane.
type inputView struct {
	name   string
	h      *history
	submit SubmitFunc
}

func (iv *inputView) Layout(g *gocui.Gui) error {
	maxX, maxY := g.Size()
	v, err := g.SetView(iv.name, 1, maxY-5, maxX-1, maxY-1)
	if err != nil && err != gocui.ErrUnknownView {
		return err
	}
	v.Wrap = true
	v.Editor = iv
	v.Editable = true
	return nil
}

func (iv *inputView) Edit(v *gocui.View, key gocui.Key, ch rune, mod gocui.Modifier) {
	switch {
	case key == gocui.KeyEnter:
		line := strings.Replace(v.Buffer(), "\n", "", -1)
		if err := iv.submit(line); err != nil {
			iv.h.record(line + "\n" + err.Error())
		} else {
			iv.h.record(line)
		}
		v.Clear()
		v.SetOrigin(0, 0)
		v.SetCursor(0, 0)
	case ch != 0 && mod == 0:
		v.EditWrite(ch)
	case key == gocui.KeySpace:
		v.EditWrite(' ')
	case key == gocui.KeyBackspace || key == gocui.KeyBackspace2:
		v.EditDelete(true)
	}
}

func setFocus(name string) func(g *gocui.Gui) error {
	return func(g *gocui.Gui) error {
		_, err := g.SetCurrentView(name)
		return err
	}
}

func quit(g *gocui.Gui, v *gocui.View) error {
	return gocui.ErrQuit
}

// CreateGui assembles the four panes. Ctrl-C quits. The caller owns the main
// loop. The "logger" view is where wallet.Log writes.
func CreateGui(submit SubmitFunc, manualPath string) (*gocui.Gui, error) {
	g, err := gocui.NewGui(gocui.OutputNormal)
	if err != nil {
		return nil, err
	}
	g.Cursor = true

	h := &history{}
	g.SetManager(
		&historyView{name: "pastcommand", h: h},
		&inputView{name: "input", h: h, submit: submit},
		&loggerView{name: "logger"},
		&manualView{name: "manual", path: manualPath},
		gocui.ManagerFunc(setFocus("input")),
	)

	if err := g.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit); err != nil {
		return nil, err
	}
	return g, nil
}
