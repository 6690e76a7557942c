//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	fynecanvas "fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	boardcanvas "panelboard/internal/canvas"
	"panelboard/internal/geom"
	"panelboard/internal/layout"
	applog "panelboard/internal/log"
)

// handleGrabPx is the half-size of the square grab zone around a resize
// handle, in screen pixels.
const handleGrabPx = float32(8)

// Run opens the board window over an already-built controller. The
// controller is closed when the window closes.
func Run(ctrl *boardcanvas.Controller, title string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	fyneApp := app.NewWithID("panelboard")
	w := fyneApp.NewWindow(title)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 800 {
		winW = 800
	}
	if winH < 600 {
		winH = 600
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	board := NewBoardCanvas(ctrl)
	w.SetContent(board)

	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			ctrl.CancelGesture()
			board.Refresh()
		}
	})
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		if _, err := ctrl.Undo(); err != nil {
			l.Warn("undo rejected", slog.Any("err", err))
		}
		board.Refresh()
	})
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) {
		if _, err := ctrl.Redo(); err != nil {
			l.Warn("redo rejected", slog.Any("err", err))
		}
		board.Refresh()
	})
	w.SetOnClosed(func() {
		prefs.SetInt("window.width", int(w.Canvas().Size().Width))
		prefs.SetInt("window.height", int(w.Canvas().Size().Height))
		if err := ctrl.Close(); err != nil {
			l.Warn("controller close", slog.Any("err", err))
		}
	})

	w.ShowAndRun()
	return nil
}

// BoardCanvas renders the panel grid and translates pointer events into
// controller gestures.
type BoardCanvas struct {
	widget.BaseWidget
	ctrl *boardcanvas.Controller
	log  *slog.Logger

	selected string
	dispose  func()
}

func NewBoardCanvas(ctrl *boardcanvas.Controller) *BoardCanvas {
	b := &BoardCanvas{ctrl: ctrl, log: applog.WithComponent("ui")}
	b.dispose = ctrl.Watch(func([]layout.PanelLayout) { b.Refresh() })
	b.ExtendBaseWidget(b)
	return b
}

// Resize feeds the new viewport back into the engine so cell metrics
// follow the window.
func (b *BoardCanvas) Resize(size fyne.Size) {
	b.BaseWidget.Resize(size)
	b.ctrl.Resize(geom.Size{W: size.Width, H: size.Height})
}

// Tapped selects the topmost panel under the pointer, or clears the
// selection on empty canvas.
func (b *BoardCanvas) Tapped(e *fyne.PointEvent) {
	if p, ok := b.panelAt(geom.Pt{X: e.Position.X, Y: e.Position.Y}); ok {
		b.selected = p.ID
	} else {
		b.selected = ""
	}
	b.Refresh()
}

// Dragged begins a gesture on the first event and routes the rest as
// pointer updates. A drag starting on a resize handle of the selected
// panel resizes; one starting on a panel body moves it.
func (b *BoardCanvas) Dragged(e *fyne.DragEvent) {
	pos := geom.Pt{X: e.Position.X, Y: e.Position.Y}
	if !b.ctrl.GestureActive() {
		if b.selected != "" {
			if h, ok := b.handleAt(b.selected, pos); ok {
				if err := b.ctrl.BeginResize(b.selected, h, pos); err != nil {
					b.log.Warn("resize begin rejected", slog.Any("err", err))
				}
				return
			}
		}
		if p, ok := b.panelAt(pos); ok {
			b.selected = p.ID
			if err := b.ctrl.BeginDrag(p.ID, pos); err != nil {
				b.log.Warn("drag begin rejected", slog.Any("err", err))
			}
		}
		return
	}
	if err := b.ctrl.UpdatePointer(pos); err != nil {
		b.log.Warn("pointer update rejected", slog.Any("err", err))
	}
}

// DragEnd commits the in-flight gesture.
func (b *BoardCanvas) DragEnd() {
	if !b.ctrl.GestureActive() {
		return
	}
	if _, err := b.ctrl.EndGesture(); err != nil {
		b.log.Warn("gesture end", slog.Any("err", err))
	}
	b.Refresh()
}

// MouseIn implements desktop.Hoverable.
func (b *BoardCanvas) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (b *BoardCanvas) MouseMoved(*desktop.MouseEvent) {}

// MouseOut cancels an in-flight gesture when the pointer leaves the
// canvas, so a panel never sticks to a pointer that is gone.
func (b *BoardCanvas) MouseOut() {
	if b.ctrl.GestureActive() {
		b.ctrl.CancelGesture()
		b.Refresh()
	}
}

// panelAt returns the topmost visible panel containing pos.
func (b *BoardCanvas) panelAt(pos geom.Pt) (layout.PanelLayout, bool) {
	snap := b.ctrl.Store().Snapshot()
	cell := b.ctrl.Metrics().CellPx
	for i := len(snap) - 1; i >= 0; i-- {
		p := snap[i]
		if !p.Visible {
			continue
		}
		r := geom.ToPixels(p.Grid, cell)
		if pos.X >= r.Left && pos.X <= r.Left+r.Width && pos.Y >= r.Top && pos.Y <= r.Top+r.Height {
			return p, true
		}
	}
	return layout.PanelLayout{}, false
}

// handleAt maps pos to a resize handle of the given panel, corners before
// edges so a corner grab wins where zones overlap.
func (b *BoardCanvas) handleAt(id string, pos geom.Pt) (layout.Handle, bool) {
	p, err := b.ctrl.Store().Get(id)
	if err != nil || !p.Visible {
		return 0, false
	}
	r := geom.ToPixels(p.Grid, b.ctrl.Metrics().CellPx)
	near := func(a, b float32) bool {
		d := a - b
		return d >= -handleGrabPx && d <= handleGrabPx
	}
	onW := near(pos.X, r.Left)
	onE := near(pos.X, r.Left+r.Width)
	onN := near(pos.Y, r.Top)
	onS := near(pos.Y, r.Top+r.Height)
	inX := pos.X >= r.Left-handleGrabPx && pos.X <= r.Left+r.Width+handleGrabPx
	inY := pos.Y >= r.Top-handleGrabPx && pos.Y <= r.Top+r.Height+handleGrabPx
	switch {
	case onN && onW:
		return layout.HandleNW, true
	case onN && onE:
		return layout.HandleNE, true
	case onS && onW:
		return layout.HandleSW, true
	case onS && onE:
		return layout.HandleSE, true
	case onN && inX:
		return layout.HandleN, true
	case onS && inX:
		return layout.HandleS, true
	case onW && inY:
		return layout.HandleW, true
	case onE && inY:
		return layout.HandleE, true
	}
	return 0, false
}

// CreateRenderer builds one rectangle and label per panel plus the grid
// lattice and selection overlay. Panels are never destroyed at runtime,
// so the object set is fixed after construction.
func (b *BoardCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := fynecanvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})

	store := b.ctrl.Store()
	var gridLines []*fynecanvas.Line
	for i := 0; i <= store.Columns()+store.Rows()+1; i++ {
		ln := fynecanvas.NewLine(color.RGBA{R: 70, G: 70, B: 78, A: 255})
		ln.StrokeWidth = 1
		gridLines = append(gridLines, ln)
	}

	snap := store.Snapshot()
	rects := make(map[string]*fynecanvas.Rectangle, len(snap))
	labels := make(map[string]*fynecanvas.Text, len(snap))
	order := make([]string, 0, len(snap))
	for _, p := range snap {
		r := fynecanvas.NewRectangle(color.RGBA{R: 54, G: 60, B: 70, A: 255})
		r.StrokeColor = color.RGBA{R: 120, G: 130, B: 145, A: 255}
		r.StrokeWidth = 1
		rects[p.ID] = r
		t := fynecanvas.NewText(p.ID, color.RGBA{R: 210, G: 215, B: 220, A: 255})
		t.TextSize = 12
		labels[p.ID] = t
		order = append(order, p.ID)
	}

	sel := fynecanvas.NewRectangle(color.RGBA{0, 0, 0, 0})
	sel.StrokeColor = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	sel.StrokeWidth = 2
	sel.Hide()

	objs := []fyne.CanvasObject{bg}
	for _, ln := range gridLines {
		objs = append(objs, ln)
	}
	for _, id := range order {
		objs = append(objs, rects[id], labels[id])
	}
	objs = append(objs, sel)

	return &boardRenderer{bc: b, objects: objs, bg: bg, gridLines: gridLines, rects: rects, labels: labels, order: order, sel: sel}
}

type boardRenderer struct {
	bc        *BoardCanvas
	objects   []fyne.CanvasObject
	bg        *fynecanvas.Rectangle
	gridLines []*fynecanvas.Line
	rects     map[string]*fynecanvas.Rectangle
	labels    map[string]*fynecanvas.Text
	order     []string
	sel       *fynecanvas.Rectangle
}

func (r *boardRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *boardRenderer) Destroy() {
	if r.bc.dispose != nil {
		r.bc.dispose()
		r.bc.dispose = nil
	}
}
func (r *boardRenderer) MinSize() fyne.Size { return fyne.NewSize(400, 300) }
func (r *boardRenderer) Refresh() {
	r.Layout(r.bc.Size())
	fynecanvas.Refresh(r.bc)
}

func (r *boardRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	store := r.bc.ctrl.Store()
	cell := r.bc.ctrl.Metrics().CellPx
	cols, rows := store.Columns(), store.Rows()
	boardW := cell.W * float32(cols)
	boardH := cell.H * float32(rows)

	showGrid := r.bc.ctrl.GridVisible()
	li := 0
	for x := 0; x <= cols && li < len(r.gridLines); x++ {
		ln := r.gridLines[li]
		li++
		ln.Position1 = fyne.NewPos(cell.W*float32(x), 0)
		ln.Position2 = fyne.NewPos(cell.W*float32(x), boardH)
		if showGrid {
			ln.Show()
		} else {
			ln.Hide()
		}
	}
	for y := 0; y <= rows && li < len(r.gridLines); y++ {
		ln := r.gridLines[li]
		li++
		ln.Position1 = fyne.NewPos(0, cell.H*float32(y))
		ln.Position2 = fyne.NewPos(boardW, cell.H*float32(y))
		if showGrid {
			ln.Show()
		} else {
			ln.Hide()
		}
	}

	r.sel.Hide()
	for _, id := range r.order {
		rect := r.rects[id]
		label := r.labels[id]
		p, err := store.Get(id)
		if err != nil || !p.Visible {
			rect.Hide()
			label.Hide()
			continue
		}
		px := geom.ToPixels(p.Grid, cell)
		rect.Show()
		rect.Resize(fyne.NewSize(px.Width, px.Height))
		rect.Move(fyne.NewPos(px.Left, px.Top))
		label.Show()
		label.Move(fyne.NewPos(px.Left+8, px.Top+6))
		if id == r.bc.selected {
			r.sel.Show()
			r.sel.Resize(fyne.NewSize(px.Width, px.Height))
			r.sel.Move(fyne.NewPos(px.Left, px.Top))
		}
	}
}
