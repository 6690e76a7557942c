/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package layout

import (
	"fmt"
	"log/slog"

	"panelboard/internal/geom"
	applog "panelboard/internal/log"
)

// Phase is the lifecycle state of a gesture controller.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhaseCommitted
	PhaseCancelled
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhaseCommitted:
		return "committed"
	case PhaseCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// DragController owns one in-progress move gesture. A drag changes a
// panel's position only; its size at commit always equals its size at
// begin. Updates write into the store live, so the panel follows the
// pointer cell by cell.
type DragController struct {
	store *Store

	phase      Phase
	panelID    string
	originGrid geom.GridRect
	offsetPx   geom.Pt
	metrics    geom.Metrics

	log *slog.Logger
}

// NewDragController returns an idle controller bound to the store.
func NewDragController(store *Store) *DragController {
	return &DragController{store: store, log: applog.WithComponent("drag")}
}

// Phase returns the controller's current lifecycle state.
func (d *DragController) Phase() Phase { return d.phase }

// Active reports whether a gesture is in progress.
func (d *DragController) Active() bool { return d.phase == PhaseActive }

// PanelID returns the panel owned by the active gesture, or "".
func (d *DragController) PanelID() string {
	if d.phase != PhaseActive {
		return ""
	}
	return d.panelID
}

// Begin starts a move gesture. The pointer offset from the panel's
// top-left is captured so the panel does not jump on grab.
func (d *DragController) Begin(panelID string, pointerPx geom.Pt, m geom.Metrics) error {
	if d.phase == PhaseActive {
		d.log.Warn("drag begin while active", slog.String("panel", panelID))
		return fmt.Errorf("drag begin %q: %w", panelID, ErrGestureActive)
	}
	p, err := d.store.Get(panelID)
	if err != nil {
		return err
	}
	topLeft := geom.ToPixels(p.Grid, m.CellPx)
	d.phase = PhaseActive
	d.panelID = panelID
	d.originGrid = p.Grid
	d.offsetPx = geom.Pt{X: pointerPx.X - topLeft.Left, Y: pointerPx.Y - topLeft.Top}
	d.metrics = m
	d.log.Debug("drag begin", slog.String("panel", panelID),
		slog.Int("x", p.Grid.X), slog.Int("y", p.Grid.Y))
	return nil
}

// Update moves the panel to the cell nearest the pointer, clamped to the
// canvas. Size never changes during a drag.
func (d *DragController) Update(pointerPx geom.Pt) error {
	if d.phase != PhaseActive {
		return ErrNoGesture
	}
	candidate := geom.Pt{X: pointerPx.X - d.offsetPx.X, Y: pointerPx.Y - d.offsetPx.Y}
	cell := geom.ToGrid(candidate, d.metrics.CellPx)
	x, y := ClampPosition(cell.X, cell.Y, d.originGrid.W, d.originGrid.H, d.store.Columns(), d.store.Rows())
	return d.store.SetGrid(d.panelID, geom.GridRect{X: x, Y: y, W: d.originGrid.W, H: d.originGrid.H})
}

// End commits the gesture; the last written position becomes final.
func (d *DragController) End() (geom.GridRect, error) {
	if d.phase != PhaseActive {
		return geom.GridRect{}, ErrNoGesture
	}
	p, err := d.store.Get(d.panelID)
	if err != nil {
		return geom.GridRect{}, err
	}
	d.phase = PhaseCommitted
	d.log.Debug("drag commit", slog.String("panel", d.panelID),
		slog.Int("x", p.Grid.X), slog.Int("y", p.Grid.Y))
	return p.Grid, nil
}

// Cancel reverts the panel to its pre-gesture rectangle. Triggered by
// Escape, window blur, or the pointer leaving the canvas; all three share
// this single path. Safe to call when no gesture is active.
func (d *DragController) Cancel() {
	if d.phase != PhaseActive {
		return
	}
	if err := d.store.SetGrid(d.panelID, d.originGrid); err != nil {
		d.log.Error("drag cancel revert failed", slog.String("panel", d.panelID), slog.Any("err", err))
	}
	d.phase = PhaseCancelled
	d.log.Debug("drag cancel", slog.String("panel", d.panelID))
}

// SetMetrics swaps the pixel mapping mid-gesture, e.g. after a viewport
// resize. Grid positions are unaffected; only the mapping changes.
func (d *DragController) SetMetrics(m geom.Metrics) { d.metrics = m }

// OriginGrid returns the rectangle captured at gesture begin.
func (d *DragController) OriginGrid() geom.GridRect { return d.originGrid }
