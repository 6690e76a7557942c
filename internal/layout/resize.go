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

// Handle identifies which edge or corner of a panel a resize gesture
// grabs. Edge handles move one edge, corner handles move two.
type Handle uint8

const (
	HandleN Handle = iota
	HandleS
	HandleE
	HandleW
	HandleNE
	HandleNW
	HandleSE
	HandleSW
)

var handleNames = map[Handle]string{
	HandleN: "n", HandleS: "s", HandleE: "e", HandleW: "w",
	HandleNE: "ne", HandleNW: "nw", HandleSE: "se", HandleSW: "sw",
}

func (h Handle) String() string {
	if n, ok := handleNames[h]; ok {
		return n
	}
	return "?"
}

// movesWest reports whether the handle moves the left edge.
func (h Handle) movesWest() bool { return h == HandleW || h == HandleNW || h == HandleSW }

// movesEast reports whether the handle moves the right edge.
func (h Handle) movesEast() bool { return h == HandleE || h == HandleNE || h == HandleSE }

// movesNorth reports whether the handle moves the top edge.
func (h Handle) movesNorth() bool { return h == HandleN || h == HandleNE || h == HandleNW }

// movesSouth reports whether the handle moves the bottom edge.
func (h Handle) movesSouth() bool { return h == HandleS || h == HandleSE || h == HandleSW }

// ParseHandle converts a compass name ("n".."sw") to a Handle.
func ParseHandle(s string) (Handle, error) {
	for h, n := range handleNames {
		if n == s {
			return h, nil
		}
	}
	return 0, fmt.Errorf("unknown resize handle %q", s)
}

// ResizeController owns one in-progress resize gesture driven by one of 8
// handles. Deltas are pointer-delta based: each update re-derives the
// candidate rectangle from the origin rectangle and the total pointer
// movement since begin, so intermediate clamps never accumulate.
//
// The key correctness property is pivot-then-clamp, per axis: the edge the
// handle does not move is pinned at its origin position, and the clamped
// size is applied relative to that pinned edge. Clamping x and w
// independently would make the rectangle stick or jump when a size limit
// is hit mid-gesture.
type ResizeController struct {
	store *Store

	phase           Phase
	panelID         string
	handle          Handle
	originGrid      geom.GridRect
	originPointerPx geom.Pt
	constraints     PanelConstraints
	metrics         geom.Metrics

	log *slog.Logger
}

// NewResizeController returns an idle controller bound to the store.
func NewResizeController(store *Store) *ResizeController {
	return &ResizeController{store: store, log: applog.WithComponent("resize")}
}

// Phase returns the controller's current lifecycle state.
func (r *ResizeController) Phase() Phase { return r.phase }

// Active reports whether a gesture is in progress.
func (r *ResizeController) Active() bool { return r.phase == PhaseActive }

// PanelID returns the panel owned by the active gesture, or "".
func (r *ResizeController) PanelID() string {
	if r.phase != PhaseActive {
		return ""
	}
	return r.panelID
}

// Begin starts a resize gesture. The pointer position is captured as the
// gesture origin; no grab offset is needed since updates are delta based.
func (r *ResizeController) Begin(panelID string, handle Handle, pointerPx geom.Pt, m geom.Metrics) error {
	if r.phase == PhaseActive {
		r.log.Warn("resize begin while active", slog.String("panel", panelID))
		return fmt.Errorf("resize begin %q: %w", panelID, ErrGestureActive)
	}
	p, err := r.store.Get(panelID)
	if err != nil {
		return err
	}
	r.phase = PhaseActive
	r.panelID = panelID
	r.handle = handle
	r.originGrid = p.Grid
	r.originPointerPx = pointerPx
	r.constraints = r.store.Registry().Constraints(p.Type)
	r.metrics = m
	r.log.Debug("resize begin", slog.String("panel", panelID), slog.String("handle", handle.String()))
	return nil
}

// Update recomputes the candidate rectangle from the total pointer delta
// and writes it into the store.
func (r *ResizeController) Update(pointerPx geom.Pt) error {
	if r.phase != PhaseActive {
		return ErrNoGesture
	}
	delta := geom.GridDelta(geom.Pt{
		X: pointerPx.X - r.originPointerPx.X,
		Y: pointerPx.Y - r.originPointerPx.Y,
	}, r.metrics.CellPx)

	g := r.resolve(delta)
	return r.store.SetGrid(r.panelID, g)
}

// resolve applies the handle edit to a copy of the origin rectangle and
// clamps it, pivoting each axis on its untouched edge. The two axes never
// interact: width pivots on the untouched vertical edge, height on the
// untouched horizontal edge.
func (r *ResizeController) resolve(delta geom.Cell) geom.GridRect {
	cand := r.originGrid
	switch {
	case r.handle.movesWest():
		cand.X += delta.X
		cand.W -= delta.X
	case r.handle.movesEast():
		cand.W += delta.X
	}
	switch {
	case r.handle.movesNorth():
		cand.Y += delta.Y
		cand.H -= delta.Y
	case r.handle.movesSouth():
		cand.H += delta.Y
	}

	w, h := ClampSize(cand.W, cand.H, r.constraints, r.store.Columns(), r.store.Rows())

	// Pin the untouched edge, bounding growth by the canvas on the moving
	// side so the pinned edge's absolute position never shifts.
	x := r.originGrid.X
	switch {
	case r.handle.movesWest():
		pivot := r.originGrid.Right()
		if w > pivot {
			w = pivot
		}
		x = pivot - w
	case r.handle.movesEast():
		if limit := r.store.Columns() - x; w > limit {
			w = limit
		}
	}
	y := r.originGrid.Y
	switch {
	case r.handle.movesNorth():
		pivot := r.originGrid.Bottom()
		if h > pivot {
			h = pivot
		}
		y = pivot - h
	case r.handle.movesSouth():
		if limit := r.store.Rows() - y; h > limit {
			h = limit
		}
	}

	x, y = ClampPosition(x, y, w, h, r.store.Columns(), r.store.Rows())
	return geom.GridRect{X: x, Y: y, W: w, H: h}
}

// End commits the gesture; the last written rectangle becomes final.
func (r *ResizeController) End() (geom.GridRect, error) {
	if r.phase != PhaseActive {
		return geom.GridRect{}, ErrNoGesture
	}
	p, err := r.store.Get(r.panelID)
	if err != nil {
		return geom.GridRect{}, err
	}
	r.phase = PhaseCommitted
	r.log.Debug("resize commit", slog.String("panel", r.panelID),
		slog.Int("w", p.Grid.W), slog.Int("h", p.Grid.H))
	return p.Grid, nil
}

// Cancel reverts the panel to its pre-gesture rectangle. Shared by Escape,
// window blur and pointer-leave. Safe to call when no gesture is active.
func (r *ResizeController) Cancel() {
	if r.phase != PhaseActive {
		return
	}
	if err := r.store.SetGrid(r.panelID, r.originGrid); err != nil {
		r.log.Error("resize cancel revert failed", slog.String("panel", r.panelID), slog.Any("err", err))
	}
	r.phase = PhaseCancelled
	r.log.Debug("resize cancel", slog.String("panel", r.panelID))
}

// SetMetrics swaps the pixel mapping mid-gesture after a viewport resize.
func (r *ResizeController) SetMetrics(m geom.Metrics) { r.metrics = m }

// OriginGrid returns the rectangle captured at gesture begin.
func (r *ResizeController) OriginGrid() geom.GridRect { return r.originGrid }
