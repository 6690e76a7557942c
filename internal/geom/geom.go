/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom provides the pixel<->grid coordinate mapping for the panel
// board. Panel geometry is always integer cell coordinates; pixels appear
// only at the edges (pointer input, rendering). All functions are pure and
// deterministic. Float values use float32 to align with many UI libs.
package geom

import "math"

// Pt is a 2D point in pixel space.
type Pt struct{ X, Y float32 }

// Size is a width/height pair in pixels.
type Size struct{ W, H float32 }

// Cell is an integer grid coordinate.
type Cell struct{ X, Y int }

// GridRect is a rectangle in cell coordinates. W and H count cells.
type GridRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// Right returns the exclusive right edge column (X+W).
func (g GridRect) Right() int { return g.X + g.W }

// Bottom returns the exclusive bottom edge row (Y+H).
func (g GridRect) Bottom() int { return g.Y + g.H }

// PxRect is a rectangle in pixel space.
type PxRect struct {
	Left, Top     float32
	Width, Height float32
}

// CellSize is the pixel size of one grid cell. Cells need not be square.
type CellSize struct{ W, H float32 }

// ToGrid converts a pixel point to the nearest cell coordinate.
// Rounding is half-away-from-zero on each axis, so an exact half-cell
// offset lands on the farther cell deterministically.
func ToGrid(px Pt, cell CellSize) Cell {
	return Cell{
		X: roundHalfAway(px.X / cell.W),
		Y: roundHalfAway(px.Y / cell.H),
	}
}

// ToPixels converts a cell rectangle to pixel space by exact multiplication.
// No rounding happens here; screen rendering may round downstream.
func ToPixels(g GridRect, cell CellSize) PxRect {
	return PxRect{
		Left:   float32(g.X) * cell.W,
		Top:    float32(g.Y) * cell.H,
		Width:  float32(g.W) * cell.W,
		Height: float32(g.H) * cell.H,
	}
}

// GridDelta converts a pixel delta to a cell delta, rounding each axis
// independently with the same half-away-from-zero rule as ToGrid.
func GridDelta(dPx Pt, cell CellSize) Cell {
	return Cell{
		X: roundHalfAway(dPx.X / cell.W),
		Y: roundHalfAway(dPx.Y / cell.H),
	}
}

func roundHalfAway(v float32) int {
	return int(math.Round(float64(v)))
}

// Metrics is the derived per-viewport pixel mapping, recomputed whenever
// the viewport resizes. Grid positions are unaffected by a resize; only
// this mapping changes.
type Metrics struct {
	CellPx CellSize
}

// ComputeMetrics derives the cell pixel size from the viewport. Each cell
// is at least cellMinPx wide/tall so tiny viewports stay usable; beyond
// that cells stretch to fill the viewport evenly.
func ComputeMetrics(viewport Size, columns, rows int, cellMinPx float32) Metrics {
	w := cellMinPx
	if columns > 0 {
		if v := viewport.W / float32(columns); v > w {
			w = v
		}
	}
	h := cellMinPx
	if rows > 0 {
		if v := viewport.H / float32(rows); v > h {
			h = v
		}
	}
	return Metrics{CellPx: CellSize{W: w, H: h}}
}
