/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "testing"

func TestToGridRoundsHalfAwayFromZero(t *testing.T) {
	cell := CellSize{W: 50, H: 50}
	cases := []struct {
		px   Pt
		want Cell
	}{
		{Pt{0, 0}, Cell{0, 0}},
		{Pt{24, 24}, Cell{0, 0}},
		{Pt{25, 25}, Cell{1, 1}}, // exact half rounds away from zero
		{Pt{26, 74}, Cell{1, 1}},
		{Pt{75, 75}, Cell{2, 2}},
		{Pt{-25, -25}, Cell{-1, -1}}, // away from zero on the negative side too
		{Pt{-24, -24}, Cell{0, 0}},
	}
	for _, c := range cases {
		if got := ToGrid(c.px, cell); got != c.want {
			t.Fatalf("ToGrid(%+v) = %+v, want %+v", c.px, got, c.want)
		}
	}
}

func TestToPixelsExactMultiplication(t *testing.T) {
	r := ToPixels(GridRect{X: 3, Y: 2, W: 4, H: 5}, CellSize{W: 50, H: 60})
	if r.Left != 150 || r.Top != 120 || r.Width != 200 || r.Height != 300 {
		t.Fatalf("unexpected pixel rect: %+v", r)
	}
}

// Round-trip on exact multiples: toGrid(toPixels(g).topLeft) == g.topLeft.
func TestGridPixelRoundTrip(t *testing.T) {
	cells := []CellSize{{50, 50}, {33.25, 48.5}, {64, 40}}
	for _, cell := range cells {
		for x := 0; x < 12; x++ {
			for y := 0; y < 8; y++ {
				g := GridRect{X: x, Y: y, W: 1, H: 1}
				px := ToPixels(g, cell)
				back := ToGrid(Pt{px.Left, px.Top}, cell)
				if back.X != g.X || back.Y != g.Y {
					t.Fatalf("round trip failed for %+v at cell %+v: got %+v", g, cell, back)
				}
			}
		}
	}
}

func TestGridDeltaIndependentAxes(t *testing.T) {
	cell := CellSize{W: 50, H: 100}
	d := GridDelta(Pt{X: 130, Y: -49}, cell)
	if d.X != 3 || d.Y != 0 {
		t.Fatalf("unexpected delta: %+v", d)
	}
	d = GridDelta(Pt{X: -75, Y: 50}, cell)
	if d.X != -2 || d.Y != 1 {
		t.Fatalf("unexpected delta at half boundaries: %+v", d)
	}
}

func TestComputeMetricsHonorsMinimumCellSize(t *testing.T) {
	// Viewport narrower than columns*min: cells stay at the minimum.
	m := ComputeMetrics(Size{W: 300, H: 200}, 12, 8, 50)
	if m.CellPx.W != 50 || m.CellPx.H != 50 {
		t.Fatalf("expected min cell size, got %+v", m.CellPx)
	}
	// Wide viewport: cells stretch to fill.
	m = ComputeMetrics(Size{W: 1200, H: 800}, 12, 8, 50)
	if m.CellPx.W != 100 || m.CellPx.H != 100 {
		t.Fatalf("expected stretched cells, got %+v", m.CellPx)
	}
}

func TestGridRectEdges(t *testing.T) {
	g := GridRect{X: 3, Y: 0, W: 3, H: 8}
	if g.Right() != 6 || g.Bottom() != 8 {
		t.Fatalf("unexpected edges: right=%d bottom=%d", g.Right(), g.Bottom())
	}
}
