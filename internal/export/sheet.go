/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a board layout snapshot to SVG, PNG and PDF
// "layout sheets": grid lines plus visible panel rectangles with id
// labels. Sheets are documentation artifacts, not a render path.
package export

import "panelboard/internal/layout"

// Color is an RGB triple for sheet styling.
type Color struct{ R, G, B uint8 }

// Options controls sheet rendering.
// - CellPx sets the output size of one grid cell; zero means 50.
// - IncludeGrid draws the cell lattice under the panels.
// - Labels writes each panel's id into its rectangle.
type Options struct {
	CellPx      int
	IncludeGrid bool
	Labels      bool
	GridColor   Color
	PanelStroke Color
	PanelFill   Color
}

// withDefaults fills zero-value options the way all three exporters
// expect them.
func (o Options) withDefaults() Options {
	if o.CellPx <= 0 {
		o.CellPx = 50
	}
	if o.GridColor == (Color{}) {
		o.GridColor = Color{R: 220, G: 220, B: 220}
	}
	if o.PanelStroke == (Color{}) {
		o.PanelStroke = Color{R: 30, G: 30, B: 30}
	}
	if o.PanelFill == (Color{}) {
		o.PanelFill = Color{R: 240, G: 244, B: 248}
	}
	return o
}

// Sheet is the renderable view of a board: grid dimensions plus the
// panels that should appear on the sheet.
type Sheet struct {
	Columns int
	Rows    int
	Panels  []layout.PanelLayout
}

// NewSheet builds a sheet from a store snapshot, keeping only visible
// panels.
func NewSheet(columns, rows int, snapshot []layout.PanelLayout) Sheet {
	s := Sheet{Columns: columns, Rows: rows}
	for _, p := range snapshot {
		if p.Visible {
			s.Panels = append(s.Panels, p)
		}
	}
	return s
}
