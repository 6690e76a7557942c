/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"
)

// WritePDF renders the sheet as a single-page PDF at outPath. Units are
// points with one cell = CellPx points, so the page size follows the
// grid. Built-in Helvetica keeps labels vector without embedding fonts.
func WritePDF(s Sheet, outPath string, opt Options) error {
	opt = opt.withDefaults()
	w := float64(s.Columns * opt.CellPx)
	h := float64(s.Rows * opt.CellPx)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
		OrientationStr: "",
	})
	pdf.SetTitle("Panelboard layout sheet", false)
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})

	if opt.IncludeGrid {
		setDrawColor(pdf, opt.GridColor)
		pdf.SetLineWidth(0.2)
		for x := 0; x <= s.Columns; x++ {
			fx := float64(x * opt.CellPx)
			pdf.Line(fx, 0, fx, h)
		}
		for y := 0; y <= s.Rows; y++ {
			fy := float64(y * opt.CellPx)
			pdf.Line(0, fy, w, fy)
		}
	}

	for _, p := range s.Panels {
		x := float64(p.Grid.X * opt.CellPx)
		y := float64(p.Grid.Y * opt.CellPx)
		pw := float64(p.Grid.W * opt.CellPx)
		ph := float64(p.Grid.H * opt.CellPx)
		setFillColor(pdf, opt.PanelFill)
		setDrawColor(pdf, opt.PanelStroke)
		pdf.SetLineWidth(1)
		pdf.Rect(x, y, pw, ph, "FD")
		if opt.Labels {
			pdf.SetTextColor(0, 0, 0)
			pdf.Text(x+8, y+18, p.ID)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func setDrawColor(pdf *gofpdf.Fpdf, c Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
