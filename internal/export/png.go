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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// WritePNG renders the sheet as a PNG file at outPath. Labels use the
// bundled basicfont face, so no font files are needed.
func WritePNG(s Sheet, outPath string, opt Options) error {
	opt = opt.withDefaults()
	w := s.Columns * opt.CellPx
	h := s.Rows * opt.CellPx

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	if opt.IncludeGrid {
		gc := toRGBA(opt.GridColor)
		for x := 0; x <= s.Columns; x++ {
			px := min(x*opt.CellPx, w-1)
			for y := 0; y < h; y++ {
				img.SetRGBA(px, y, gc)
			}
		}
		for y := 0; y <= s.Rows; y++ {
			py := min(y*opt.CellPx, h-1)
			for x := 0; x < w; x++ {
				img.SetRGBA(x, py, gc)
			}
		}
	}

	pc := toRGBA(opt.PanelStroke)
	pf := toRGBA(opt.PanelFill)
	for _, p := range s.Panels {
		x0 := p.Grid.X * opt.CellPx
		y0 := p.Grid.Y * opt.CellPx
		x1 := x0 + p.Grid.W*opt.CellPx - 1
		y1 := y0 + p.Grid.H*opt.CellPx - 1
		fillRect(img, x0, y0, x1, y1, pf)
		strokeRect(img, x0, y0, x1, y1, pc)
		if opt.Labels {
			drawLabel(img, x0+8, y0+18, p.ID)
		}
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func toRGBA(c Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 255}
}

// drawLabel writes text with its baseline at (x, y).
func drawLabel(img *image.RGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{0, 0, 0, 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
