/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"panelboard/internal/geom"
	"panelboard/internal/layout"
)

func sampleSheet() Sheet {
	return NewSheet(12, 8, []layout.PanelLayout{
		{ID: "editor-1", Type: "editor", Grid: geom.GridRect{X: 0, Y: 0, W: 6, H: 8}, Visible: true},
		{ID: "chat-1", Type: "chat", Grid: geom.GridRect{X: 6, Y: 0, W: 6, H: 8}, Visible: true},
		{ID: "hidden-1", Type: "chat", Grid: geom.GridRect{X: 0, Y: 0, W: 2, H: 2}, Visible: false},
	})
}

func TestNewSheetDropsHiddenPanels(t *testing.T) {
	s := sampleSheet()
	if len(s.Panels) != 2 {
		t.Fatalf("panels = %d, want 2 visible", len(s.Panels))
	}
	for _, p := range s.Panels {
		if p.ID == "hidden-1" {
			t.Fatalf("hidden panel kept on the sheet")
		}
	}
}

func TestWriteSVG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.svg")
	if err := WriteSVG(sampleSheet(), path, Options{IncludeGrid: true, Labels: true}); err != nil {
		t.Fatalf("export svg: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	body := string(data)
	if !strings.Contains(body, "<svg") || !strings.Contains(body, "</svg>") {
		t.Fatalf("not an svg document")
	}
	// 12 columns at the default 50px cell.
	if !strings.Contains(body, `width="600px"`) {
		t.Fatalf("unexpected sheet width: %s", body[:120])
	}
	if !strings.Contains(body, "editor-1") || !strings.Contains(body, "chat-1") {
		t.Fatalf("labels missing")
	}
	if strings.Contains(body, "hidden-1") {
		t.Fatalf("hidden panel rendered")
	}
}

func TestWritePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.png")
	if err := WritePNG(sampleSheet(), path, Options{IncludeGrid: true, Labels: true}); err != nil {
		t.Fatalf("export png: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != 600 || b.Dy() != 400 {
		t.Fatalf("bounds = %v, want 600x400", b)
	}
}

func TestWritePDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "board.pdf")
	if err := WritePDF(sampleSheet(), path, Options{IncludeGrid: true, Labels: true}); err != nil {
		t.Fatalf("export pdf: %v", err)
	}
	st, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if st.Size() <= 0 {
		t.Fatalf("pdf empty")
	}
}

func TestBatchWritesAllFormats(t *testing.T) {
	dir := t.TempDir()
	paths, err := Batch(sampleSheet(), BatchOptions{OutDir: dir})
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(paths) != 3 {
		t.Fatalf("paths = %v, want 3 formats", paths)
	}
	for _, p := range paths {
		if st, err := os.Stat(p); err != nil || st.Size() == 0 {
			t.Fatalf("missing or empty output %s: %v", p, err)
		}
	}
	if _, err := Batch(sampleSheet(), BatchOptions{OutDir: dir, Formats: []string{"bmp"}}); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
