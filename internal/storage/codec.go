/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"panelboard/internal/geom"
	"panelboard/internal/layout"
	applog "panelboard/internal/log"
)

// CurrentVersion is the wire document version. Loading any other version
// falls back to defaults wholesale; the merge policy is additive-safe but
// does not migrate.
const CurrentVersion = 1

// LayoutKey is the fixed key the board layout lives under in any Store.
const LayoutKey = "board-layout"

// ErrCorrupt marks a persisted document that could not be used: parse
// failure or version mismatch. It is recovered locally by falling back to
// the default layout, never shown to the user.
var ErrCorrupt = errors.New("persisted layout corrupt")

// PersistedPanel is one panel entry on the wire. Panel type, min and max
// sizes are deliberately absent: constraint metadata is owned by the
// panel-kind registry, so changing it in code takes effect immediately
// without stale persisted overrides.
type PersistedPanel struct {
	ID      string        `json:"id"`
	Grid    geom.GridRect `json:"grid"`
	Visible bool          `json:"visible"`
}

// Document is the versioned external representation of a board layout. It
// is superseded wholesale on every persist; there is no incremental
// patching.
type Document struct {
	Version   int              `json:"version"`
	Timestamp string           `json:"timestamp"`
	Panels    []PersistedPanel `json:"panels"`
}

// Encode wraps a board snapshot into the wire document, marshalled in
// human-readable form with a trailing newline.
func Encode(snapshot []layout.PanelLayout) ([]byte, error) {
	doc := Document{
		Version:   CurrentVersion,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Panels:    make([]PersistedPanel, 0, len(snapshot)),
	}
	for _, p := range snapshot {
		doc.Panels = append(doc.Panels, PersistedPanel{ID: p.ID, Grid: p.Grid, Visible: p.Visible})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal layout document: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses raw bytes into a Document, checking the version.
func Decode(raw []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if doc.Version != CurrentVersion {
		return Document{}, fmt.Errorf("%w: version %d, want %d", ErrCorrupt, doc.Version, CurrentVersion)
	}
	return doc, nil
}

// Merge combines a persisted raw document with the caller's default
// layout. It fails closed: any parse error or version mismatch yields the
// defaults unchanged (logged at warn, not returned as an error).
//
// On success the merge runs by id: a default entry with a persisted
// counterpart takes grid and visible from the persisted side and
// everything else from the default; a default without a counterpart is
// kept as-is; persisted entries without a default are dropped (a panel
// kind removed between versions). Restored geometry is clamped against
// the registry and canvas before first render, since a hand-edited or
// stale document may violate bounds.
func Merge(raw []byte, defaults []layout.PanelLayout, reg *layout.Registry, columns, rows int) []layout.PanelLayout {
	l := applog.WithComponent("storage")
	if len(raw) == 0 {
		return append([]layout.PanelLayout(nil), defaults...)
	}
	doc, err := Decode(raw)
	if err != nil {
		l.Warn("layout document unusable, falling back to defaults", slog.Any("err", err))
		return append([]layout.PanelLayout(nil), defaults...)
	}

	persisted := make(map[string]PersistedPanel, len(doc.Panels))
	for _, p := range doc.Panels {
		persisted[p.ID] = p
	}

	merged := make([]layout.PanelLayout, 0, len(defaults))
	matched := 0
	for _, def := range defaults {
		out := def
		if pp, ok := persisted[def.ID]; ok {
			out.Grid = clampRestored(pp.Grid, reg.Constraints(def.Type), columns, rows)
			out.Visible = pp.Visible
			matched++
		}
		merged = append(merged, out)
	}
	if dropped := len(doc.Panels) - matched; dropped > 0 {
		l.Debug("dropped persisted panels without defaults", slog.Int("count", dropped))
	}
	return merged
}

// clampRestored forces a restored rectangle back inside its constraints
// and the canvas: size first, then position, same order as gestures.
func clampRestored(g geom.GridRect, c layout.PanelConstraints, columns, rows int) geom.GridRect {
	w, h := layout.ClampSize(g.W, g.H, c, columns, rows)
	x, y := layout.ClampPosition(g.X, g.Y, w, h, columns, rows)
	return geom.GridRect{X: x, Y: y, W: w, H: h}
}
