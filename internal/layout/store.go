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

// Store is the canonical in-memory list of panel layout records for one
// board instance. It is mutated only by gesture commits and explicit
// visibility toggles; everything runs on the host's single event loop, so
// no locking is needed. Every mutation marks the store dirty, which the
// board controller uses to schedule debounced persistence.
type Store struct {
	reg     *Registry
	columns int
	rows    int

	panels []PanelLayout
	index  map[string]int

	dirty    bool
	onMutate func()

	log *slog.Logger
}

// NewStore builds a store seeded with the given panel records. Order is
// preserved; it determines render stacking for the host.
func NewStore(reg *Registry, columns, rows int, panels []PanelLayout) *Store {
	s := &Store{
		reg:     reg,
		columns: columns,
		rows:    rows,
		panels:  append([]PanelLayout(nil), panels...),
		index:   make(map[string]int, len(panels)),
		log:     applog.WithComponent("layout"),
	}
	for i, p := range s.panels {
		s.index[p.ID] = i
	}
	return s
}

// Columns returns the canvas width in cells.
func (s *Store) Columns() int { return s.columns }

// Rows returns the canvas height in cells.
func (s *Store) Rows() int { return s.rows }

// Registry returns the panel-kind registry the store validates against.
func (s *Store) Registry() *Registry { return s.reg }

// Get returns the layout record for id.
func (s *Store) Get(id string) (PanelLayout, error) {
	i, ok := s.index[id]
	if !ok {
		return PanelLayout{}, fmt.Errorf("get %q: %w", id, ErrPanelNotFound)
	}
	return s.panels[i], nil
}

// SetGrid replaces a panel's grid rectangle. The minimum-size check is a
// programming-error guard: gesture controllers clamp before writing, so a
// violation here indicates an invariant bug and is reported loudly.
func (s *Store) SetGrid(id string, g geom.GridRect) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("set grid %q: %w", id, ErrPanelNotFound)
	}
	c := s.reg.Constraints(s.panels[i].Type)
	if g.W < c.MinSize.W || g.H < c.MinSize.H || g.X < 0 || g.Y < 0 {
		s.log.Error("rejected invalid geometry",
			slog.String("panel", id),
			slog.Int("x", g.X), slog.Int("y", g.Y),
			slog.Int("w", g.W), slog.Int("h", g.H))
		return fmt.Errorf("set grid %q to %dx%d@%d,%d: %w", id, g.W, g.H, g.X, g.Y, ErrInvalidGeometry)
	}
	if s.panels[i].Grid == g {
		return nil
	}
	s.panels[i].Grid = g
	s.markDirty()
	return nil
}

// SetVisible toggles a panel's visibility. Panels are hidden, never
// removed.
func (s *Store) SetVisible(id string, visible bool) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("set visible %q: %w", id, ErrPanelNotFound)
	}
	if s.panels[i].Visible == visible {
		return nil
	}
	s.panels[i].Visible = visible
	s.markDirty()
	return nil
}

// Replace swaps the entire panel list, e.g. on undo/redo restore. The
// slice is copied.
func (s *Store) Replace(panels []PanelLayout) {
	s.panels = append(s.panels[:0:0], panels...)
	s.index = make(map[string]int, len(panels))
	for i, p := range s.panels {
		s.index[p.ID] = i
	}
	s.markDirty()
}

// Snapshot returns an immutable copy of all records for persistence and
// rendering.
func (s *Store) Snapshot() []PanelLayout {
	return append([]PanelLayout(nil), s.panels...)
}

// Dirty reports whether the store has mutations not yet captured for
// persistence.
func (s *Store) Dirty() bool { return s.dirty }

// ClearDirty resets the dirty flag once the state has been captured for
// persistence.
func (s *Store) ClearDirty() { s.dirty = false }

// OnMutate registers a hook invoked after every effective mutation. Used
// by the board controller to arm the persistence debounce.
func (s *Store) OnMutate(fn func()) { s.onMutate = fn }

func (s *Store) markDirty() {
	s.dirty = true
	if s.onMutate != nil {
		s.onMutate()
	}
}
