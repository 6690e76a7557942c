/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package layout is the core of the panel board: the canonical panel list,
// the size/position constraint resolver, and the drag/resize gesture state
// machines. Everything here is UI-agnostic; pixels enter only through the
// gesture controllers and leave again as integer cell coordinates.
package layout

import (
	"github.com/google/uuid"

	"panelboard/internal/geom"
)

// PanelLayout is one panel's place on the board. ID is stable and unique;
// Type references a panel kind in the Registry and is never persisted with
// geometry overrides (constraints stay code-owned).
type PanelLayout struct {
	ID      string        `json:"id"`
	Type    string        `json:"type"`
	Grid    geom.GridRect `json:"grid"`
	Visible bool          `json:"visible"`
}

// SizeCells is a width/height pair counted in grid cells.
type SizeCells struct {
	W int `json:"w"`
	H int `json:"h"`
}

// PanelConstraints bound a panel's size. MaxSize nil means bounded only by
// the canvas.
type PanelConstraints struct {
	MinSize SizeCells
	MaxSize *SizeCells
}

// DefaultConstraints applies to panel types absent from the registry.
var DefaultConstraints = PanelConstraints{MinSize: SizeCells{W: 1, H: 1}}

// Registry maps panel type names to their constraints. It is read-only
// after construction; changing a type's constraints in code takes effect
// on next start without any persisted state migration.
type Registry struct {
	kinds map[string]PanelConstraints
}

// NewRegistry builds a registry from the given kinds map. The map is
// copied; later caller mutations are not observed.
func NewRegistry(kinds map[string]PanelConstraints) *Registry {
	m := make(map[string]PanelConstraints, len(kinds))
	for k, v := range kinds {
		if v.MinSize.W < 1 {
			v.MinSize.W = 1
		}
		if v.MinSize.H < 1 {
			v.MinSize.H = 1
		}
		m[k] = v
	}
	return &Registry{kinds: m}
}

// Constraints returns the constraints for a panel type, falling back to
// DefaultConstraints for unknown types.
func (r *Registry) Constraints(panelType string) PanelConstraints {
	if r != nil {
		if c, ok := r.kinds[panelType]; ok {
			return c
		}
	}
	return DefaultConstraints
}

// Known reports whether the panel type is registered.
func (r *Registry) Known(panelType string) bool {
	if r == nil {
		return false
	}
	_, ok := r.kinds[panelType]
	return ok
}

// NewPanelID returns a fresh unique panel instance id.
func NewPanelID() string { return uuid.NewString() }
