/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package layout

import (
	"sync"
	"time"
)

// HistoryConfig controls depth caps and coalescing behavior.
type HistoryConfig struct {
	// MaxDepth limits the number of undo entries kept (0 means a default
	// of 64). Oldest entries are pruned when exceeded.
	MaxDepth int
	// MinInterval coalesces snapshots pushed within the interval,
	// replacing the previous one instead of pushing a new entry. A burst
	// of visibility toggles collapses into one undo step.
	MinInterval time.Duration
}

type historyEntry struct {
	panels []PanelLayout
	ts     time.Time
}

// History is an in-memory undo/redo stack of board snapshots. Snapshots
// are pushed before a mutation; Undo restores the most recent one and
// parks the current state on the redo stack. Safe for concurrent use.
type History struct {
	cfg HistoryConfig
	mu  sync.Mutex

	undo []historyEntry
	redo []historyEntry
}

// NewHistory builds a history with conservative defaults for zero values.
func NewHistory(cfg HistoryConfig) *History {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 64
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &History{cfg: cfg}
}

// Push records the pre-mutation snapshot. If pushed within MinInterval of
// the previous entry it replaces it. Any push invalidates the redo stack.
func (h *History) Push(panels []PanelLayout) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e := historyEntry{panels: append([]PanelLayout(nil), panels...), ts: time.Now()}
	if n := len(h.undo); n > 0 && h.cfg.MinInterval > 0 {
		if e.ts.Sub(h.undo[n-1].ts) < h.cfg.MinInterval {
			// Coalesce: keep the burst's oldest pre-mutation snapshot so a
			// single undo steps back over the whole burst.
			h.undo[n-1].ts = e.ts
			h.redo = nil
			return
		}
	}
	h.undo = append(h.undo, e)
	h.redo = nil
	if len(h.undo) > h.cfg.MaxDepth {
		h.undo = append([]historyEntry{}, h.undo[len(h.undo)-h.cfg.MaxDepth:]...)
	}
}

// Undo returns the most recent snapshot and moves the given current state
// onto the redo stack. ok is false when there is nothing to undo.
func (h *History) Undo(current []PanelLayout) ([]PanelLayout, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.undo)
	if n == 0 {
		return nil, false
	}
	e := h.undo[n-1]
	h.undo = h.undo[:n-1]
	h.redo = append(h.redo, historyEntry{panels: append([]PanelLayout(nil), current...), ts: time.Now()})
	return e.panels, true
}

// Redo reverses the latest Undo.
func (h *History) Redo(current []PanelLayout) ([]PanelLayout, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.redo)
	if n == 0 {
		return nil, false
	}
	e := h.redo[n-1]
	h.redo = h.redo[:n-1]
	h.undo = append(h.undo, historyEntry{panels: append([]PanelLayout(nil), current...), ts: time.Now()})
	return e.panels, true
}

// Depths returns current stack sizes for diagnostics.
func (h *History) Depths() (undo, redo int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.undo), len(h.redo)
}
