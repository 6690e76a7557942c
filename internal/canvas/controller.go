/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package canvas composes the layout engine into a single host-facing
// controller: it owns the layout store, the gesture controllers, undo
// history and debounced persistence, and exposes the pointer-level API a
// rendering host drives.
package canvas

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"panelboard/internal/config"
	"panelboard/internal/geom"
	"panelboard/internal/layout"
	applog "panelboard/internal/log"
	"panelboard/internal/storage"
)

// saveTimeout bounds a single backend write.
const saveTimeout = 5 * time.Second

// Options configures a Controller.
type Options struct {
	Grid     config.GridConfig
	Registry *layout.Registry
	// Defaults is the caller-supplied seed layout and the merge base for
	// restored documents.
	Defaults []layout.PanelLayout
	// Backend persists the layout document. May be nil (or persistence
	// disabled in Grid) for a purely in-memory board. The controller owns
	// it and closes it on Close.
	Backend storage.Store
	History layout.HistoryConfig
	// QuietPeriod is the debounce window before a commit reaches the
	// backend. Zero means the storage default.
	QuietPeriod time.Duration
}

// Controller is the single entry point a host renders against. All methods
// must be called from one goroutine (the UI thread); the internal mutex
// only protects the listener table, which Watch may touch from elsewhere.
// The save timer goroutine never reads the live store: armSave encodes
// the snapshot on the calling goroutine and hands the bytes to the saver.
type Controller struct {
	grid    config.GridConfig
	store   *layout.Store
	drag    *layout.DragController
	resize  *layout.ResizeController
	history *layout.History
	saver   *storage.DebouncedSaver
	backend storage.Store
	metrics geom.Metrics
	log     *slog.Logger

	// snapshot taken at gesture begin, pushed to history on commit
	pending []layout.PanelLayout

	mu        sync.Mutex
	listeners map[int]func([]layout.PanelLayout)
	nextID    int
}

// New builds a controller, restoring the persisted layout (merged against
// opts.Defaults) when a backend is configured and persistence is enabled.
// Restore failures fall back to defaults and are never returned as errors.
func New(opts Options) (*Controller, error) {
	if opts.Registry == nil {
		return nil, errors.New("canvas: registry is required")
	}
	if err := opts.Grid.Validate(); err != nil {
		return nil, err
	}

	c := &Controller{
		grid:      opts.Grid,
		backend:   opts.Backend,
		log:       applog.WithComponent("canvas"),
		listeners: map[int]func([]layout.PanelLayout){},
	}

	seed := append([]layout.PanelLayout(nil), opts.Defaults...)
	if c.persistent() {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		raw, ok, err := opts.Backend.Load(ctx)
		cancel()
		if err != nil {
			c.log.Warn("layout restore failed, using defaults", slog.Any("err", err))
		} else if ok {
			seed = storage.Merge(raw, opts.Defaults, opts.Registry, opts.Grid.Columns, opts.Grid.Rows)
		}
	}

	c.store = layout.NewStore(opts.Registry, opts.Grid.Columns, opts.Grid.Rows, seed)
	c.drag = layout.NewDragController(c.store)
	c.resize = layout.NewResizeController(c.store)
	c.history = layout.NewHistory(opts.History)
	c.store.OnMutate(c.notify)
	if c.persistent() {
		c.saver = storage.NewDebouncedSaver(opts.QuietPeriod, c.saveNow)
	}
	return c, nil
}

func (c *Controller) persistent() bool {
	return c.backend != nil && c.grid.PersistenceEnabled
}

// Store exposes the underlying layout store for read access.
func (c *Controller) Store() *layout.Store { return c.store }

// Metrics returns the current canvas metrics.
func (c *Controller) Metrics() geom.Metrics { return c.metrics }

// Resize recomputes metrics for a new viewport. An in-flight gesture is
// preserved: the controllers pick up the new cell size on the next pointer
// update rather than being cancelled.
func (c *Controller) Resize(viewport geom.Size) {
	c.metrics = geom.ComputeMetrics(viewport, c.grid.Columns, c.grid.Rows, float32(c.grid.CellMinSizePx))
	c.drag.SetMetrics(c.metrics)
	c.resize.SetMetrics(c.metrics)
	c.notify()
}

// PanelPx returns the pixel rectangle of a panel under current metrics.
func (c *Controller) PanelPx(id string) (geom.PxRect, error) {
	p, err := c.store.Get(id)
	if err != nil {
		return geom.PxRect{}, err
	}
	return geom.ToPixels(p.Grid, c.metrics.CellPx), nil
}

// GestureActive reports whether any gesture is in flight.
func (c *Controller) GestureActive() bool {
	return c.drag.Active() || c.resize.Active()
}

// GridVisible reports whether grid lines should be drawn right now, per
// the configured visibility mode.
func (c *Controller) GridVisible() bool {
	switch c.grid.GridVisibilityMode {
	case config.GridAlways:
		return true
	case config.GridNever:
		return false
	default:
		return c.GestureActive()
	}
}

// BeginDrag starts a move gesture. A begin while any gesture is active is
// rejected with ErrGestureActive and changes nothing.
func (c *Controller) BeginDrag(panelID string, pointerPx geom.Pt) error {
	if c.GestureActive() {
		c.log.Warn("gesture begin while another is active", slog.String("panel", panelID))
		return layout.ErrGestureActive
	}
	if err := c.drag.Begin(panelID, pointerPx, c.metrics); err != nil {
		return err
	}
	c.pending = c.store.Snapshot()
	return nil
}

// BeginResize starts a resize gesture on the given handle.
func (c *Controller) BeginResize(panelID string, handle layout.Handle, pointerPx geom.Pt) error {
	if c.GestureActive() {
		c.log.Warn("gesture begin while another is active", slog.String("panel", panelID))
		return layout.ErrGestureActive
	}
	if err := c.resize.Begin(panelID, handle, pointerPx, c.metrics); err != nil {
		return err
	}
	c.pending = c.store.Snapshot()
	return nil
}

// UpdatePointer routes a pointer-move to the active gesture. A move with
// no gesture in flight is ignored (hover).
func (c *Controller) UpdatePointer(pointerPx geom.Pt) error {
	switch {
	case c.drag.Active():
		return c.drag.Update(pointerPx)
	case c.resize.Active():
		return c.resize.Update(pointerPx)
	default:
		return nil
	}
}

// EndGesture commits the active gesture: the result is already in the
// store, so this records undo history and schedules persistence.
func (c *Controller) EndGesture() (geom.GridRect, error) {
	var (
		final geom.GridRect
		err   error
	)
	switch {
	case c.drag.Active():
		final, err = c.drag.End()
	case c.resize.Active():
		final, err = c.resize.End()
	default:
		return geom.GridRect{}, layout.ErrNoGesture
	}
	if err != nil {
		return geom.GridRect{}, err
	}
	if c.pending != nil {
		c.history.Push(c.pending)
		c.pending = nil
	}
	c.armSave()
	return final, nil
}

// CancelGesture reverts the active gesture to its origin rectangle. Used
// for Escape, window blur and the pointer leaving the canvas; safe to call
// with no gesture in flight.
func (c *Controller) CancelGesture() {
	c.drag.Cancel()
	c.resize.Cancel()
	c.pending = nil
}

// SetVisible toggles a panel and records the change like a commit.
func (c *Controller) SetVisible(id string, visible bool) error {
	before := c.store.Snapshot()
	if err := c.store.SetVisible(id, visible); err != nil {
		return err
	}
	c.history.Push(before)
	c.armSave()
	return nil
}

// Undo restores the most recent pre-commit snapshot. Rejected while a
// gesture is in flight.
func (c *Controller) Undo() (bool, error) {
	if c.GestureActive() {
		return false, layout.ErrGestureActive
	}
	prev, ok := c.history.Undo(c.store.Snapshot())
	if !ok {
		return false, nil
	}
	c.store.Replace(prev)
	c.armSave()
	return true, nil
}

// Redo reapplies the most recently undone snapshot.
func (c *Controller) Redo() (bool, error) {
	if c.GestureActive() {
		return false, layout.ErrGestureActive
	}
	next, ok := c.history.Redo(c.store.Snapshot())
	if !ok {
		return false, nil
	}
	c.store.Replace(next)
	c.armSave()
	return true, nil
}

// Watch registers a callback fired after every layout change (mutation,
// undo, viewport resize) with a snapshot of the new state. The returned
// dispose removes it.
func (c *Controller) Watch(fn func([]layout.PanelLayout)) (dispose func()) {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	c.mu.Unlock()
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *Controller) notify() {
	c.mu.Lock()
	fns := make([]func([]layout.PanelLayout), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	if len(fns) == 0 {
		return
	}
	snap := c.store.Snapshot()
	for _, fn := range fns {
		fn(snap)
	}
}

// armSave captures and encodes the layout on the calling goroutine, so the
// bytes handed to the saver can never tear under concurrent mutation.
func (c *Controller) armSave() {
	if c.saver == nil {
		return
	}
	data, err := storage.Encode(c.store.Snapshot())
	if err != nil {
		c.log.Warn("encode layout failed", slog.Any("err", err))
		return
	}
	c.store.ClearDirty()
	c.saver.Arm(data)
}

// Flush writes any pending layout change synchronously. Used on shutdown
// and from the crash handler, where the receiver may still be nil.
func (c *Controller) Flush() {
	if c == nil {
		return
	}
	if c.saver != nil {
		c.saver.Flush()
	}
}

// saveNow is the debounced save callback, invoked off the UI goroutine
// with bytes encoded at arm time. Persistence errors are logged and
// swallowed: a broken layout store must never block the board.
func (c *Controller) saveNow(data []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := c.backend.Save(ctx, data); err != nil {
		c.log.Warn("persist layout failed", slog.Any("err", err))
		return
	}
	c.log.Debug("layout persisted", slog.Int("bytes", len(data)))
}

// Close flushes pending writes, stops the saver and closes the backend.
func (c *Controller) Close() error {
	c.CancelGesture()
	if c.saver != nil {
		c.saver.Flush()
		c.saver.Close()
	}
	c.mu.Lock()
	c.listeners = map[int]func([]layout.PanelLayout){}
	c.mu.Unlock()
	if c.backend != nil {
		return c.backend.Close()
	}
	return nil
}
