/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package canvas

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"panelboard/internal/config"
	"panelboard/internal/geom"
	"panelboard/internal/layout"
	"panelboard/internal/storage"
)

// memStore is an in-memory storage.Store recording save calls.
type memStore struct {
	mu    sync.Mutex
	data  []byte
	saves int
}

func (m *memStore) Load(context.Context) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, false, nil
	}
	return m.data, true, nil
}

func (m *memStore) Save(_ context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.saves++
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

func (m *memStore) bytes() []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]byte(nil), m.data...)
}

func testGrid() config.GridConfig {
	return config.GridConfig{
		Columns:            12,
		Rows:               8,
		CellMinSizePx:      50,
		GridVisibilityMode: config.GridWhileDragging,
		PersistenceEnabled: true,
	}
}

func testRegistry() *layout.Registry {
	return layout.NewRegistry(map[string]layout.PanelConstraints{
		"editor": {MinSize: layout.SizeCells{W: 4, H: 4}},
		"chat":   {MinSize: layout.SizeCells{W: 2, H: 2}, MaxSize: &layout.SizeCells{W: 6, H: 8}},
	})
}

func testDefaults() []layout.PanelLayout {
	return []layout.PanelLayout{
		{ID: "editor-1", Type: "editor", Grid: geom.GridRect{X: 0, Y: 0, W: 6, H: 8}, Visible: true},
		{ID: "chat-1", Type: "chat", Grid: geom.GridRect{X: 6, Y: 0, W: 6, H: 8}, Visible: true},
	}
}

func newTestController(t *testing.T, backend storage.Store, quiet time.Duration) *Controller {
	t.Helper()
	c, err := New(Options{
		Grid:        testGrid(),
		Registry:    testRegistry(),
		Defaults:    testDefaults(),
		Backend:     backend,
		QuietPeriod: quiet,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	// 12x8 grid at 50px minimum: exactly 50px cells.
	c.Resize(geom.Size{W: 600, H: 400})
	return c
}

func TestNewRestoresPersistedLayout(t *testing.T) {
	raw, err := storage.Encode([]layout.PanelLayout{
		{ID: "editor-1", Grid: geom.GridRect{X: 2, Y: 0, W: 5, H: 6}, Visible: false},
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	c := newTestController(t, &memStore{data: raw}, time.Hour)

	p, err := c.Store().Get("editor-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Grid != (geom.GridRect{X: 2, Y: 0, W: 5, H: 6}) || p.Visible {
		t.Fatalf("persisted geometry not restored: %+v", p)
	}
	if p.Type != "editor" {
		t.Fatalf("type must come from defaults: %+v", p)
	}
}

func TestNewFallsBackToDefaultsOnVersionMismatch(t *testing.T) {
	c := newTestController(t, &memStore{data: []byte(`{"version":0,"panels":[]}`)}, time.Hour)
	p, _ := c.Store().Get("editor-1")
	if p.Grid != testDefaults()[0].Grid {
		t.Fatalf("expected default geometry, got %+v", p.Grid)
	}
}

func TestGestureMutualExclusion(t *testing.T) {
	c := newTestController(t, nil, 0)
	if err := c.BeginDrag("editor-1", geom.Pt{X: 100, Y: 100}); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if err := c.BeginResize("chat-1", layout.HandleE, geom.Pt{X: 590, Y: 100}); !errors.Is(err, layout.ErrGestureActive) {
		t.Fatalf("BeginResize during drag: err = %v, want ErrGestureActive", err)
	}
	if err := c.BeginDrag("chat-1", geom.Pt{X: 400, Y: 100}); !errors.Is(err, layout.ErrGestureActive) {
		t.Fatalf("second BeginDrag: err = %v, want ErrGestureActive", err)
	}
	c.CancelGesture()
	if c.GestureActive() {
		t.Fatalf("gesture still active after cancel")
	}
}

func TestDragCommitRecordsHistoryAndPersists(t *testing.T) {
	ms := &memStore{}
	c := newTestController(t, ms, 20*time.Millisecond)

	if err := c.BeginDrag("editor-1", geom.Pt{X: 100, Y: 100}); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if err := c.UpdatePointer(geom.Pt{X: 200, Y: 100}); err != nil {
		t.Fatalf("UpdatePointer: %v", err)
	}
	final, err := c.EndGesture()
	if err != nil {
		t.Fatalf("EndGesture: %v", err)
	}
	if final.X != 2 || final.Y != 0 {
		t.Fatalf("final = %+v, want moved 2 columns right", final)
	}

	// Undo restores the pre-gesture layout, redo reapplies the move.
	if ok, err := c.Undo(); err != nil || !ok {
		t.Fatalf("Undo: ok=%v err=%v", ok, err)
	}
	p, _ := c.Store().Get("editor-1")
	if p.Grid.X != 0 {
		t.Fatalf("undo did not restore origin: %+v", p.Grid)
	}
	if ok, err := c.Redo(); err != nil || !ok {
		t.Fatalf("Redo: ok=%v err=%v", ok, err)
	}
	p, _ = c.Store().Get("editor-1")
	if p.Grid.X != 2 {
		t.Fatalf("redo did not reapply move: %+v", p.Grid)
	}

	// Commit, undo and redo collapse into debounced saves.
	deadline := time.Now().Add(2 * time.Second)
	for ms.saveCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if ms.saveCount() == 0 {
		t.Fatalf("no persisted write after commit")
	}
}

func TestCancelRevertsWithoutHistoryOrSave(t *testing.T) {
	ms := &memStore{}
	c := newTestController(t, ms, 10*time.Millisecond)

	if err := c.BeginDrag("editor-1", geom.Pt{X: 100, Y: 100}); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	_ = c.UpdatePointer(geom.Pt{X: 300, Y: 100})
	c.CancelGesture()

	p, _ := c.Store().Get("editor-1")
	if p.Grid.X != 0 {
		t.Fatalf("cancel did not revert: %+v", p.Grid)
	}
	if ok, _ := c.Undo(); ok {
		t.Fatalf("cancelled gesture must not create an undo entry")
	}
	time.Sleep(100 * time.Millisecond)
	if ms.saveCount() != 0 {
		t.Fatalf("cancelled gesture must not persist")
	}
}

func TestViewportResizePreservesGesture(t *testing.T) {
	c := newTestController(t, nil, 0)
	if err := c.BeginDrag("editor-1", geom.Pt{X: 100, Y: 100}); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	// Viewport doubles; cells become 100px wide.
	c.Resize(geom.Size{W: 1200, H: 800})
	if !c.GestureActive() {
		t.Fatalf("viewport resize cancelled the gesture")
	}
	if err := c.UpdatePointer(geom.Pt{X: 300, Y: 100}); err != nil {
		t.Fatalf("UpdatePointer: %v", err)
	}
	final, err := c.EndGesture()
	if err != nil {
		t.Fatalf("EndGesture: %v", err)
	}
	// 200px of travel at 100px cells is 2 columns.
	if final.X != 2 {
		t.Fatalf("final.X = %d, want pointer resolved against new metrics", final.X)
	}
}

func TestUndoRejectedDuringGesture(t *testing.T) {
	c := newTestController(t, nil, 0)
	if err := c.SetVisible("chat-1", false); err != nil {
		t.Fatalf("SetVisible: %v", err)
	}
	if err := c.BeginDrag("editor-1", geom.Pt{X: 100, Y: 100}); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if _, err := c.Undo(); !errors.Is(err, layout.ErrGestureActive) {
		t.Fatalf("Undo during gesture: err = %v, want ErrGestureActive", err)
	}
}

func TestSetVisibleIsUndoable(t *testing.T) {
	c := newTestController(t, nil, 0)
	if err := c.SetVisible("chat-1", false); err != nil {
		t.Fatalf("SetVisible: %v", err)
	}
	p, _ := c.Store().Get("chat-1")
	if p.Visible {
		t.Fatalf("panel still visible")
	}
	if ok, err := c.Undo(); err != nil || !ok {
		t.Fatalf("Undo: ok=%v err=%v", ok, err)
	}
	p, _ = c.Store().Get("chat-1")
	if !p.Visible {
		t.Fatalf("undo did not restore visibility")
	}
}

func TestGridVisibilityModes(t *testing.T) {
	c := newTestController(t, nil, 0)
	if c.GridVisible() {
		t.Fatalf("while_dragging mode: grid visible with no gesture")
	}
	if err := c.BeginDrag("editor-1", geom.Pt{X: 100, Y: 100}); err != nil {
		t.Fatalf("BeginDrag: %v", err)
	}
	if !c.GridVisible() {
		t.Fatalf("while_dragging mode: grid hidden during gesture")
	}
	c.CancelGesture()

	for mode, want := range map[string]bool{config.GridAlways: true, config.GridNever: false} {
		grid := testGrid()
		grid.GridVisibilityMode = mode
		cc, err := New(Options{Grid: grid, Registry: testRegistry(), Defaults: testDefaults()})
		if err != nil {
			t.Fatalf("New(%s): %v", mode, err)
		}
		if got := cc.GridVisible(); got != want {
			t.Fatalf("mode %s: GridVisible = %v, want %v", mode, got, want)
		}
		_ = cc.Close()
	}
}

func TestWatchFiresOnMutationAndDispose(t *testing.T) {
	c := newTestController(t, nil, 0)
	var (
		n    int
		last []layout.PanelLayout
	)
	dispose := c.Watch(func(snap []layout.PanelLayout) {
		n++
		last = snap
	})
	if err := c.SetVisible("chat-1", false); err != nil {
		t.Fatalf("SetVisible: %v", err)
	}
	if n == 0 {
		t.Fatalf("listener not fired on mutation")
	}
	// The callback carries the post-mutation state.
	for _, p := range last {
		if p.ID == "chat-1" && p.Visible {
			t.Fatalf("snapshot passed to listener predates the mutation")
		}
	}
	dispose()
	before := n
	_ = c.SetVisible("chat-1", true)
	if n != before {
		t.Fatalf("disposed listener still fired")
	}
}

// Commits keep flowing while the save timer fires between them. Under the
// race detector this pins down that the saver goroutine only ever sees
// bytes encoded at arm time, never the live store.
func TestSaverRunsConcurrentlyWithCommits(t *testing.T) {
	ms := &memStore{}
	c := newTestController(t, ms, time.Millisecond)

	for i := 0; i < 200; i++ {
		if err := c.SetVisible("chat-1", i%2 == 0); err != nil {
			t.Fatalf("SetVisible: %v", err)
		}
		if err := c.BeginDrag("editor-1", geom.Pt{X: 100, Y: 100}); err != nil {
			t.Fatalf("BeginDrag: %v", err)
		}
		_ = c.UpdatePointer(geom.Pt{X: float32(100 + i%200), Y: 100})
		if _, err := c.EndGesture(); err != nil {
			t.Fatalf("EndGesture: %v", err)
		}
		if i%20 == 0 {
			time.Sleep(2 * time.Millisecond)
		}
	}

	c.Flush()
	if ms.saveCount() == 0 {
		t.Fatalf("no persisted write after commits")
	}
	doc, err := storage.Decode(ms.bytes())
	if err != nil {
		t.Fatalf("Decode persisted: %v", err)
	}
	if len(doc.Panels) != 2 {
		t.Fatalf("persisted %d panels, want 2", len(doc.Panels))
	}
}

func TestFlushWritesPendingCommit(t *testing.T) {
	ms := &memStore{}
	c := newTestController(t, ms, time.Hour)
	if err := c.SetVisible("chat-1", false); err != nil {
		t.Fatalf("SetVisible: %v", err)
	}
	if ms.saveCount() != 0 {
		t.Fatalf("save ran before quiet period or flush")
	}
	c.Flush()
	if ms.saveCount() != 1 {
		t.Fatalf("Flush did not write: saves=%d", ms.saveCount())
	}
	doc, err := storage.Decode(ms.data)
	if err != nil {
		t.Fatalf("Decode persisted: %v", err)
	}
	for _, p := range doc.Panels {
		if p.ID == "chat-1" && p.Visible {
			t.Fatalf("persisted document missing the visibility change")
		}
	}
}
