/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileStoreLoadAbsentFile(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "layout.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	data, ok, err := fs.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if ok || data != nil {
		t.Fatalf("expected absent document, got ok=%v data=%q", ok, data)
	}
}

func TestFileStoreSaveLoadRoundTrip(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "layout.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	raw, err := Encode(testDefaults())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := fs.Save(context.Background(), raw); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := fs.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("loaded bytes differ from saved bytes")
	}
}

func TestFileStoreSecondSaveCreatesBackup(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(filepath.Join(dir, "layout.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := fs.Save(context.Background(), []byte(`{"version":1}`)); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	bdir := filepath.Join(dir, backupsDirName)
	if _, err := os.Stat(bdir); !os.IsNotExist(err) {
		t.Fatalf("no backup expected before the second save")
	}
	if err := fs.Save(context.Background(), []byte(`{"version":1,"panels":[]}`)); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	entries, err := os.ReadDir(bdir)
	if err != nil || len(entries) == 0 {
		t.Fatalf("expected backup file in %s: %v", bdir, err)
	}
	b, err := os.ReadFile(filepath.Join(bdir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read backup: %v", err)
	}
	if string(b) != `{"version":1}` {
		t.Fatalf("backup holds %q, want the previous document", b)
	}
}

func TestFileStoreSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileStore(filepath.Join(dir, "layout.json"))
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := fs.Save(context.Background(), []byte("{}")); err != nil {
		t.Fatalf("Save: %v", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "layout.json" {
			t.Fatalf("unexpected leftover %q", e.Name())
		}
	}
}

func TestFileStoreWatchReportsExternalWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "layout.json")
	fs, err := NewFileStore(path)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	if err := fs.Save(context.Background(), []byte("{}")); err != nil {
		t.Fatalf("Save: %v", err)
	}

	changed := make(chan struct{}, 1)
	stop, err := fs.Watch(func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer stop()

	if err := os.WriteFile(path, []byte(`{"version":1}`), 0o644); err != nil {
		t.Fatalf("external write: %v", err)
	}
	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatalf("no change notification within 5s")
	}
}
