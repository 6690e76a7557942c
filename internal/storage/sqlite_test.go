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
	"path/filepath"
	"testing"
)

func TestSQLiteStoreRoundTrip(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "layout.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	if _, ok, err := s.Load(ctx); err != nil || ok {
		t.Fatalf("fresh db: ok=%v err=%v, want absent document", ok, err)
	}

	raw, err := Encode(testDefaults())
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := s.Save(ctx, raw); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, ok, err := s.Load(ctx)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if !bytes.Equal(got, raw) {
		t.Fatalf("loaded bytes differ from saved bytes")
	}

	// A second save supersedes the document under the same key.
	if err := s.Save(ctx, []byte(`{"version":1,"panels":[]}`)); err != nil {
		t.Fatalf("second Save: %v", err)
	}
	got, _, err = s.Load(ctx)
	if err != nil {
		t.Fatalf("Load after overwrite: %v", err)
	}
	if string(got) != `{"version":1,"panels":[]}` {
		t.Fatalf("overwrite not applied: %q", got)
	}
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()
	st, err := Open(Options{Backend: BackendFile, Path: filepath.Join(dir, "layout.json")})
	if err != nil {
		t.Fatalf("Open file backend: %v", err)
	}
	if _, ok := st.(*FileStore); !ok {
		t.Fatalf("Open returned %T, want *FileStore", st)
	}
	_ = st.Close()

	st, err = Open(Options{Backend: BackendSQLite, Path: filepath.Join(dir, "layout.db")})
	if err != nil {
		t.Fatalf("Open sqlite backend: %v", err)
	}
	if _, ok := st.(*SQLiteStore); !ok {
		t.Fatalf("Open returned %T, want *SQLiteStore", st)
	}
	_ = st.Close()

	if _, err := Open(Options{Backend: "bogus"}); err == nil {
		t.Fatalf("expected error for unknown backend")
	}
}
