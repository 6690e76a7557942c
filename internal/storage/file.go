/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	applog "panelboard/internal/log"
)

const backupsDirName = "backups"

// FileStore persists the layout document as a JSON file. Saves are
// transactional (temp file in the same directory, then rename) and the
// previous document is copied to a timestamped backup first, so a crash
// mid-write never leaves a truncated layout behind.
type FileStore struct {
	path string
	log  *slog.Logger
}

// NewFileStore builds a store writing to path, creating parent
// directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("layout file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create layout dir: %w", err)
	}
	return &FileStore{path: path, log: applog.WithComponent("storage")}, nil
}

// Path returns the layout file path.
func (f *FileStore) Path() string { return f.path }

// Load reads the layout file. A missing file is not an error.
func (f *FileStore) Load(_ context.Context) ([]byte, bool, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read layout file: %w", err)
	}
	return b, true, nil
}

// Save backs up the current document (if any) and replaces it atomically.
func (f *FileStore) Save(_ context.Context, data []byte) error {
	bdir := filepath.Join(filepath.Dir(f.path), backupsDirName)
	if _, err := os.Stat(f.path); err == nil {
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return fmt.Errorf("ensure backups dir: %w", err)
		}
		stamp := time.Now().Format("20060102-150405")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(f.path), stamp))
		if err := copyFile(f.path, bpath); err != nil {
			return fmt.Errorf("backup current layout: %w", err)
		}
	}

	dir := filepath.Dir(f.path)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(f.path), os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		return fmt.Errorf("write temp layout: %w", err)
	}
	// On Windows, rename fails over an existing destination.
	if _, err := os.Stat(f.path); err == nil {
		_ = os.Remove(f.path)
	}
	if err := os.Rename(temp, f.path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace layout file: %w", err)
	}
	return nil
}

// Close is a no-op for the file backend.
func (f *FileStore) Close() error { return nil }

// Watch reports external writes to the layout file via onChange, so a
// host can resync a layout edited by another process. The returned stop
// function removes the watcher; it must be called on teardown.
func (f *FileStore) Watch(onChange func()) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	// Watch the directory: editors replace files by rename, which drops a
	// watch on the file itself.
	if err := w.Add(filepath.Dir(f.path)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch layout dir: %w", err)
	}
	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Name == f.path && ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					onChange()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				f.log.Warn("layout watch error", slog.Any("err", err))
			}
		}
	}()
	return func() { _ = w.Close() }, nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst if it exists.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
