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
	"fmt"
)

// Store is a byte store under a fixed key. Implementations must treat an
// absent document as (nil, false, nil), not an error.
type Store interface {
	// Load returns the stored document bytes, or ok=false when nothing
	// has been persisted yet.
	Load(ctx context.Context) (data []byte, ok bool, err error)
	// Save replaces the stored document wholesale.
	Save(ctx context.Context, data []byte) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Options selects and configures a Store backend.
type Options struct {
	Backend string
	// Path is the layout file path (file) or database file path (sqlite).
	Path string
	// DSN is the Postgres connection string.
	DSN string
}

// Open builds the configured Store.
func Open(opts Options) (Store, error) {
	switch opts.Backend {
	case BackendFile, "":
		return NewFileStore(opts.Path)
	case BackendSQLite:
		return NewSQLiteStore(opts.Path)
	case BackendPostgres:
		return NewPGStore(opts.DSN)
	default:
		return nil, fmt.Errorf("unknown persistence backend %q", opts.Backend)
	}
}
