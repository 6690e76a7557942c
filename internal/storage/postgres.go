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
	"database/sql"
	"errors"
	"fmt"
	"time"

	// database/sql driver for Postgres
	_ "github.com/jackc/pgx/v5/stdlib"
)

// PGStore keeps layout documents in Postgres, for deployments where the
// board runs on several machines against one backend.
type PGStore struct {
	db *sql.DB
}

// NewPGStore connects using the given DSN and ensures the table exists.
func NewPGStore(dsn string) (*PGStore, error) {
	if dsn == "" {
		return nil, errors.New("postgres dsn is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS panel_layouts (
			key        text PRIMARY KEY,
			doc        jsonb NOT NULL,
			updated_at timestamptz NOT NULL DEFAULT now()
		)`)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure panel_layouts table: %w", err)
	}
	return &PGStore{db: db}, nil
}

// Load reads the layout document under the fixed key.
func (s *PGStore) Load(ctx context.Context) ([]byte, bool, error) {
	var doc []byte
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM panel_layouts WHERE key = $1`, LayoutKey).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load layout: %w", err)
	}
	return doc, true, nil
}

// Save upserts the layout document wholesale.
func (s *PGStore) Save(ctx context.Context, data []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO panel_layouts(key, doc, updated_at) VALUES($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET doc = excluded.doc, updated_at = now()`,
		LayoutKey, data)
	if err != nil {
		return fmt.Errorf("save layout: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *PGStore) Close() error { return s.db.Close() }
