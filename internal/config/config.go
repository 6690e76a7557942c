/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in
// the user scope. Environment variables are treated as read-only overrides
// at runtime, so precedence is env > file > defaults.
//
// config_version: bump when the structure changes in a backward-incompatible way.

// Grid visibility modes.
const (
	GridAlways        = "always"
	GridWhileDragging = "while_dragging"
	GridNever         = "never"
)

// GridConfig shapes the board: loaded once, effectively immutable for a
// session. Validate rejects values the engine cannot run with.
type GridConfig struct {
	Columns            int    `yaml:"columns"`
	Rows               int    `yaml:"rows"`
	CellMinSizePx      int    `yaml:"cell_min_size_px"`
	SnapThresholdPx    int    `yaml:"snap_threshold_px"`
	GridVisibilityMode string `yaml:"grid_visibility_mode"` // "always" | "while_dragging" | "never"
	PersistenceEnabled bool   `yaml:"persistence_enabled"`
}

type PersistenceConfig struct {
	Backend string `yaml:"backend"` // "file" | "sqlite" | "postgres"
	Path    string `yaml:"path"`    // layout file or sqlite db; empty = next to config
	DSN     string `yaml:"dsn"`     // postgres; password comes from the OS keyring
	QuietMs int    `yaml:"quiet_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int               `yaml:"config_version"`
	Grid          GridConfig        `yaml:"grid"`
	Persistence   PersistenceConfig `yaml:"persistence"`
	Logging       LoggingConfig     `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Grid: GridConfig{
			Columns:            12,
			Rows:               8,
			CellMinSizePx:      50,
			SnapThresholdPx:    0,
			GridVisibilityMode: GridWhileDragging,
			PersistenceEnabled: true,
		},
		Persistence: PersistenceConfig{Backend: "file", QuietMs: 500},
		Logging:     LoggingConfig{Level: "info", Format: "console", File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvGridColumns         = "PB_GRID_COLUMNS"
	EnvGridRows            = "PB_GRID_ROWS"
	EnvGridCellMinSizePx   = "PB_GRID_CELL_MIN_SIZE_PX"
	EnvGridSnapThresholdPx = "PB_GRID_SNAP_THRESHOLD_PX"
	EnvGridVisibility      = "PB_GRID_VISIBILITY"
	EnvPersistenceEnabled  = "PB_PERSISTENCE_ENABLED"
	EnvStoreBackend        = "PB_STORE_BACKEND"
	EnvStorePath           = "PB_STORE_PATH"
	EnvStoreDSN            = "PB_STORE_DSN"
	EnvLogLevel            = "PB_LOG_LEVEL"
	EnvLogFormat           = "PB_LOG_FORMAT"
	EnvLogFile             = "PB_LOG_FILE"
)

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Panelboard")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Panelboard")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "panelboard")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, merges
// environment overrides and validates the result. The Postgres DSN secret
// is loaded from the OS keyring and returned separately; it is never kept
// on disk.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg, persistenceEnabledIn(data))
		}
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Defaults(), "", err
	}
	secret, _ := tokenStore.Get(keyringService, keyringDSNSecret)
	return cfg, secret, nil
}

// Save writes the user config YAML and persists the DSN secret into the OS
// keyring (if non-empty).
func Save(cfg AppConfig, secret string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if secret != "" {
		if err := tokenStore.Set(keyringService, keyringDSNSecret, secret); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks grid values the engine cannot run with. A bad merge
// result is rejected rather than patched up.
func (g GridConfig) Validate() error {
	if g.Columns <= 0 {
		return fmt.Errorf("grid.columns must be > 0, got %d", g.Columns)
	}
	if g.Rows <= 0 {
		return fmt.Errorf("grid.rows must be > 0, got %d", g.Rows)
	}
	if g.CellMinSizePx <= 0 {
		return fmt.Errorf("grid.cell_min_size_px must be > 0, got %d", g.CellMinSizePx)
	}
	if g.SnapThresholdPx < 0 {
		return fmt.Errorf("grid.snap_threshold_px must be >= 0, got %d", g.SnapThresholdPx)
	}
	switch g.GridVisibilityMode {
	case GridAlways, GridWhileDragging, GridNever:
	default:
		return fmt.Errorf("grid.grid_visibility_mode %q unknown", g.GridVisibilityMode)
	}
	return nil
}

// Validate checks the merged configuration.
func (c AppConfig) Validate() error {
	if err := c.Grid.Validate(); err != nil {
		return err
	}
	switch c.Persistence.Backend {
	case "file", "sqlite", "postgres":
	default:
		return fmt.Errorf("persistence.backend %q unknown", c.Persistence.Backend)
	}
	return nil
}

// LayoutPath resolves the persistence path, defaulting next to the config
// file when unset.
func (c AppConfig) LayoutPath() (string, error) {
	if c.Persistence.Path != "" {
		return c.Persistence.Path, nil
	}
	cp, err := ConfigPath()
	if err != nil {
		return "", err
	}
	name := "layout.json"
	if c.Persistence.Backend == "sqlite" {
		name = "layout.db"
	}
	return filepath.Join(filepath.Dir(cp), name), nil
}

// persistenceEnabledIn reports the file's persistence_enabled value only
// when the key is actually present. The field's zero value is a meaningful
// setting (off) while the default is on, so absence must not merge.
func persistenceEnabledIn(data []byte) *bool {
	var probe struct {
		Grid struct {
			PersistenceEnabled *bool `yaml:"persistence_enabled"`
		} `yaml:"grid"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil
	}
	return probe.Grid.PersistenceEnabled
}

func mergeInto(dst *AppConfig, src *AppConfig, persistenceEnabled *bool) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Grid.Columns != 0 {
		dst.Grid.Columns = src.Grid.Columns
	}
	if src.Grid.Rows != 0 {
		dst.Grid.Rows = src.Grid.Rows
	}
	if src.Grid.CellMinSizePx != 0 {
		dst.Grid.CellMinSizePx = src.Grid.CellMinSizePx
	}
	if src.Grid.SnapThresholdPx != 0 {
		dst.Grid.SnapThresholdPx = src.Grid.SnapThresholdPx
	}
	if strings.TrimSpace(src.Grid.GridVisibilityMode) != "" {
		dst.Grid.GridVisibilityMode = strings.ToLower(strings.TrimSpace(src.Grid.GridVisibilityMode))
	}
	if persistenceEnabled != nil {
		dst.Grid.PersistenceEnabled = *persistenceEnabled
	}
	if strings.TrimSpace(src.Persistence.Backend) != "" {
		dst.Persistence.Backend = strings.ToLower(strings.TrimSpace(src.Persistence.Backend))
	}
	if strings.TrimSpace(src.Persistence.Path) != "" {
		dst.Persistence.Path = strings.TrimSpace(src.Persistence.Path)
	}
	if strings.TrimSpace(src.Persistence.DSN) != "" {
		dst.Persistence.DSN = strings.TrimSpace(src.Persistence.DSN)
	}
	if src.Persistence.QuietMs != 0 {
		dst.Persistence.QuietMs = src.Persistence.QuietMs
	}
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envInt := func(name string, dst *int) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	envInt(EnvGridColumns, &cfg.Grid.Columns)
	envInt(EnvGridRows, &cfg.Grid.Rows)
	envInt(EnvGridCellMinSizePx, &cfg.Grid.CellMinSizePx)
	envInt(EnvGridSnapThresholdPx, &cfg.Grid.SnapThresholdPx)
	if v := strings.TrimSpace(os.Getenv(EnvGridVisibility)); v != "" {
		cfg.Grid.GridVisibilityMode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvPersistenceEnabled)); v != "" {
		lv := strings.ToLower(v)
		cfg.Grid.PersistenceEnabled = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoreBackend)); v != "" {
		cfg.Persistence.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorePath)); v != "" {
		cfg.Persistence.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoreDSN)); v != "" {
		cfg.Persistence.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by
// environment variables, for surfacing "set by environment" in a settings UI.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"grid.columns":              EnvGridColumns,
		"grid.rows":                 EnvGridRows,
		"grid.cell_min_size_px":     EnvGridCellMinSizePx,
		"grid.snap_threshold_px":    EnvGridSnapThresholdPx,
		"grid.grid_visibility_mode": EnvGridVisibility,
		"grid.persistence_enabled":  EnvPersistenceEnabled,
		"persistence.backend":       EnvStoreBackend,
		"persistence.path":          EnvStorePath,
		"persistence.dsn":           EnvStoreDSN,
		"logging.level":             EnvLogLevel,
		"logging.format":            EnvLogFormat,
		"logging.file":              EnvLogFile,
	}
	name, ok := names[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
