/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"panelboard/internal/canvas"
	"panelboard/internal/config"
	"panelboard/internal/crash"
	"panelboard/internal/export"
	"panelboard/internal/geom"
	"panelboard/internal/layout"
	applog "panelboard/internal/log"
	"panelboard/internal/storage"
	"panelboard/internal/ui"
	"panelboard/internal/version"
)

func usage() {
	fmt.Println("Panelboard — grid panel layout engine")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  panelboard version|-v|--version   Show version")
	fmt.Println("  panelboard ui                      Launch desktop UI (build with -tags fyne for full UI)")
	fmt.Println("  panelboard inspect                 Print the persisted layout document")
	fmt.Println("  panelboard reset                   Reset the stored layout to defaults")
	fmt.Println("  panelboard export <dir>            Render the layout to svg/png/pdf sheets in <dir>")
}

// defaultRegistry declares the built-in panel kinds and their size limits.
func defaultRegistry() *layout.Registry {
	return layout.NewRegistry(map[string]layout.PanelConstraints{
		"editor":  {MinSize: layout.SizeCells{W: 4, H: 4}},
		"chat":    {MinSize: layout.SizeCells{W: 2, H: 2}, MaxSize: &layout.SizeCells{W: 6, H: 8}},
		"preview": {MinSize: layout.SizeCells{W: 3, H: 2}},
	})
}

// defaultLayout seeds a fresh board and anchors the persistence merge.
func defaultLayout(columns, rows int) []layout.PanelLayout {
	half := columns / 2
	return []layout.PanelLayout{
		{ID: "editor-1", Type: "editor", Grid: geom.GridRect{X: 0, Y: 0, W: half, H: rows}, Visible: true},
		{ID: "chat-1", Type: "chat", Grid: geom.GridRect{X: half, Y: 0, W: columns - half, H: rows / 2}, Visible: true},
		{ID: "preview-1", Type: "preview", Grid: geom.GridRect{X: half, Y: rows / 2, W: columns - half, H: rows - rows/2}, Visible: true},
	}
}

// openBackend builds the configured storage backend. The keyring secret
// reaches the Postgres driver via PGPASSWORD so the DSN on disk stays
// password-free.
func openBackend(cfg config.AppConfig, secret string) (storage.Store, error) {
	path, err := cfg.LayoutPath()
	if err != nil {
		return nil, err
	}
	if cfg.Persistence.Backend == "postgres" && secret != "" {
		if err := os.Setenv("PGPASSWORD", secret); err != nil {
			return nil, fmt.Errorf("set PGPASSWORD: %w", err)
		}
	}
	return storage.Open(storage.Options{
		Backend: cfg.Persistence.Backend,
		Path:    path,
		DSN:     cfg.Persistence.DSN,
	})
}

func buildController(cfg config.AppConfig, secret string) (*canvas.Controller, error) {
	var backend storage.Store
	if cfg.Grid.PersistenceEnabled {
		b, err := openBackend(cfg, secret)
		if err != nil {
			return nil, err
		}
		backend = b
	}
	return canvas.New(canvas.Options{
		Grid:        cfg.Grid,
		Registry:    defaultRegistry(),
		Defaults:    defaultLayout(cfg.Grid.Columns, cfg.Grid.Rows),
		Backend:     backend,
		QuietPeriod: time.Duration(cfg.Persistence.QuietMs) * time.Millisecond,
	})
}

func reportDir() string {
	cp, err := config.ConfigPath()
	if err != nil {
		return ""
	}
	return filepath.Join(filepath.Dir(cp), "crash")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var ctrl *canvas.Controller
	defer func() { crash.Recover(ctrl, reportDir()) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) <= 1 {
		usage()
		return
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Panelboard — grid panel layout engine")
		fmt.Println(version.String())
		return
	case "ui":
		cfg, secret, err := config.Load()
		if err != nil {
			fail(l, "load config", err)
		}
		ctrl, err = buildController(cfg, secret)
		if err != nil {
			fail(l, "build controller", err)
		}
		if err := ui.Run(ctrl, "Panelboard"); err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		return
	case "inspect":
		cfg, secret, err := config.Load()
		if err != nil {
			fail(l, "load config", err)
		}
		backend, err := openBackend(cfg, secret)
		if err != nil {
			fail(l, "open storage", err)
		}
		defer backend.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		raw, ok, err := backend.Load(ctx)
		if err != nil {
			fail(l, "load layout", err)
		}
		if !ok {
			fmt.Println("No layout persisted yet; the defaults are in effect.")
			return
		}
		os.Stdout.Write(raw)
		return
	case "reset":
		cfg, secret, err := config.Load()
		if err != nil {
			fail(l, "load config", err)
		}
		backend, err := openBackend(cfg, secret)
		if err != nil {
			fail(l, "open storage", err)
		}
		defer backend.Close()
		data, err := storage.Encode(defaultLayout(cfg.Grid.Columns, cfg.Grid.Rows))
		if err != nil {
			fail(l, "encode defaults", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := backend.Save(ctx, data); err != nil {
			fail(l, "save defaults", err)
		}
		fmt.Println("Layout reset to defaults.")
		return
	case "export":
		if len(args) < 3 {
			fmt.Println("export requires <dir>")
			usage()
			os.Exit(2)
		}
		outDir, _ := filepath.Abs(args[2])
		cfg, secret, err := config.Load()
		if err != nil {
			fail(l, "load config", err)
		}
		ctrl, err = buildController(cfg, secret)
		if err != nil {
			fail(l, "build controller", err)
		}
		defer func() {
			_ = ctrl.Close()
			ctrl = nil
		}()
		sheet := export.NewSheet(cfg.Grid.Columns, cfg.Grid.Rows, ctrl.Store().Snapshot())
		paths, err := export.Batch(sheet, export.BatchOptions{
			OutDir: outDir,
			Sheet:  export.Options{CellPx: cfg.Grid.CellMinSizePx, IncludeGrid: true, Labels: true},
		})
		if err != nil {
			fail(l, "export", err)
		}
		for _, p := range paths {
			fmt.Println("Wrote", p)
		}
		return
	}

	usage()
}

func fail(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}
