/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
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

	"scenedraw/internal/config"
	"scenedraw/internal/crash"
	"scenedraw/internal/eventlog"
	"scenedraw/internal/export"
	applog "scenedraw/internal/log"
	"scenedraw/internal/study"
	"scenedraw/internal/template"
	"scenedraw/internal/ui"
	"scenedraw/internal/version"
)

func usage() {
	fmt.Println("SceneDraw — interactive scene editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  scenedraw version|-v|--version               Show version")
	fmt.Println("  scenedraw ui                                 Launch desktop editor (build with -tags fyne for full UI)")
	fmt.Println("  scenedraw template list                      List stored templates")
	fmt.Println("  scenedraw template validate <file>           Check a template file against the schema")
	fmt.Println("  scenedraw export svg|pdf <category> <id> <out>  Render a stored template to a file")
	fmt.Println("  scenedraw study upload [<csv>]               Upload a recorded event log to the study server")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	defer func() { crash.Recover(nil) }()

	cfg, token, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) <= 1 {
		usage()
		return
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("SceneDraw — interactive scene editor")
		fmt.Println(version.String())
	case "ui":
		runUI(cfg, l)
	case "template":
		runTemplate(cfg, args[2:])
	case "export":
		runExport(cfg, args[2:])
	case "study":
		runStudy(cfg, token, args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func runUI(cfg config.AppConfig, l *slog.Logger) {
	events, closeEvents, err := openEventLogger(cfg)
	if err != nil {
		l.Warn("event logging disabled", slog.Any("err", err))
	}
	if closeEvents != nil {
		defer func() {
			if cerr := closeEvents(); cerr != nil {
				l.Warn("event log close failed", slog.Any("err", cerr))
			}
		}()
	}

	store := template.NewStore(templateDir(cfg))
	if err := ui.Run(ui.Options{Config: cfg, Events: events, Templates: store}); err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

func runTemplate(cfg config.AppConfig, args []string) {
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}
	switch args[0] {
	case "list":
		store := template.NewStore(templateDir(cfg))
		metas := store.List()
		if len(metas) == 0 {
			fmt.Println("No templates in", store.Dir())
			return
		}
		for _, m := range metas {
			fmt.Printf("%s / %s\n", m.Category, m.ItemID)
		}
	case "validate":
		if len(args) < 2 {
			fmt.Println("validate requires <file>")
			os.Exit(2)
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		if err := template.Validate(data); err != nil {
			fmt.Println("Invalid:", err)
			os.Exit(1)
		}
		fmt.Println("OK")
	default:
		usage()
		os.Exit(2)
	}
}

func runExport(cfg config.AppConfig, args []string) {
	if len(args) < 4 {
		fmt.Println("export requires svg|pdf <category> <id> <out>")
		os.Exit(2)
	}
	format, category, id, out := args[0], args[1], args[2], args[3]

	store := template.NewStore(templateDir(cfg))
	t, err := store.Load(category, id)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}

	w := float64(cfg.Editor.CanvasWidth)
	h := float64(cfg.Editor.CanvasHeight)
	switch format {
	case "svg":
		err = export.ExportSVG(t.Items, out, export.SVGOptions{Width: w, Height: h})
	case "pdf":
		err = export.ExportPDF(t.Items, out, export.PDFOptions{Width: w, Height: h, Title: category + "/" + id})
	default:
		fmt.Println("unknown export format:", format)
		os.Exit(2)
	}
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote", out)
}

func runStudy(cfg config.AppConfig, token string, args []string) {
	if len(args) < 1 || args[0] != "upload" {
		usage()
		os.Exit(2)
	}
	if cfg.Study.BaseURL == "" {
		fmt.Println("no study server configured (set study.base_url or SDW_STUDY_URL)")
		os.Exit(1)
	}

	path := ""
	if len(args) >= 2 {
		path = args[1]
	} else if cfg.EventLog.Backend == "csv" || cfg.EventLog.Backend == "" {
		path = cfg.EventLog.Path
		if path == "" {
			if p, err := config.ConfigPath(); err == nil {
				path = filepath.Join(filepath.Dir(p), "events.csv")
			}
		}
	}
	if path == "" {
		fmt.Println("upload requires a csv event log (pass a path or configure the csv backend)")
		os.Exit(2)
	}

	events, err := eventlog.ReadCSV(path)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if len(events) == 0 {
		fmt.Println("Nothing to upload.")
		return
	}

	timeout := time.Duration(cfg.Study.TimeoutMs) * time.Millisecond
	client := study.NewClient(cfg.Study.BaseURL, token, timeout)
	ctx, cancel := context.WithTimeout(context.Background(), timeout+5*time.Second)
	defer cancel()
	session := filepath.Base(path)
	res, err := client.UploadEvents(ctx, session, events)
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	fmt.Printf("Uploaded %d events (%d accepted)\n", len(events), res.Accepted)
}

// templateDir resolves the template store location, defaulting to a
// "templates" directory beside the config file.
func templateDir(cfg config.AppConfig) string {
	if cfg.Editor.TemplateDir != "" {
		return cfg.Editor.TemplateDir
	}
	if p, err := config.ConfigPath(); err == nil {
		return filepath.Join(filepath.Dir(p), "templates")
	}
	return "templates"
}

// openEventLogger builds the configured study event sink. A nil logger with
// a nil error means logging is switched off.
func openEventLogger(cfg config.AppConfig) (eventlog.Logger, func() error, error) {
	dataDir := "."
	if p, err := config.ConfigPath(); err == nil {
		dataDir = filepath.Dir(p)
	}

	switch cfg.EventLog.Backend {
	case "off":
		return nil, nil, nil
	case "csv", "":
		path := cfg.EventLog.Path
		if path == "" {
			path = filepath.Join(dataDir, "events.csv")
		}
		lg, err := eventlog.OpenCSV(path)
		if err != nil {
			return nil, nil, err
		}
		return lg, lg.Close, nil
	case "sqlite":
		path := cfg.EventLog.Path
		if path == "" {
			path = filepath.Join(dataDir, "events.db")
		}
		lg, err := eventlog.OpenSQLite(path)
		if err != nil {
			return nil, nil, err
		}
		return lg, lg.Close, nil
	case "postgres":
		lg, err := eventlog.OpenPostgres(cfg.EventLog.PGDSN)
		if err != nil {
			return nil, nil, err
		}
		return lg, lg.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown eventlog backend %q", cfg.EventLog.Backend)
}
