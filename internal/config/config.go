/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config holds the user-editable YAML configuration plus read-only
// environment overrides. The study upload token never touches the YAML file;
// it lives in the OS keyring.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	keyring "github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

type GeneralConfig struct {
	Theme           string `yaml:"theme"` // "system" | "light" | "dark"
	AutoSuggestions bool   `yaml:"auto_suggestions"`
}

// EditorConfig carries the presentation constants of the editing engine.
// The move epsilon and paste offset have no deeper rationale; they are kept
// here so studies can tune them.
type EditorConfig struct {
	CanvasWidth  int     `yaml:"canvas_width"`
	CanvasHeight int     `yaml:"canvas_height"`
	StrokeWidth  float64 `yaml:"stroke_width"`
	MoveEpsilon  float64 `yaml:"move_epsilon"`
	PasteOffsetX float64 `yaml:"paste_offset_x"`
	PasteOffsetY float64 `yaml:"paste_offset_y"`
	GhostOpacity float64 `yaml:"ghost_opacity"`
	TemplateDir  string  `yaml:"template_dir"`
}

// EventLogConfig selects where interaction events go.
type EventLogConfig struct {
	Backend string `yaml:"backend"` // "off" | "csv" | "sqlite" | "postgres"
	Path    string `yaml:"path"`    // csv/sqlite file path
	PGDSN   string `yaml:"pg_dsn"`  // postgres study sink
}

// StudyConfig points at the optional study collection service.
type StudyConfig struct {
	BaseURL   string `yaml:"base_url"`
	TimeoutMs int    `yaml:"timeout_ms"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	General       GeneralConfig  `yaml:"general"`
	Editor        EditorConfig   `yaml:"editor"`
	EventLog      EventLogConfig `yaml:"event_log"`
	Study         StudyConfig    `yaml:"study"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{Theme: "system", AutoSuggestions: true},
		Editor: EditorConfig{
			CanvasWidth:  1200,
			CanvasHeight: 800,
			StrokeWidth:  2,
			MoveEpsilon:  2.0,
			PasteOffsetX: 10,
			PasteOffsetY: 10,
			GhostOpacity: 0.35,
		},
		EventLog: EventLogConfig{Backend: "csv"},
		Study:    StudyConfig{BaseURL: "", TimeoutMs: 15000},
		Logging:  LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvEventLogBackend = "SDW_EVENTLOG_BACKEND"
	EnvEventLogPath    = "SDW_EVENTLOG_PATH"
	EnvEventLogPGDSN   = "SDW_PG_DSN"
	EnvStudyURL        = "SDW_STUDY_URL"
	EnvStudyTimeoutMs  = "SDW_STUDY_TIMEOUT_MS"
	EnvAutoSuggestions = "SDW_AUTO_SUGGESTIONS"
	EnvLogLevel        = "SDW_LOG_LEVEL"
	EnvLogFormat       = "SDW_LOG_FORMAT"
	EnvLogSource       = "SDW_LOG_SOURCE"
	EnvLogFile         = "SDW_LOG_FILE"
)

// Service/keys for the OS keyring.
const (
	keyringService = "SceneDraw"
	keyringToken   = "study_token"
)

// TokenStore abstracts the keyring, so tests can stub it.
type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

var tokenStore TokenStore = osKeyring{}

// osKeyring stores the token via github.com/zalando/go-keyring.
type osKeyring struct{}

func (osKeyring) Get(service, key string) (string, error) { return keyring.Get(service, key) }
func (osKeyring) Set(service, key, value string) error    { return keyring.Set(service, key, value) }
func (osKeyring) Delete(service, key string) error        { return keyring.Delete(service, key) }

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "SceneDraw")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "SceneDraw")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "scenedraw")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. The study token comes from the keyring and is
// returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into the OS
// keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
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
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// ClearToken removes the study token from the keyring.
func ClearToken() error {
	return tokenStore.Delete(keyringService, keyringToken)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.General.Theme != "" {
		dst.General.Theme = src.General.Theme
	}
	// booleans: copy directly from the file so user preferences persist
	dst.General.AutoSuggestions = src.General.AutoSuggestions

	if src.Editor.CanvasWidth > 0 {
		dst.Editor.CanvasWidth = src.Editor.CanvasWidth
	}
	if src.Editor.CanvasHeight > 0 {
		dst.Editor.CanvasHeight = src.Editor.CanvasHeight
	}
	if src.Editor.StrokeWidth > 0 {
		dst.Editor.StrokeWidth = src.Editor.StrokeWidth
	}
	if src.Editor.MoveEpsilon > 0 {
		dst.Editor.MoveEpsilon = src.Editor.MoveEpsilon
	}
	if src.Editor.PasteOffsetX != 0 {
		dst.Editor.PasteOffsetX = src.Editor.PasteOffsetX
	}
	if src.Editor.PasteOffsetY != 0 {
		dst.Editor.PasteOffsetY = src.Editor.PasteOffsetY
	}
	if src.Editor.GhostOpacity > 0 && src.Editor.GhostOpacity <= 1 {
		dst.Editor.GhostOpacity = src.Editor.GhostOpacity
	}
	if strings.TrimSpace(src.Editor.TemplateDir) != "" {
		dst.Editor.TemplateDir = strings.TrimSpace(src.Editor.TemplateDir)
	}

	if strings.TrimSpace(src.EventLog.Backend) != "" {
		dst.EventLog.Backend = strings.ToLower(strings.TrimSpace(src.EventLog.Backend))
	}
	if strings.TrimSpace(src.EventLog.Path) != "" {
		dst.EventLog.Path = strings.TrimSpace(src.EventLog.Path)
	}
	if strings.TrimSpace(src.EventLog.PGDSN) != "" {
		dst.EventLog.PGDSN = strings.TrimSpace(src.EventLog.PGDSN)
	}

	if src.Study.BaseURL != "" {
		dst.Study.BaseURL = src.Study.BaseURL
	}
	if src.Study.TimeoutMs != 0 {
		dst.Study.TimeoutMs = src.Study.TimeoutMs
	}

	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvEventLogBackend)); v != "" {
		cfg.EventLog.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvEventLogPath)); v != "" {
		cfg.EventLog.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvEventLogPGDSN)); v != "" {
		cfg.EventLog.PGDSN = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStudyURL)); v != "" {
		cfg.Study.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStudyTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Study.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutoSuggestions)); v != "" {
		cfg.General.AutoSuggestions = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvOverrideFor returns the env var name if the field is overridden by
// environment variables.
func EnvOverrideFor(key string) (string, bool) {
	var env string
	switch key {
	case "event_log.backend":
		env = EnvEventLogBackend
	case "event_log.path":
		env = EnvEventLogPath
	case "event_log.pg_dsn":
		env = EnvEventLogPGDSN
	case "study.base_url":
		env = EnvStudyURL
	case "study.timeout_ms":
		env = EnvStudyTimeoutMs
	case "general.auto_suggestions":
		env = EnvAutoSuggestions
	case "logging.level":
		env = EnvLogLevel
	case "logging.format":
		env = EnvLogFormat
	case "logging.source":
		env = EnvLogSource
	case "logging.file":
		env = EnvLogFile
	default:
		return "", false
	}
	if os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}
