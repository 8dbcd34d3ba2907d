package config

import (
	"fmt"
	"path/filepath"
	"time"

	"iconpng/internal/model"
)

// Config is the top-level application configuration.
type Config struct {
	ConfigVersion int          `mapstructure:"config_version" yaml:"config_version"`
	IconsDir      string       `mapstructure:"icons_dir" yaml:"icons_dir"`
	OutputDir     string       `mapstructure:"output_dir" yaml:"output_dir"`
	PrefsFile     string       `mapstructure:"prefs_file" yaml:"prefs_file"`
	LogFile       string       `mapstructure:"log_file" yaml:"log_file"`
	Export        ExportConfig `mapstructure:"export" yaml:"export"`
	Form          FormConfig   `mapstructure:"form" yaml:"form"`
	Web           WebConfig    `mapstructure:"web" yaml:"web"`
}

// CurrentConfigVersion marks the supported config version.
const CurrentConfigVersion = 1

// Fill modes for exported icons.
const (
	FillUniform = "uniform"
	FillNative  = "native"
)

// ExportConfig controls the raster pipeline defaults.
type ExportConfig struct {
	SizePx         int    `mapstructure:"size" yaml:"size"`
	FillColor      string `mapstructure:"color" yaml:"color"`
	FillMode       string `mapstructure:"fill_mode" yaml:"fill_mode"`
	WaitTimeoutMs  int    `mapstructure:"wait_timeout_ms" yaml:"wait_timeout_ms"`
	WaitIntervalMs int    `mapstructure:"wait_interval_ms" yaml:"wait_interval_ms"`
}

// FormConfig controls debounce timings of the interactive form.
type FormConfig struct {
	ParseDebounceMs int `mapstructure:"parse_debounce_ms" yaml:"parse_debounce_ms"`
	PrefsDebounceMs int `mapstructure:"prefs_debounce_ms" yaml:"prefs_debounce_ms"`
}

// WebConfig configures browser mode.
type WebConfig struct {
	Addr         string `mapstructure:"addr" yaml:"addr"`
	CacheVersion string `mapstructure:"cache_version" yaml:"cache_version"`
}

// ParseDebounce returns the parse debounce as a duration.
func (f FormConfig) ParseDebounce() time.Duration {
	return time.Duration(f.ParseDebounceMs) * time.Millisecond
}

// PrefsDebounce returns the prefs debounce as a duration.
func (f FormConfig) PrefsDebounce() time.Duration {
	return time.Duration(f.PrefsDebounceMs) * time.Millisecond
}

// WaitTimeout returns the bounded pre-export wait.
func (e ExportConfig) WaitTimeout() time.Duration {
	return time.Duration(e.WaitTimeoutMs) * time.Millisecond
}

// WaitInterval returns the polling step of the pre-export wait.
func (e ExportConfig) WaitInterval() time.Duration {
	return time.Duration(e.WaitIntervalMs) * time.Millisecond
}

// DefaultConfigPath returns <UserConfigDir>/iconpng/config.yaml.
func DefaultConfigPath() string {
	return filepath.Join(model.UserDir(), "config.yaml")
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	dir := model.UserDir()
	return Config{
		ConfigVersion: CurrentConfigVersion,
		IconsDir:      filepath.Join(dir, "icons"),
		OutputDir:     ".",
		PrefsFile:     filepath.Join(dir, "prefs.toml"),
		LogFile:       filepath.Join(dir, "iconpng.log"),
		Export: ExportConfig{
			SizePx:         model.DefaultSizePx,
			FillColor:      model.DefaultFillColor,
			FillMode:       FillUniform,
			WaitTimeoutMs:  3000,
			WaitIntervalMs: 100,
		},
		Form: FormConfig{
			ParseDebounceMs: 450,
			PrefsDebounceMs: 300,
		},
		Web: WebConfig{
			Addr:         ":8080",
			CacheVersion: "icon-downloader-v1",
		},
	}
}

// Validate rejects values the rest of the program cannot work with.
func (c Config) Validate() error {
	switch c.Export.FillMode {
	case FillUniform, FillNative:
	default:
		return fmt.Errorf("export.fill_mode must be %q or %q, got %q", FillUniform, FillNative, c.Export.FillMode)
	}
	if c.Export.FillColor != "" {
		if _, err := model.NormalizeColor(c.Export.FillColor); err != nil {
			return fmt.Errorf("export.color: %w", err)
		}
	}
	if c.Export.WaitIntervalMs <= 0 || c.Export.WaitTimeoutMs < c.Export.WaitIntervalMs {
		return fmt.Errorf("export.wait_interval_ms must be positive and not exceed export.wait_timeout_ms")
	}
	if c.Form.ParseDebounceMs < 0 || c.Form.PrefsDebounceMs < 0 {
		return fmt.Errorf("form debounce values must not be negative")
	}
	if c.Web.Addr == "" {
		return fmt.Errorf("web.addr is required")
	}
	return nil
}
