package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"iconpng/internal/model"
)

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"icons-dir": "icons_dir",
	"out":       "output_dir",
	"size":      "export.size",
	"color":     "export.color",
	"fill-mode": "export.fill_mode",
	"addr":      "web.addr",
}

// Load reads configuration from path (DefaultConfigPath when empty), then
// applies ICONPNG_* environment variables and any changed flags. A missing
// file is not an error.
func Load(path string, flags *pflag.FlagSet) (Config, error) {
	if path == "" {
		path = DefaultConfigPath()
	}
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("ICONPNG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("icons_dir", cfg.IconsDir)
	v.SetDefault("output_dir", cfg.OutputDir)
	v.SetDefault("prefs_file", cfg.PrefsFile)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("export.size", cfg.Export.SizePx)
	v.SetDefault("export.color", cfg.Export.FillColor)
	v.SetDefault("export.fill_mode", cfg.Export.FillMode)
	v.SetDefault("export.wait_timeout_ms", cfg.Export.WaitTimeoutMs)
	v.SetDefault("export.wait_interval_ms", cfg.Export.WaitIntervalMs)
	v.SetDefault("form.parse_debounce_ms", cfg.Form.ParseDebounceMs)
	v.SetDefault("form.prefs_debounce_ms", cfg.Form.PrefsDebounceMs)
	v.SetDefault("web.addr", cfg.Web.Addr)
	v.SetDefault("web.cache_version", cfg.Web.CacheVersion)

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if !v.IsSet("config_version") {
			return Config{}, fmt.Errorf("config_version is required; expected %d", CurrentConfigVersion)
		}
		if v.GetInt("config_version") != CurrentConfigVersion {
			return Config{}, fmt.Errorf("unsupported config_version %d; expected %d", v.GetInt("config_version"), CurrentConfigVersion)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("stat config %s: %w", path, err)
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	expandPaths(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func expandPaths(cfg *Config) {
	cfg.IconsDir = expand(cfg.IconsDir)
	cfg.OutputDir = expand(cfg.OutputDir)
	cfg.PrefsFile = expand(cfg.PrefsFile)
	cfg.LogFile = expand(cfg.LogFile)
}

func expand(value string) string {
	if value == "" {
		return value
	}
	return model.ExpandTilde(os.ExpandEnv(value))
}

// WriteDefault writes the default config to the target path.
func WriteDefault(path string, overwrite bool) (string, error) {
	if path == "" {
		path = DefaultConfigPath()
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return "", fmt.Errorf("config already exists at %s", path)
		}
	}

	data, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return "", err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
