// Package appconfig manages application configuration and runtime file paths.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/treykane/pitunnel-manager/internal/util"
)

// UIConfig contains TUI display settings.
type UIConfig struct {
	RefreshSeconds int `yaml:"refresh_seconds"`
}

// ReloadConfig tunes the reload-all pacing delays.
type ReloadConfig struct {
	SettleMillis int `yaml:"settle_millis"`
	PaceMillis   int `yaml:"pace_millis"`
}

// Config holds application-level configuration.
type Config struct {
	// Binary is the external tunnel binary name or path.
	Binary string       `yaml:"binary"`
	UI     UIConfig     `yaml:"ui"`
	Reload ReloadConfig `yaml:"reload"`
}

// SettleDelay converts the configured settle pause to a duration.
func (c Config) SettleDelay() time.Duration {
	if c.Reload.SettleMillis < 0 {
		return 0
	}
	return time.Duration(c.Reload.SettleMillis) * time.Millisecond
}

// PaceDelay converts the configured launch pacing to a duration.
func (c Config) PaceDelay() time.Duration {
	if c.Reload.PaceMillis < 0 {
		return 0
	}
	return time.Duration(c.Reload.PaceMillis) * time.Millisecond
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Binary: "pitunnel",
		UI:     UIConfig{RefreshSeconds: util.DefaultRefreshSeconds},
		Reload: ReloadConfig{
			SettleMillis: int(util.DefaultReloadSettle / time.Millisecond),
			PaceMillis:   int(util.DefaultLaunchPace / time.Millisecond),
		},
	}
}

// ConfigDir returns the application config directory path.
// Uses XDG_CONFIG_HOME if set, otherwise ~/.config/pitunnel-manager.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pitunnel-manager"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, ".config", "pitunnel-manager"), nil
}

// EventsFilePath returns the full path to the operation journal.
func EventsFilePath() (string, error) {
	d, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(d, "events.jsonl"), nil
}

// Load reads config.yaml from the config directory.
// If the file doesn't exist, creates it with defaults.
func Load() (Config, error) {
	d, err := ConfigDir()
	if err != nil {
		return Config{}, err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return Config{}, err
	}
	path := filepath.Join(d, "config.yaml")
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := Default()
			if err := Save(cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return Config{}, err
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if cfg.UI.RefreshSeconds <= 0 {
		cfg.UI.RefreshSeconds = util.DefaultRefreshSeconds
	}
	if cfg.Binary == "" {
		cfg.Binary = "pitunnel"
	}
	return cfg, nil
}

// Save writes config to config.yaml.
func Save(cfg Config) error {
	d, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(d, 0o755); err != nil {
		return err
	}
	path := filepath.Join(d, "config.yaml")
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
