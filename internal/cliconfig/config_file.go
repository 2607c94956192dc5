package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors Config for TOML. Pointers mark keys that were present.
type FileConfig struct {
	LogLevel      string   `toml:"log_level"`
	FailFast      *bool    `toml:"fail_fast"`
	CatchUp       *bool    `toml:"catch_up"`
	OwnerName     string   `toml:"owner_name"`
	Observers     *int     `toml:"observers"`
	Events        []string `toml:"events"`
	TriggerFile   string   `toml:"trigger_file"`
	StopOnDestroy *bool    `toml:"stop_on_destroy"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns ~/.lifecycle/config.toml, or "" without a home directory.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".lifecycle", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) {
	s := newConfigSetter(changed)

	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)
	s.setString("owner", fc.OwnerName, &cfg.OwnerName)
	s.setString("trigger", fc.TriggerFile, &cfg.TriggerFile)

	s.setInt("observers", fc.Observers, &cfg.Observers)
	s.setStrings("events", fc.Events, &cfg.Events)

	s.setBool("fail-fast", fc.FailFast, &cfg.FailFast)
	s.setBool("catch-up", fc.CatchUp, &cfg.CatchUp)
	s.setBool("stop-on-destroy", fc.StopOnDestroy, &cfg.StopOnDestroy)
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
