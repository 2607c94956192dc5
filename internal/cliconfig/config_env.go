package cliconfig

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// EnvPrefix is prepended to every environment key.
const EnvPrefix = "LIFECYCLE_"

// EnvConfig lists the LIFECYCLE_* variables. Pointers stay nil when unset.
type EnvConfig struct {
	LogLevel      string   `env:"LOG_LEVEL"`
	FailFast      *bool    `env:"FAIL_FAST, noinit"`
	CatchUp       *bool    `env:"CATCH_UP, noinit"`
	OwnerName     string   `env:"OWNER_NAME"`
	Observers     *int     `env:"OBSERVERS, noinit"`
	Events        []string `env:"EVENTS"`
	TriggerFile   string   `env:"TRIGGER_FILE"`
	StopOnDestroy *bool    `env:"STOP_ON_DESTROY, noinit"`
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnvConfig applies configuration from environment variables (LIFECYCLE_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(ctx context.Context, cfg *Config, changed map[string]bool) error {
	return applyEnv(ctx, cfg, changed, envconfig.OsLookuper())
}

func applyEnv(ctx context.Context, cfg *Config, changed map[string]bool, l envconfig.Lookuper) error {
	var ec EnvConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &ec,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, l),
	}); err != nil {
		return fmt.Errorf("environment: %w", err)
	}

	s := newConfigSetter(changed)

	s.setString("log-level", ec.LogLevel, &cfg.LogLevel)
	s.setString("owner", ec.OwnerName, &cfg.OwnerName)
	s.setString("trigger", ec.TriggerFile, &cfg.TriggerFile)

	s.setInt("observers", ec.Observers, &cfg.Observers)
	s.setStrings("events", ec.Events, &cfg.Events)

	s.setBool("fail-fast", ec.FailFast, &cfg.FailFast)
	s.setBool("catch-up", ec.CatchUp, &cfg.CatchUp)
	s.setBool("stop-on-destroy", ec.StopOnDestroy, &cfg.StopOnDestroy)

	return nil
}
