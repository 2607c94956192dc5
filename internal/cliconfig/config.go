package cliconfig

import (
	"fmt"
	"strings"

	"github.com/bft-labs/lifecycle/pkg/lifecycle"
)

// DefaultOwnerName names the demo host when none is configured.
const DefaultOwnerName = "host"

// Config holds CLI configuration for the lifecycle tool.
type Config struct {
	LogLevel  string
	FailFast  bool
	CatchUp   bool
	OwnerName string
	Observers int
	Events    []string

	TriggerFile   string
	StopOnDestroy bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		OwnerName: DefaultOwnerName,
		Observers: 1,
		Events: []string{
			"ON_CREATE", "ON_START", "ON_RESUME",
			"ON_PAUSE", "ON_STOP", "ON_DESTROY",
		},
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "":
		c.LogLevel = "info"
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log-level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	if c.OwnerName == "" {
		c.OwnerName = DefaultOwnerName
	}
	if c.Observers < 0 {
		return fmt.Errorf("observers must not be negative")
	}
	if _, err := c.ParsedEvents(); err != nil {
		return err
	}
	return nil
}

// ValidateWatch checks the settings the watch command needs on top of Validate.
func (c *Config) ValidateWatch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.TriggerFile == "" {
		return fmt.Errorf("trigger file is required")
	}
	return nil
}

// ParsedEvents converts the configured event names.
func (c *Config) ParsedEvents() ([]lifecycle.Event, error) {
	events := make([]lifecycle.Event, 0, len(c.Events))
	for _, name := range c.Events {
		ev, err := lifecycle.ParseEvent(name)
		if err != nil {
			return nil, fmt.Errorf("events: %w", err)
		}
		events = append(events, ev)
	}
	return events, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value from a pointer if not nil and flag not changed.
func (s *configSetter) setInt(flag string, value *int, dst *int) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setStrings replaces a list if the new one is non-empty and flag not changed.
func (s *configSetter) setStrings(flag string, value []string, dst *[]string) {
	if len(value) == 0 || s.changed[flag] {
		return
	}
	*dst = append([]string(nil), value...)
}
