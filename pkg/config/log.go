package config

import (
	"fmt"
	"strings"
)

// LogConfig selects the minimum level of the service logger. Levels are matched case-insensitively
// and an empty level means info.
type LogConfig struct {
	Level string `koanf:"level"`
}

var logLevels = []string{"debug", "info", "warn", "error"}

// EffectiveLevel returns the normalized level name the logger is built with.
func (c *LogConfig) EffectiveLevel() string {
	level := strings.ToLower(strings.TrimSpace(c.Level))
	if level == "" {
		return "info"
	}
	return level
}

func (c *LogConfig) String() string {
	return fmt.Sprintf("\n--- Log ---\n  log.level: %s\n", c.EffectiveLevel())
}

func (c *LogConfig) Validate() error {
	level := c.EffectiveLevel()
	for _, known := range logLevels {
		if level == known {
			return nil
		}
	}
	return fmt.Errorf("log.level %q is not one of %s", c.Level, strings.Join(logLevels, ", "))
}
