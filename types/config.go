package types

import (
	"time"
)

// Config drives one middleware pipeline: the ordered middleware list, the
// references to exclude, and whether diagnostics are emitted. Route-level
// configs are merged onto a base config before resolution.
type Config struct {
	Debug      bool
	Middleware []Middleware
	Skip       []any
}

// Clone returns a shallow copy with its own slices.
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}
	clone := &Config{
		Debug:      c.Debug,
		Middleware: make([]Middleware, len(c.Middleware)),
		Skip:       make([]any, len(c.Skip)),
	}
	copy(clone.Middleware, c.Middleware)
	copy(clone.Skip, c.Skip)
	return clone
}

// Settings are the process-level knobs loaded from an optional yaml file.
type Settings struct {
	Debug  bool          `yaml:"debug" json:"debug"`
	Logger *LoggerConfig `yaml:"logger" json:"logger"`
	Cache  *CacheConfig  `yaml:"cache" json:"cache"`
}

type LoggerConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type CacheConfig struct {
	Enabled    bool          `yaml:"enabled" json:"enabled"`
	Type       string        `yaml:"type" json:"type" validate:"required_if=Enabled true"`
	Config     interface{}   `yaml:"config" json:"config"`
	DefaultTTL time.Duration `yaml:"default_ttl" json:"default_ttl" validate:"min=0"`
}
