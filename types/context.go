package types

import (
	"go.uber.org/zap"
)

// StrateKey is the reserved context key holding the pipeline environment.
const StrateKey = "strate"

// SendErrorKey is the context key under which the error handler middleware
// installs its responder capability.
const SendErrorKey = "sendError"

// SendError sends a terminal error response and returns ErrResponseSent so
// downstream middleware can short-circuit safely.
type SendError func(code, message string, statusCode int, extra map[string]interface{}) error

// Env is the reserved strate namespace seeded into every context.
type Env struct {
	Configuration *Config
	Debug         func(msg string, fields ...zap.Field)
	Warn          func(msg string, fields ...zap.Field)
}

// Context is the shared mutable state for a single invocation. It is owned
// exclusively by that invocation and never crosses requests. Reads of absent
// keys and writes over present keys emit developer warnings; neither is an
// error, and the checks apply to top-level keys only.
type Context struct {
	values map[string]interface{}
	env    *Env
}

func NewContext(cfg *Config, logger Logger) *Context {
	if cfg == nil {
		cfg = &Config{}
	}

	env := &Env{
		Configuration: cfg,
		Debug:         func(string, ...zap.Field) {},
		Warn:          func(string, ...zap.Field) {},
	}

	if cfg.Debug && logger != nil {
		env.Debug = logger.Debug
		env.Warn = logger.Warn
	}

	c := &Context{
		values: make(map[string]interface{}),
		env:    env,
	}
	c.values[StrateKey] = env

	return c
}

// Get returns the value stored under key. A read of an absent key is reported
// through the warn channel and yields nil, never an error.
func (c *Context) Get(key string) interface{} {
	value, ok := c.values[key]
	if !ok {
		c.env.Warn("context key is not set", zap.String("key", key))
		return nil
	}
	return value
}

// Set stores value under key. Writing over a present key is reported through
// the warn channel but still performed: last write wins.
func (c *Context) Set(key string, value interface{}) {
	if _, ok := c.values[key]; ok {
		c.env.Warn("context key is already set, overwriting", zap.String("key", key))
	}
	c.values[key] = value
}

// Has reports key presence without emitting diagnostics.
func (c *Context) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Lookup is presence-checked access without diagnostics, for capability
// probes where absence is an expected outcome.
func (c *Context) Lookup(key string) (interface{}, bool) {
	value, ok := c.values[key]
	return value, ok
}

// Env returns the reserved strate namespace.
func (c *Context) Env() *Env {
	return c.env
}

// Value retrieves a typed context value. Absent keys go through the same
// diagnostics as Get; a type mismatch yields the zero value.
func Value[T any](c *Context, key string) T {
	if v, ok := c.Get(key).(T); ok {
		return v
	}
	var zero T
	return zero
}
