package config

import (
	"github.com/saiset-co/sai-strate/types"
)

// Merge combines a base pipeline config with a per-route one. Route
// middleware are appended after the base list, skip references are unioned,
// and debug is on if either side enables it. Neither input is mutated.
func Merge(base, route *types.Config) *types.Config {
	if base == nil && route == nil {
		return &types.Config{}
	}
	if route == nil {
		return base.Clone()
	}
	if base == nil {
		return route.Clone()
	}

	merged := base.Clone()
	merged.Debug = base.Debug || route.Debug
	merged.Middleware = append(merged.Middleware, route.Middleware...)
	merged.Skip = append(merged.Skip, route.Skip...)

	return merged
}
