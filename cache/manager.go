package cache

import (
	"context"

	"github.com/saiset-co/sai-strate/types"
	"github.com/saiset-co/sai-strate/utils"
)

// NewCache builds the backend selected by config. Returns nil when caching
// is disabled.
func NewCache(ctx context.Context, config *types.CacheConfig) (types.Cache, error) {
	if config == nil || !config.Enabled {
		return nil, nil
	}

	switch config.Type {
	case "memory", "":
		return NewMemoryCache(), nil
	case "redis":
		redisConfig := &RedisConfig{Addr: "localhost:6379"}
		if config.Config != nil {
			if err := utils.UnmarshalConfig(config.Config, redisConfig); err != nil {
				return nil, types.WrapError(err, "failed to unmarshal redis cache config")
			}
		}
		return NewRedisCache(ctx, redisConfig)
	default:
		return nil, types.Errorf(types.ErrCacheTypeUnknown, "%s", config.Type)
	}
}
