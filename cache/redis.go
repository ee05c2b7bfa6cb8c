package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/saiset-co/sai-strate/types"
)

type RedisConfig struct {
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
}

type RedisCache struct {
	ctx    context.Context
	client *redis.Client
}

func NewRedisCache(ctx context.Context, config *RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, types.Errorf(types.ErrCacheConnectionFailed, "%s", err)
	}

	return &RedisCache{ctx: ctx, client: client}, nil
}

func (c *RedisCache) Get(key string) ([]byte, bool) {
	value, err := c.client.Get(c.ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return value, true
}

func (c *RedisCache) Set(key string, value []byte, ttl time.Duration) error {
	if key == "" {
		return types.ErrCacheKeyEmpty
	}
	return c.client.Set(c.ctx, key, value, ttl).Err()
}

func (c *RedisCache) Delete(key string) error {
	return c.client.Del(c.ctx, key).Err()
}

func (c *RedisCache) Stop(ctx context.Context) error {
	return c.client.Close()
}
