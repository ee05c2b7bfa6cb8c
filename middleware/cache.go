package middleware

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-strate/types"
	"github.com/saiset-co/sai-strate/utils"
)

type cachedResponse struct {
	Status  int               `json:"status"`
	Headers map[string]string `json:"headers"`
	Body    []byte            `json:"body"`
}

// CacheMiddleware serves GET responses from a cache backend. A hit
// short-circuits the chain through the ErrResponseSent sentinel; a miss runs
// the chain and stores cacheable responses on the way out.
type CacheMiddleware struct {
	cache  types.Cache
	logger types.Logger
	ttl    time.Duration
}

func NewCacheMiddleware(cache types.Cache, logger types.Logger, ttl time.Duration) *CacheMiddleware {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CacheMiddleware{
		cache:  cache,
		logger: logger,
		ttl:    ttl,
	}
}

func (m *CacheMiddleware) Name() string { return "cache" }

func (m *CacheMiddleware) Handle(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
	if m.cache == nil || req.Method() != "GET" {
		return next()
	}

	key := cacheKey(req)

	if data, ok := m.cache.Get(key); ok {
		var cached cachedResponse
		if err := utils.Unmarshal(data, &cached); err == nil {
			restoreResponse(res, &cached)
			c.Env().Debug("cache hit", zap.String("cache_key", key))
			return types.ErrResponseSent
		}
		m.logger.Warn("dropping undecodable cache entry", zap.String("cache_key", key))
		_ = m.cache.Delete(key)
	}

	err := next()
	if err != nil {
		return err
	}

	if !shouldCache(res) {
		return nil
	}

	entry := cachedResponse{
		Status:  res.StatusCode(),
		Headers: responseHeaders(res),
		Body:    res.Body(),
	}

	data, marshalErr := utils.Marshal(entry)
	if marshalErr != nil {
		m.logger.Error("failed to encode cache entry", zap.Error(marshalErr))
		return nil
	}

	if setErr := m.cache.Set(key, data, m.ttl); setErr != nil {
		m.logger.Error("failed to store cache entry",
			zap.String("cache_key", key), zap.Error(setErr))
		return nil
	}

	c.Env().Debug("cache set", zap.String("cache_key", key))

	return nil
}

func cacheKey(req *types.Request) string {
	key := req.Path()
	if query := req.URL().RawQuery; query != "" {
		key += "?" + query
	}
	return key
}

func shouldCache(res *types.Response) bool {
	status := res.StatusCode()
	if status < 200 || status >= 300 {
		return false
	}
	if len(res.Body()) == 0 {
		return false
	}

	cacheControl := strings.ToLower(res.HeaderValue("Cache-Control"))
	if strings.Contains(cacheControl, "no-cache") || strings.Contains(cacheControl, "no-store") {
		return false
	}

	return true
}

func responseHeaders(res *types.Response) map[string]string {
	headers := make(map[string]string)
	res.VisitHeaders(func(key, value string) {
		headers[key] = value
	})
	return headers
}

func restoreResponse(res *types.Response, cached *cachedResponse) {
	res.SetStatusCode(cached.Status)
	for key, value := range cached.Headers {
		res.SetHeader(key, value)
	}
	res.SetBody(cached.Body)
}
