// Package saiStrate orchestrates middleware execution around serverless API
// route handlers: it resolves declared middleware dependencies into an
// execution order and runs the chain in a nested pre/post pattern around the
// handler, with a shared per-invocation context.
package saiStrate

import (
	"context"
	"sync"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/saiset-co/sai-strate/cache"
	"github.com/saiset-co/sai-strate/config"
	"github.com/saiset-co/sai-strate/logger"
	"github.com/saiset-co/sai-strate/middleware"
	"github.com/saiset-co/sai-strate/types"
)

type Strate struct {
	config  *types.Config
	logger  types.Logger
	cache   types.Cache
	mu      sync.Mutex
	engines map[*types.Config]*engineEntry
}

type engineEntry struct {
	once   sync.Once
	engine *middleware.Engine
	err    error
}

type Option func(*Strate)

func WithLogger(l types.Logger) Option {
	return func(s *Strate) { s.logger = l }
}

func WithCache(c types.Cache) Option {
	return func(s *Strate) { s.cache = c }
}

// New creates an orchestrator with the given base pipeline config. Register
// all base middleware before the first invocation.
func New(cfg *types.Config, opts ...Option) *Strate {
	if cfg == nil {
		cfg = &types.Config{}
	}

	s := &Strate{
		config:  cfg,
		engines: make(map[*types.Config]*engineEntry),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.NewNopLogger()
	}

	return s
}

// NewFromSettings builds the orchestrator from a yaml settings file: logger
// level and format, cache backend, debug flag.
func NewFromSettings(ctx context.Context, cfg *types.Config, settingsPath string) (*Strate, error) {
	settings, err := config.NewLoader().LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	log, err := logger.NewDefaultLogger(settings.Logger)
	if err != nil {
		return nil, err
	}

	backend, err := cache.NewCache(ctx, settings.Cache)
	if err != nil {
		return nil, err
	}

	if cfg == nil {
		cfg = &types.Config{}
	}
	cfg.Debug = cfg.Debug || settings.Debug

	return New(cfg, WithLogger(log), WithCache(backend)), nil
}

// Use appends middleware to the base list. Must be called before the first
// invocation: resolved chains are cached.
func (s *Strate) Use(mw ...types.Middleware) {
	s.config.Middleware = append(s.config.Middleware, mw...)
}

func (s *Strate) Logger() types.Logger {
	return s.logger
}

func (s *Strate) Cache() types.Cache {
	return s.cache
}

// Invoke runs the merged chain around handler for one request/response pair.
// This is the entry point for hosts that already hold the wrapped objects.
// Configuration errors (missing dependency, cycle, skipped dependency,
// deferred identity) surface here on every call.
func (s *Strate) Invoke(req *types.Request, res *types.Response, handler types.Handler, route *types.Config) error {
	engine, err := s.engineFor(route)
	if err != nil {
		return err
	}

	return engine.Run(req, res, handler)
}

// Handler wraps a route handler into a fasthttp handler running the merged
// middleware chain.
func (s *Strate) Handler(handler types.Handler, route *types.Config) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		req := types.NewRequest(ctx)
		res := types.NewResponse(ctx)

		if err := s.Invoke(req, res, handler, route); err != nil {
			s.logger.Error("invocation failed", zap.Error(err))
			if len(ctx.Response.Body()) == 0 {
				ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
			}
		}
	}
}

// Stop shuts down owned backends.
func (s *Strate) Stop(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	if s.cache != nil {
		g.Go(func() error {
			return s.cache.Stop(gCtx)
		})
	}

	return g.Wait()
}

// engineFor returns the cached engine for a route config, resolving it on
// first use. Resolution failures are cached too: every invocation of a
// misconfigured route reports the same configuration error.
func (s *Strate) engineFor(route *types.Config) (*middleware.Engine, error) {
	s.mu.Lock()
	entry, ok := s.engines[route]
	if !ok {
		entry = &engineEntry{}
		s.engines[route] = entry
	}
	s.mu.Unlock()

	entry.once.Do(func() {
		entry.engine, entry.err = middleware.NewEngine(config.Merge(s.config, route), s.logger)
	})

	return entry.engine, entry.err
}
