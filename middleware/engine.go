package middleware

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/saiset-co/sai-strate/logger"
	"github.com/saiset-co/sai-strate/types"
)

// Engine drives one resolved middleware chain around a route handler.
// Execution is strictly sequential and nested: middleware run in topological
// order on the way in and in reverse order on the way out, each suspended in
// place while its continuation runs. Resolution happens once per engine;
// every invocation gets a fresh context.
type Engine struct {
	cfg    *types.Config
	logger types.Logger
	chain  []types.Middleware
	order  []string
}

func NewEngine(cfg *types.Config, log types.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = &types.Config{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	graph, err := Resolve(cfg, log)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:    cfg,
		logger: log,
		chain:  graph.Chain(),
		order:  graph.Order(),
	}

	if cfg.Debug {
		skip, _ := ResolveSkip(cfg.Skip)
		log.Debug("middleware chain resolved",
			zap.Strings("order", e.order),
			zap.Strings("skip", skip.identities()),
			zap.Int("middleware", len(e.chain)))
	}

	return e, nil
}

// Order returns the resolved execution order.
func (e *Engine) Order() []string {
	return e.order
}

// Run executes the chain around handler with a freshly seeded context.
func (e *Engine) Run(req *types.Request, res *types.Response, handler types.Handler) error {
	return e.RunWith(req, res, types.NewContext(e.cfg, e.logger), handler)
}

// RunWith executes the chain with a caller-supplied context. The context must
// not be reused across invocations.
func (e *Engine) RunWith(req *types.Request, res *types.Response, c *types.Context, handler types.Handler) error {
	if handler == nil {
		return types.ErrHandlerIsNil
	}

	handlerReached := false
	index := 0

	var next types.Next
	next = func() error {
		if index >= len(e.chain) {
			handlerReached = true
			return handler(req, res, c)
		}

		mw := e.chain[index]
		index++
		return mw.Handle(req, res, c, next)
	}

	err := e.protect(next)

	if err == nil {
		if !handlerReached {
			// Not a failure: an earlier middleware chose not to call next,
			// usually because it already responded.
			c.Env().Warn("handler not reached: middleware chain short-circuited")
			e.logger.Debug("handler not reached",
				zap.Int("middleware_entered", index),
				zap.Int("middleware_total", len(e.chain)))
		}
		return nil
	}

	if types.IsError(err, types.ErrResponseSent) {
		return nil
	}

	if e.cfg.Debug {
		e.logger.Warn("unhandled error in middleware chain",
			zap.Error(err), logger.StackField(err))
		return err
	}

	e.logger.Error("unhandled error in middleware chain", zap.Error(err))

	if send, ok := responder(c); ok {
		if sendErr := send("internal_error", "internal server error", 500, nil); !types.IsError(sendErr, types.ErrResponseSent) && sendErr != nil {
			e.logger.Error("error responder failed", zap.Error(sendErr))
		}
		return nil
	}

	// No responder capability installed: nothing can terminate the response,
	// so the error propagates to the entry-point caller.
	return err
}

// protect is the implicit boundary around the chain and the handler. Panics
// become stacked errors so the production path can still respond.
func (e *Engine) protect(next types.Next) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = errors.Errorf("panic in middleware chain: %v", rec)
		}
	}()

	return next()
}

func responder(c *types.Context) (types.SendError, bool) {
	value, ok := c.Lookup(types.SendErrorKey)
	if !ok {
		return nil, false
	}

	send, ok := value.(types.SendError)
	return send, ok
}
