package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saiset-co/sai-strate/types"
	"github.com/saiset-co/sai-strate/utils"
)

func okHandler(trace *[]string) types.Handler {
	return func(req *types.Request, res *types.Response, c *types.Context) error {
		if trace != nil {
			*trace = append(*trace, "handler")
		}
		return nil
	}
}

func TestEngineOnionOrder(t *testing.T) {
	var trace []string

	cfg := &types.Config{
		Middleware: []types.Middleware{
			marker("b", []any{"a"}, &trace),
			marker("a", nil, &trace),
		},
	}

	engine, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	req, res := newExchange("GET", "/onion", nil)
	require.NoError(t, engine.Run(req, res, okHandler(&trace)))

	assert.Equal(t, []string{"a-pre", "b-pre", "handler", "b-post", "a-post"}, trace)
}

func TestEngineEmptyChainRunsHandlerWithSeededContext(t *testing.T) {
	engine, err := NewEngine(&types.Config{}, nil)
	require.NoError(t, err)

	handlerRan := false
	handler := func(req *types.Request, res *types.Response, c *types.Context) error {
		handlerRan = true
		require.True(t, c.Has(types.StrateKey))
		env := c.Env()
		require.NotNil(t, env.Configuration)
		require.NotNil(t, env.Debug)
		require.NotNil(t, env.Warn)
		return nil
	}

	req, res := newExchange("GET", "/empty", nil)
	require.NoError(t, engine.Run(req, res, handler))
	assert.True(t, handlerRan)
}

func TestEngineSingleMiddleware(t *testing.T) {
	var trace []string

	cfg := &types.Config{
		Middleware: []types.Middleware{marker("only", nil, &trace)},
	}

	engine, err := NewEngine(cfg, nil)
	require.NoError(t, err)

	req, res := newExchange("GET", "/single", nil)
	require.NoError(t, engine.Run(req, res, okHandler(&trace)))
	assert.Equal(t, []string{"only-pre", "handler", "only-post"}, trace)
}

func TestEngineShortCircuitSkipsHandler(t *testing.T) {
	log := &recordLogger{}
	handlerRan := false

	shortCircuit := &fakeMiddleware{
		name: "responder",
		handle: func(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
			res.SetStatusCode(204)
			return nil // never calls next
		},
	}

	cfg := &types.Config{
		Debug:      true,
		Middleware: []types.Middleware{shortCircuit},
	}

	engine, err := NewEngine(cfg, log)
	require.NoError(t, err)

	req, res := newExchange("GET", "/short", nil)
	handler := func(req *types.Request, res *types.Response, c *types.Context) error {
		handlerRan = true
		return nil
	}

	require.NoError(t, engine.Run(req, res, handler))
	assert.False(t, handlerRan)
	assert.True(t, log.contains("handler not reached"))
}

func TestEngineSwallowsResponseSentSentinel(t *testing.T) {
	sender := &fakeMiddleware{
		name: "sender",
		handle: func(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
			res.SetStatusCode(200)
			return types.ErrResponseSent
		},
	}

	engine, err := NewEngine(&types.Config{Middleware: []types.Middleware{sender}}, nil)
	require.NoError(t, err)

	req, res := newExchange("GET", "/sent", nil)
	assert.NoError(t, engine.Run(req, res, okHandler(nil)))
}

func TestEngineDebugModeRethrowsUnhandledErrors(t *testing.T) {
	log := &recordLogger{}
	failing := &fakeMiddleware{
		name: "failing",
		handle: func(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
			return types.NewErrorf("boom")
		},
	}

	engine, err := NewEngine(&types.Config{Debug: true, Middleware: []types.Middleware{failing}}, log)
	require.NoError(t, err)

	req, res := newExchange("GET", "/fail", nil)
	err = engine.Run(req, res, okHandler(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.True(t, log.contains("unhandled error"))
}

func TestEngineProductionModeUsesErrorResponder(t *testing.T) {
	log := &recordLogger{}
	failing := &fakeMiddleware{
		name: "failing",
		deps: []any{"errorHandler"},
		handle: func(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
			return types.NewErrorf("boom")
		},
	}

	cfg := &types.Config{
		Middleware: []types.Middleware{
			NewErrorHandlerMiddleware(log),
			failing,
		},
	}

	engine, err := NewEngine(cfg, log)
	require.NoError(t, err)

	req, res := newExchange("GET", "/fallback", nil)
	require.NoError(t, engine.Run(req, res, okHandler(nil)))

	assert.Equal(t, 500, res.StatusCode())

	var payload map[string]map[string]interface{}
	require.NoError(t, utils.Unmarshal(res.Body(), &payload))
	assert.Equal(t, "internal_error", payload["error"]["code"])
}

func TestEngineProductionModeWithoutResponderPropagates(t *testing.T) {
	failing := &fakeMiddleware{
		name: "failing",
		handle: func(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
			return types.NewErrorf("boom")
		},
	}

	engine, err := NewEngine(&types.Config{Middleware: []types.Middleware{failing}}, &recordLogger{})
	require.NoError(t, err)

	req, res := newExchange("GET", "/no-responder", nil)
	err = engine.Run(req, res, okHandler(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestEnginePanicBoundary(t *testing.T) {
	engine, err := NewEngine(&types.Config{Debug: true}, &recordLogger{})
	require.NoError(t, err)

	handler := func(req *types.Request, res *types.Response, c *types.Context) error {
		panic("kaboom")
	}

	req, res := newExchange("GET", "/panic", nil)
	err = engine.Run(req, res, handler)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestEngineNilHandler(t *testing.T) {
	engine, err := NewEngine(&types.Config{}, nil)
	require.NoError(t, err)

	req, res := newExchange("GET", "/nil", nil)
	assert.ErrorIs(t, engine.Run(req, res, nil), types.ErrHandlerIsNil)
}

func TestNewEngineConfigurationErrors(t *testing.T) {
	_, err := NewEngine(&types.Config{
		Middleware: []types.Middleware{
			&fakeMiddleware{name: "audit", deps: []any{"auth"}},
		},
	}, nil)
	assert.ErrorIs(t, err, types.ErrDependencyMissing)

	_, err = NewEngine(&types.Config{
		Middleware: []types.Middleware{&deferredMiddleware{}},
	}, nil)
	assert.ErrorIs(t, err, types.ErrIdentityDeferred)
}
