package middleware

import (
	"strings"
	"sync"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/saiset-co/sai-strate/types"
)

// recordLogger captures log messages for assertions.
type recordLogger struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordLogger) log(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

func (r *recordLogger) Error(msg string, fields ...zap.Field) { r.log(msg) }
func (r *recordLogger) Warn(msg string, fields ...zap.Field)  { r.log(msg) }
func (r *recordLogger) Info(msg string, fields ...zap.Field)  { r.log(msg) }
func (r *recordLogger) Debug(msg string, fields ...zap.Field) { r.log(msg) }
func (r *recordLogger) Log(lvl zapcore.Level, msg string, fields ...zap.Field) {
	r.log(msg)
}

func (r *recordLogger) contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, msg := range r.messages {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

// newExchange builds an in-memory request/response pair.
func newExchange(method, uri string, body []byte) (*types.Request, *types.Response) {
	ctx := &fasthttp.RequestCtx{}
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != nil {
		ctx.Request.SetBody(body)
	}
	return types.NewRequest(ctx), types.NewResponse(ctx)
}

// fakeMiddleware is a configurable test middleware. Empty namespace and id
// mean the capabilities resolve as absent.
type fakeMiddleware struct {
	name      string
	namespace string
	id        string
	deps      []any
	handle    func(req *types.Request, res *types.Response, c *types.Context, next types.Next) error
}

func (f *fakeMiddleware) Name() string { return f.name }

func (f *fakeMiddleware) Namespace() string { return f.namespace }

func (f *fakeMiddleware) ID() string { return f.id }

func (f *fakeMiddleware) Dependencies() []any { return f.deps }

func (f *fakeMiddleware) Handle(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
	if f.handle != nil {
		return f.handle(req, res, c, next)
	}
	return next()
}

// marker returns a middleware that records pre/post markers around next.
func marker(name string, deps []any, trace *[]string) *fakeMiddleware {
	return &fakeMiddleware{
		name: name,
		deps: deps,
		handle: func(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
			*trace = append(*trace, name+"-pre")
			err := next()
			*trace = append(*trace, name+"-post")
			return err
		},
	}
}

// deferredMiddleware exposes the deferred identity shape that must fail fast.
type deferredMiddleware struct{}

func (d *deferredMiddleware) Name() string { return "deferred" }

func (d *deferredMiddleware) ID() <-chan string {
	ch := make(chan string, 1)
	ch <- "late"
	return ch
}

func (d *deferredMiddleware) Handle(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
	return next()
}
