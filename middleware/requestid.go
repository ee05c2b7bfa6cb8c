package middleware

import (
	"github.com/google/uuid"

	"github.com/saiset-co/sai-strate/types"
)

// RequestIDKey is the context key holding the invocation's request id.
const RequestIDKey = "requestId"

const requestIDHeader = "X-Request-ID"

// RequestIDMiddleware propagates an inbound request id or generates one, and
// exposes it on the context and the response.
type RequestIDMiddleware struct{}

func NewRequestIDMiddleware() *RequestIDMiddleware {
	return &RequestIDMiddleware{}
}

func (r *RequestIDMiddleware) Name() string { return "requestId" }

func (r *RequestIDMiddleware) Handle(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
	id := req.Peek(requestIDHeader)
	if id == "" {
		id = uuid.NewString()
	}

	c.Set(RequestIDKey, id)
	res.SetHeader(requestIDHeader, id)

	return next()
}
