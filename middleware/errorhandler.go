package middleware

import (
	"go.uber.org/zap"

	"github.com/saiset-co/sai-strate/types"
	"github.com/saiset-co/sai-strate/utils"
)

// ErrorHandlerMiddleware installs the error-responder capability on the
// context. Any downstream middleware or the handler can terminate the
// invocation with a JSON error response by calling it; the returned
// ErrResponseSent sentinel stops the rest of the chain.
type ErrorHandlerMiddleware struct {
	logger types.Logger
}

func NewErrorHandlerMiddleware(logger types.Logger) *ErrorHandlerMiddleware {
	return &ErrorHandlerMiddleware{logger: logger}
}

func (e *ErrorHandlerMiddleware) Name() string { return "errorHandler" }

func (e *ErrorHandlerMiddleware) Handle(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
	send := types.SendError(func(code, message string, statusCode int, extra map[string]interface{}) error {
		payload := map[string]interface{}{
			"code":    code,
			"message": message,
		}
		for key, value := range extra {
			payload[key] = value
		}

		body, err := utils.Marshal(map[string]interface{}{"error": payload})
		if err != nil {
			return types.WrapError(err, "failed to encode error response")
		}

		res.SetHeader("Content-Type", "application/json")
		res.SetStatusCode(statusCode)
		res.SetBody(body)

		if e.logger != nil {
			e.logger.Debug("error response sent",
				zap.String("code", code),
				zap.Int("status", statusCode))
		}

		return types.ErrResponseSent
	})

	c.Set(types.SendErrorKey, send)

	return next()
}
