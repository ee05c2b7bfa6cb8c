package middleware

import (
	"time"

	"go.uber.org/zap"

	"github.com/saiset-co/sai-strate/types"
)

// LoggingMiddleware logs the invocation on the way in and its outcome on the
// way out.
type LoggingMiddleware struct {
	logger types.Logger
}

func NewLoggingMiddleware(logger types.Logger) *LoggingMiddleware {
	return &LoggingMiddleware{logger: logger}
}

func (l *LoggingMiddleware) Name() string { return "logging" }

func (l *LoggingMiddleware) Dependencies() []any {
	return []any{"requestId"}
}

func (l *LoggingMiddleware) Handle(req *types.Request, res *types.Response, c *types.Context, next types.Next) error {
	start := time.Now()
	requestID := types.Value[string](c, RequestIDKey)

	l.logger.Info("request started",
		zap.String("method", req.Method()),
		zap.String("path", req.Path()),
		zap.String("request_id", requestID),
		zap.String("remote_addr", req.RemoteAddr()))

	err := next()

	fields := []zap.Field{
		zap.String("method", req.Method()),
		zap.String("path", req.Path()),
		zap.String("request_id", requestID),
		zap.Int("status", res.StatusCode()),
		zap.Duration("duration", time.Since(start)),
	}

	switch {
	case err != nil && !types.IsError(err, types.ErrResponseSent):
		l.logger.Error("request failed", append(fields, zap.Error(err))...)
	case res.StatusCode() >= 500:
		l.logger.Error("request completed", fields...)
	case res.StatusCode() >= 400:
		l.logger.Warn("request completed", fields...)
	default:
		l.logger.Info("request completed", fields...)
	}

	return err
}
