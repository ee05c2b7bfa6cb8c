package types

import (
	"errors"
	"fmt"
)

var (
	ErrConfigIsNil          = errors.New("config is nil")
	ErrConfigNotFound       = errors.New("config not found")
	ErrConfigParseFailed    = errors.New("config parse failed")
	ErrConfigValidateFailed = errors.New("config validate failed")
)

var (
	ErrMiddlewareIsNil      = errors.New("middleware is nil")
	ErrReferenceInvalid     = errors.New("middleware reference invalid")
	ErrIdentityDeferred     = errors.New("middleware id must resolve synchronously")
	ErrDependencyMissing    = errors.New("missing middleware dependency")
	ErrDependencySkipped    = errors.New("dependency on skipped middleware")
	ErrDependencyCycle      = errors.New("middleware dependency cycle")
	ErrHandlerIsNil         = errors.New("handler is nil")
)

// ErrResponseSent signals that a terminal response was already produced and
// the rest of the chain must not run. It is control flow, not a failure: the
// engine always swallows it.
var ErrResponseSent = errors.New("response already sent")

var (
	ErrCacheTypeUnknown      = errors.New("cache type unknown")
	ErrCacheConnectionFailed = errors.New("cache connection failed")
	ErrCacheKeyEmpty         = errors.New("cache key empty")
)

var (
	ErrLoggerTypeUnknown = errors.New("logger type unknown")
)

func Errorf(baseErr error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", baseErr, fmt.Sprintf(format, args...))
}

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

func NewErrorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}

func IsError(err, target error) bool {
	return errors.Is(err, target)
}
