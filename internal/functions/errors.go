package functions

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var ErrNotConfigured = errors.New("functions endpoint is not configured")

// CallError is a failure reported by the remote function itself.
type CallError struct {
	Function   string
	HTTPStatus int
	Status     string
	Message    string
	Details    []byte
}

func (e *CallError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s failed: %s", e.Function, e.Status)
	}
	return fmt.Sprintf("%s failed: %s", e.Function, e.Message)
}

// IsCallError reports whether err carries a remote function failure.
func IsCallError(err error) (*CallError, bool) {
	var ce *CallError
	if errors.As(err, &ce) {
		return ce, true
	}
	return nil, false
}

type callerTokenKey struct{}

// WithCallerToken attaches the signed-in user's ID token to ctx.
func WithCallerToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, callerTokenKey{}, token)
}

// CallerToken returns the token set by WithCallerToken.
func CallerToken(ctx context.Context) string {
	if t, ok := ctx.Value(callerTokenKey{}).(string); ok {
		return t
	}
	return ""
}

func statusFromHTTP(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "INVALID_ARGUMENT"
	case http.StatusUnauthorized:
		return "UNAUTHENTICATED"
	case http.StatusForbidden:
		return "PERMISSION_DENIED"
	case http.StatusNotFound:
		return "NOT_FOUND"
	case http.StatusConflict:
		return "ALREADY_EXISTS"
	case http.StatusTooManyRequests:
		return "RESOURCE_EXHAUSTED"
	case http.StatusServiceUnavailable:
		return "UNAVAILABLE"
	case http.StatusGatewayTimeout:
		return "DEADLINE_EXCEEDED"
	}
	if code >= 500 {
		return "INTERNAL"
	}
	return "UNKNOWN"
}
