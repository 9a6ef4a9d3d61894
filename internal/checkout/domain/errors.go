package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrPaymentNotCompleted   = errors.New("payment not completed")
	ErrPendingSignupNotFound = errors.New("missing signup information")
	ErrMissingSession        = errors.New("missing session id")
	ErrUnknownPlan           = errors.New("unknown plan")
	ErrInvalidInterval       = errors.New("interval must be month or year")
	ErrSessionMismatch       = errors.New("checkout session belongs to another user")
)

// ValidationError maps form field names to problems.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid signup form: " + strings.Join(parts, "; ")
}
