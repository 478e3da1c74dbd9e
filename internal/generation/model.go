// internal/generation/model.go
package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ModelClient is the narrow capability the generator needs from a
// language model provider.
type ModelClient interface {
	Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error)
	Provider() string
}

type CompletionOptions struct {
	Temperature float64
	JSONMode    bool
	MaxTokens   int
}

// ErrorKind tells the generator whether a failed model call may be retried.
type ErrorKind int

const (
	// KindTransient failures (network, timeouts, throttling, 5xx) consume
	// an attempt and may be retried.
	KindTransient ErrorKind = iota
	// KindRejected failures are definitive: the provider refused the request.
	KindRejected
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRejected:
		return "rejected"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// ModelError is returned by ModelClient implementations. StatusCode is 0
// when no HTTP or RPC status was received.
type ModelError struct {
	Provider   string
	Kind       ErrorKind
	StatusCode int
	Err        error
}

func (e *ModelError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s model call %s (status %d): %v", e.Provider, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s model call %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

// KindForStatus classifies an HTTP status from a provider.
func KindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusRequestTimeout,
		status == http.StatusTooManyRequests,
		status >= 500:
		return KindTransient
	case status >= 400:
		return KindRejected
	default:
		return KindTransient
	}
}

// IsRejected reports whether err carries a definitive provider rejection.
func IsRejected(err error) bool {
	var me *ModelError
	return errors.As(err, &me) && me.Kind == KindRejected
}
