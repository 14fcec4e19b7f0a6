package model

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the engine. The query router switches on these:
// transport and upstream errors trigger the event fallback, decode errors
// skip the offending record, and only invalid input (plus context
// cancellation) surfaces to the caller.
var (
	// ErrTransport means the indexed source was unreachable.
	ErrTransport = errors.New("indexed source unreachable")

	// ErrUpstream means the indexed source replied with a structured error.
	ErrUpstream = errors.New("indexed source returned an error")

	// ErrMalformedResponse means the indexed source replied with a body
	// the client could not parse.
	ErrMalformedResponse = errors.New("malformed response from indexed source")

	// ErrDecode means a single record or log could not be decoded.
	ErrDecode = errors.New("record decode failed")

	// ErrInvalidInput is returned synchronously for malformed addresses,
	// names, non-positive limits, and unknown enum values.
	ErrInvalidInput = errors.New("invalid input")
)

// InvalidInputf wraps ErrInvalidInput with a formatted reason.
func InvalidInputf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsRetryable reports whether err should quietly reroute a query from the
// indexed path to the event fallback.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransport) ||
		errors.Is(err, ErrUpstream) ||
		errors.Is(err, ErrMalformedResponse)
}
