package hrbox

import (
	"errors"
	"fmt"
)

var (
	ErrMissingToken      = errors.New("missing session token")
	ErrStalledPagination = errors.New("stalled pagination")
	ErrTotalChanged      = errors.New("total count changed between pages")
	ErrMalformedPage     = errors.New("malformed catalog page")
)

// HTTPError reports a request that failed in transport (Err set)
// or came back with a non-successful status.
type HTTPError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Err        error
}

func (e *HTTPError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hrbox: %s %s: %v", e.Method, e.URL, e.Err)
	}
	return fmt.Sprintf("hrbox: %s %s: unexpected status %s", e.Method, e.URL, e.Status)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// ProtocolError means the service answered, but not in the shape this client expects.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("hrbox: %s: %v", e.Op, e.Err)
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

type AuthenticationError struct {
	Username   string
	StatusCode int
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("hrbox: login rejected for %q (status %d)", e.Username, e.StatusCode)
}

// IOError wraps a failure to persist a downloaded document.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("hrbox: write %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}
