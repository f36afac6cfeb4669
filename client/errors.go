package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Domain-level errors surfaced by the transport. Callers match them with
// errors.Is; the concrete *APIError carries the status and body detail.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrServer       = errors.New("server error")
)

// APIError is returned for any non-2xx response. It unwraps to one of the
// sentinel errors above when the status maps to a category we expect callers
// to handle explicitly; everything else is matched by status code only.
type APIError struct {
	StatusCode int
	Body       string
	sentinel   error
}

func (e *APIError) Error() string {
	if e.sentinel != nil {
		return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.sentinel)
	}
	return fmt.Sprintf("api error: status %d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.sentinel }

// statusError translates an HTTP status to a domain error. Mirrors the
// "map only what higher layers handle, pass the rest through" policy.
func statusError(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}

	var sentinel error
	switch {
	case status == http.StatusNotFound:
		sentinel = ErrNotFound
	case status == http.StatusUnauthorized:
		sentinel = ErrUnauthorized
	case status == http.StatusForbidden:
		sentinel = ErrForbidden
	case status == http.StatusConflict:
		sentinel = ErrConflict
	case status >= 500:
		sentinel = ErrServer
	}

	return &APIError{StatusCode: status, Body: string(body), sentinel: sentinel}
}
