package registry

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrStatus marks a response outside the 2xx range.
	ErrStatus = errors.New("unexpected status")
	// ErrDecode marks a response body that could not be understood.
	ErrDecode = errors.New("malformed response")
)

// RequestError is returned by every HTTPClient operation that fails.
type RequestError struct {
	Op         string // create, list, update, remove
	Method     string
	URL        string
	StatusCode int    // 0 when no response was received
	Message    string // server-provided error text, if any
	Err        error
}

func (e *RequestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "registry %s: %s %s", e.Op, e.Method, e.URL)
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Message != "" {
		fmt.Fprintf(&b, ": %s", e.Message)
	} else if e.Err != nil && !errors.Is(e.Err, ErrStatus) {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *RequestError) Unwrap() error { return e.Err }

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from the registry.
func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

// UserMessage is the short text shown in the UI for a failed operation.
func UserMessage(err error, fallback string) string {
	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Message != "" {
		return fallback + ": " + reqErr.Message
	}
	return fallback
}
