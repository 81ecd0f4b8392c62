package limber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"syscall"
	"time"
)

// ErrorKind is the closed set of failure classifications the retry policy
// operates on. Classification happens once at the transport boundary; the
// policy switches on the kind, never on concrete error types.
type ErrorKind string

const (
	// KindTimeout covers deadline expiry while connecting or awaiting a response.
	KindTimeout ErrorKind = "Timeout"
	// KindConnection covers refused, reset or otherwise failed connections.
	KindConnection ErrorKind = "Connection"
	// KindStatus covers non-2xx responses carrying a status code.
	KindStatus ErrorKind = "Status"
	// KindDecode covers bodies that are not valid JSON.
	KindDecode ErrorKind = "Decode"
	// KindTransport covers remaining transport-level failures.
	KindTransport ErrorKind = "Transport"
	// KindUnclassified marks failures outside the designed retry surface.
	// These are terminal on first occurrence and never retried.
	KindUnclassified ErrorKind = "Unclassified"
)

// RequestError is the error produced for every failed attempt. It carries the
// classified kind plus request context for diagnostics.
type RequestError struct {
	Kind       ErrorKind
	Message    string
	StatusCode int
	Reason     string
	// Body holds the response body text for status errors, so terminal
	// failure messages can carry it.
	Body        string
	Method      string
	URL         string
	Attempt     int
	MaxAttempts int
	Timestamp   time.Time
	Duration    time.Duration
	Cause       error
}

// Error implements error interface.
func (e *RequestError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s (status %d %s)", msg, e.StatusCode, e.Reason)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s (%v)", msg, e.Cause)
	}
	if e.Attempt > 0 {
		msg = fmt.Sprintf("%s (attempt %d/%d)", msg, e.Attempt, e.MaxAttempts)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *RequestError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// Is compares error kinds for errors.Is.
func (e *RequestError) Is(target error) bool {
	if e == nil {
		return false
	}
	if targetErr, ok := target.(*RequestError); ok {
		return e.Kind == targetErr.Kind
	}
	return false
}

// IsTransient reports whether an error represents a failure that might succeed
// on retry. Returns true for timeouts, connection failures, 5xx status errors
// and 429 rate limiting; false for everything else.
func IsTransient(err error) bool {
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		return false
	}
	switch reqErr.Kind {
	case KindTimeout, KindConnection:
		return true
	case KindStatus:
		return reqErr.StatusCode >= 500 || reqErr.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// Classify maps a raw failure to a *RequestError with a fixed kind. Errors
// that are already classified pass through unchanged. Anything that does not
// match a known transport or decode family comes back as KindUnclassified.
func Classify(err error) *RequestError {
	if err == nil {
		return nil
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &RequestError{Kind: KindTimeout, Message: "deadline exceeded", Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &RequestError{Kind: KindTimeout, Message: "request timed out", Cause: err}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return &RequestError{Kind: KindConnection, Message: "connection failed", Cause: err}
	}
	if errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return &RequestError{Kind: KindConnection, Message: "connection failed", Cause: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return &RequestError{Kind: KindDecode, Message: "invalid JSON body", Cause: err}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return &RequestError{Kind: KindTransport, Message: "transport failure", Cause: err}
	}

	return &RequestError{Kind: KindUnclassified, Message: err.Error(), Cause: err}
}
