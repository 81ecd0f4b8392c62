package limber

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
	"syscall"
	"testing"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestClassify(t *testing.T) {
	jsonErr := json.Unmarshal([]byte("{not json"), &map[string]any{})

	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{
			name: "deadline exceeded",
			err:  context.DeadlineExceeded,
			want: KindTimeout,
		},
		{
			name: "wrapped deadline exceeded",
			err:  fmt.Errorf("request failed: %w", context.DeadlineExceeded),
			want: KindTimeout,
		},
		{
			name: "net timeout",
			err:  &url.Error{Op: "Get", URL: "http://x", Err: timeoutError{}},
			want: KindTimeout,
		},
		{
			name: "connection refused",
			err:  &url.Error{Op: "Get", URL: "http://x", Err: &net.OpError{Op: "dial", Err: syscall.ECONNREFUSED}},
			want: KindConnection,
		},
		{
			name: "connection reset",
			err:  fmt.Errorf("read: %w", syscall.ECONNRESET),
			want: KindConnection,
		},
		{
			name: "unexpected eof",
			err:  io.ErrUnexpectedEOF,
			want: KindConnection,
		},
		{
			name: "json syntax error",
			err:  jsonErr,
			want: KindDecode,
		},
		{
			name: "generic url error",
			err:  &url.Error{Op: "Get", URL: "http://x", Err: errors.New("protocol mismatch")},
			want: KindTransport,
		},
		{
			name: "plain error",
			err:  errors.New("something unexpected"),
			want: KindUnclassified,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.err)
			if got == nil {
				t.Fatal("Classify returned nil for non-nil error")
			}
			if got.Kind != tt.want {
				t.Errorf("Classify(%v).Kind = %s, want %s", tt.err, got.Kind, tt.want)
			}
		})
	}
}

func TestClassifyNil(t *testing.T) {
	if got := Classify(nil); got != nil {
		t.Errorf("Classify(nil) = %v, want nil", got)
	}
}

func TestClassifyPassThrough(t *testing.T) {
	original := &RequestError{Kind: KindStatus, StatusCode: 503, Reason: "Service Unavailable"}

	if got := Classify(original); got != original {
		t.Errorf("Classify must pass through already classified errors, got %v", got)
	}
}

func TestRequestErrorError(t *testing.T) {
	err := &RequestError{
		Kind:        KindStatus,
		Message:     "unexpected status",
		StatusCode:  502,
		Reason:      "Bad Gateway",
		Attempt:     2,
		MaxAttempts: 3,
	}

	msg := err.Error()
	for _, want := range []string{"Status", "unexpected status", "502", "Bad Gateway", "attempt 2/3"} {
		if !strings.Contains(msg, want) {
			t.Errorf("Error() = %q, missing %q", msg, want)
		}
	}
}

func TestRequestErrorUnwrapAndIs(t *testing.T) {
	cause := errors.New("underlying")
	err := &RequestError{Kind: KindConnection, Message: "connection failed", Cause: cause}

	if !errors.Is(err, cause) {
		t.Error("errors.Is should reach the cause")
	}
	if !errors.Is(err, &RequestError{Kind: KindConnection}) {
		t.Error("errors.Is should match on kind")
	}
	if errors.Is(err, &RequestError{Kind: KindTimeout}) {
		t.Error("errors.Is must not match a different kind")
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout", &RequestError{Kind: KindTimeout}, true},
		{"connection", &RequestError{Kind: KindConnection}, true},
		{"server status", &RequestError{Kind: KindStatus, StatusCode: 503}, true},
		{"rate limited", &RequestError{Kind: KindStatus, StatusCode: 429}, true},
		{"client status", &RequestError{Kind: KindStatus, StatusCode: 404}, false},
		{"decode", &RequestError{Kind: KindDecode}, false},
		{"unclassified", &RequestError{Kind: KindUnclassified}, false},
		{"plain error", errors.New("nope"), false},
		{"nil", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestRequestErrorNil(t *testing.T) {
	var err *RequestError

	if err.Error() != "<nil>" {
		t.Errorf("nil Error() = %q", err.Error())
	}
	if err.Unwrap() != nil {
		t.Error("nil Unwrap() must be nil")
	}
	if err.Is(&RequestError{Kind: KindTimeout}) {
		t.Error("nil Is() must be false")
	}
}
