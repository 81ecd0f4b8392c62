package limber

import "net/url"

// Option represents a configuration option.
type Option func(*Client)

// RequestOptions carries the typed per-call inputs handed to the transport.
// The zero value (or nil) is a plain request with no body, extra headers or
// query parameters.
type RequestOptions struct {
	// Headers are merged over the client's default headers.
	Headers map[string]string
	// Query parameters appended to the effective URL.
	Query url.Values
	// Body is JSON-encoded when non-nil.
	Body any
	// ContentType overrides the Content-Type header; defaults to
	// application/json when Body is set.
	ContentType string
	// RateLimit force-enables or force-disables the rate gate for this call,
	// overriding the client default. Nil keeps the default.
	RateLimit *bool
}

// Bool returns a pointer to v, for the RequestOptions.RateLimit override.
func Bool(v bool) *bool {
	return &v
}
