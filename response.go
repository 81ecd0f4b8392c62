package limber

import "fmt"

// errorKeys are the payload keys probed for an application-level error,
// checked in this order; the first key present wins.
var errorKeys = [...]string{"error", "errors", "error_message"}

// Response is the normalized outcome of a request/retry sequence. It is
// immutable once constructed: all derived error state is computed in
// NewResponse and never changes afterwards. The Payload map must be treated
// as read-only by callers.
type Response struct {
	// StatusCode is the HTTP status, 0 if no response was ever received.
	StatusCode int
	// Body is the raw response body text; for failed requests it carries
	// the failure message.
	Body string
	// Payload is the decoded JSON object, empty if absent or undecodable.
	Payload map[string]any
	// Reason is the status phrase, or a synthetic label such as
	// "Too Many Requests".
	Reason string
	// Err is the error message, derived from the payload or the executor.
	Err string

	forced bool
}

// NewResponse builds a Response and computes its error state. forcedError
// marks failures the executor determined before normalization ran. The same
// inputs always yield the same derived state.
func NewResponse(statusCode int, body string, payload map[string]any, reason string, forcedError bool) Response {
	r := Response{
		StatusCode: statusCode,
		Body:       body,
		Payload:    payload,
		Reason:     reason,
		forced:     forcedError,
	}
	if r.Payload == nil {
		r.Payload = map[string]any{}
	}

	matched := false
	for _, key := range errorKeys {
		value, ok := r.Payload[key]
		if !ok {
			continue
		}
		matched = true
		if truthy(value) {
			r.Err = stringify(value)
			r.forced = true
		}
		break
	}
	if !matched && forcedError {
		r.Err = body
	}

	return r
}

// newFailedResponse builds a terminal failure Response carrying the retry
// policy's stop message.
func newFailedResponse(statusCode int, message, reason string) Response {
	return NewResponse(statusCode, message, nil, reason, true)
}

// IsError reports whether the request resulted in an error, from either a
// transport-level failure or an error field inside the payload.
func (r Response) IsError() bool {
	return r.forced || r.Err != ""
}

// IsEmpty reports whether the response carries no decoded payload. Emptiness
// is independent of error state: a 204 success is empty but not an error.
func (r Response) IsEmpty() bool {
	return len(r.Payload) == 0
}

// truthy mirrors loose emptiness: nil, "", 0, false and empty collections do
// not count as an error value.
func truthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	case []any:
		return len(v) > 0
	case map[string]any:
		return len(v) > 0
	default:
		return true
	}
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
