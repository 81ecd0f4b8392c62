package limber

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kermit-frogs19/limber/internal/backoff"
)

// Client is an HTTP client for JSON APIs that layers rate limiting and
// classified retries around the standard net/http Client. Request methods
// never return an error: every failure path is converted into a Response
// with IsError() true. A single Client is safe for concurrent use; session
// start/stop transitions are serialized by an internal mutex.
type Client struct {
	baseURL   string
	headers   map[string]string
	timeout   time.Duration
	transport http.RoundTripper

	rateLimit int
	gate      *Gate

	maxAttempts        int
	retryWait          *time.Duration
	retryableKinds     map[ErrorKind]bool
	retryOnRateLimited bool
	retry              *RetryPolicy

	metrics  *MetricsCollector
	debug    *DebugConfig
	logger   Logger
	registry *Registry

	validationError error

	mu      sync.Mutex
	session *session
}

// New constructs a Client using the provided functional options. A best
// effort validation is performed; call IsValid / ValidationError for errors.
func New(options ...Option) *Client {
	wait := 10 * time.Second
	client := &Client{
		headers:     map[string]string{},
		timeout:     10 * time.Second,
		maxAttempts: 3,
		retryWait:   &wait,
		retryableKinds: map[ErrorKind]bool{
			KindTimeout:    true,
			KindConnection: true,
		},
		debug: DefaultDebugConfig(),
	}

	for _, option := range options {
		option(client)
	}

	client.gate = newGate(client.rateLimit)

	var strategy backoff.Strategy = backoff.Exponential{Unit: time.Second}
	if client.retryWait != nil {
		strategy = backoff.Fixed{Wait: *client.retryWait}
	}
	client.retry = &RetryPolicy{
		maxAttempts:        client.maxAttempts,
		retryable:          client.retryableKinds,
		retryOnRateLimited: client.retryOnRateLimited,
		strategy:           strategy,
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	if client.registry != nil {
		client.registry.add(client)
	}

	return client
}

// Get performs an HTTP GET.
func (c *Client) Get(ctx context.Context, url string, opts *RequestOptions) Response {
	return c.Request(ctx, http.MethodGet, url, opts)
}

// Post performs an HTTP POST.
func (c *Client) Post(ctx context.Context, url string, opts *RequestOptions) Response {
	return c.Request(ctx, http.MethodPost, url, opts)
}

// Put performs an HTTP PUT.
func (c *Client) Put(ctx context.Context, url string, opts *RequestOptions) Response {
	return c.Request(ctx, http.MethodPut, url, opts)
}

// Patch performs an HTTP PATCH.
func (c *Client) Patch(ctx context.Context, url string, opts *RequestOptions) Response {
	return c.Request(ctx, http.MethodPatch, url, opts)
}

// Delete performs an HTTP DELETE.
func (c *Client) Delete(ctx context.Context, url string, opts *RequestOptions) Response {
	return c.Request(ctx, http.MethodDelete, url, opts)
}

// Request executes method against url applying rate limiting and the retry
// policy, and returns the normalized outcome. Relative urls are resolved
// against the configured base URL. The session is started lazily if needed.
func (c *Client) Request(ctx context.Context, method, url string, opts *RequestOptions) Response {
	start := time.Now()
	if opts == nil {
		opts = &RequestOptions{}
	}

	effURL := c.resolveURL(url)
	endpoint := endpointFromURL(effURL)

	useGate := c.gate != nil
	if opts.RateLimit != nil {
		useGate = *opts.RateLimit
	}

	var requestID string
	if c.debugEnabled() && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}
	if c.debugEnabled() && c.debug.LogRequests && c.logger != nil {
		c.logger.Debug("Starting request", "requestID", requestID, "method", method, "url", effURL)
	}

	c.metrics.RecordRequestStart(method, endpoint)
	defer c.metrics.RecordRequestEnd(method, endpoint)

	sess := c.ensureSession()

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if c.debugEnabled() && c.debug.LogRetries && c.logger != nil {
				c.logger.Info("Retry attempt", "requestID", requestID, "attempt", attempt, "maxAttempts", c.maxAttempts, "endpoint", endpoint)
			}
			c.metrics.RecordRetry(method, endpoint, attempt)
		}

		result, reqErr := c.attemptOnce(ctx, sess, method, effURL, opts, useGate, endpoint, requestID)
		if reqErr == nil {
			c.metrics.RecordRequest(method, endpoint, result.StatusCode, time.Since(start))
			return result
		}

		reqErr.Method = method
		reqErr.URL = effURL
		reqErr.Attempt = attempt
		reqErr.MaxAttempts = c.maxAttempts
		reqErr.Timestamp = time.Now()
		reqErr.Duration = time.Since(start)
		c.metrics.RecordError(string(reqErr.Kind), method, endpoint)

		decision := c.retry.Decide(reqErr, attempt)
		if !decision.Retry {
			return c.finishFailed(reqErr, decision.Message, method, endpoint, start)
		}

		if c.debugEnabled() && c.debug.LogRetries && c.logger != nil {
			c.logger.Info("Scheduling retry", "requestID", requestID, "attempt", attempt+1, "backoff", decision.Delay, "endpoint", endpoint)
		}
		if err := sleepContext(ctx, decision.Delay); err != nil {
			return c.finishFailed(reqErr, "Retry wait interrupted: "+err.Error(), method, endpoint, start)
		}
	}

	// Decide always stops at the attempt budget, so this is unreachable; a
	// terminal failure is still returned rather than a zero Response.
	return c.finishFailed(&RequestError{Kind: KindUnclassified}, "retry loop exhausted without decision", method, endpoint, start)
}

// attemptOnce runs one network call: scoped gate acquisition, dispatch, body
// read, status check and JSON decode. The body is read before the status
// check so terminal failure messages can carry it.
func (c *Client) attemptOnce(ctx context.Context, sess *session, method, effURL string, opts *RequestOptions, useGate bool, endpoint, requestID string) (Response, *RequestError) {
	if useGate {
		waitStart := time.Now()
		if err := c.gate.Acquire(ctx); err != nil {
			return Response{}, Classify(err)
		}
		waited := time.Since(waitStart)
		c.metrics.RecordRateLimiterWait(endpoint, waited)
		c.metrics.RecordRateLimiterTokens("default", c.gate.Tokens())
		if c.debugEnabled() && c.debug.LogRateLimit && c.logger != nil && waited > 0 {
			c.logger.Debug("Rate gate acquired", "requestID", requestID, "waited", waited, "endpoint", endpoint)
		}
	}

	req, err := c.buildRequest(ctx, method, effURL, opts)
	if err != nil {
		return Response{}, Classify(err)
	}

	httpResp, err := sess.httpClient.Do(req)
	if err != nil {
		return Response{}, Classify(err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return Response{}, Classify(err)
	}
	text := string(raw)
	reason := statusReason(httpResp)

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		return Response{}, &RequestError{
			Kind:       KindStatus,
			Message:    "unexpected status",
			StatusCode: httpResp.StatusCode,
			Reason:     reason,
			Body:       text,
		}
	}

	// Non-object JSON (arrays, scalars) is a valid success with an empty
	// payload; callers read such bodies from Response.Body. Only malformed
	// JSON is a decode failure.
	payload := map[string]any{}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			if !json.Valid(raw) {
				return Response{}, &RequestError{Kind: KindDecode, Message: "invalid JSON body", Cause: err}
			}
			payload = map[string]any{}
		}
	}

	return NewResponse(httpResp.StatusCode, text, payload, reason, false), nil
}

func (c *Client) buildRequest(ctx context.Context, method, effURL string, opts *RequestOptions) (*http.Request, error) {
	var body io.Reader
	if opts.Body != nil {
		encoded, err := json.Marshal(opts.Body)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, effURL, body)
	if err != nil {
		return nil, err
	}

	if len(opts.Query) > 0 {
		query := req.URL.Query()
		for key, values := range opts.Query {
			for _, value := range values {
				query.Add(key, value)
			}
		}
		req.URL.RawQuery = query.Encode()
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}
	if opts.ContentType != "" {
		req.Header.Set("Content-Type", opts.ContentType)
	} else if opts.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// finishFailed assembles the terminal failed Response for a stop decision.
// Status failures carry the body text in the message and 429 terminations get
// the fixed "Too Many Requests" reason.
func (c *Client) finishFailed(reqErr *RequestError, message, method, endpoint string, start time.Time) Response {
	reason := reqErr.Reason
	if reqErr.Kind == KindStatus {
		if reqErr.StatusCode == http.StatusTooManyRequests {
			reason = "Too Many Requests"
		}
		if reqErr.Body != "" {
			message = message + ". text: " + reqErr.Body
		}
	}

	c.metrics.RecordRequest(method, endpoint, reqErr.StatusCode, time.Since(start))
	if c.debugEnabled() && c.logger != nil {
		c.logger.Warn("Request failed", "method", method, "url", reqErr.URL, "kind", string(reqErr.Kind), "message", message)
	}

	return newFailedResponse(reqErr.StatusCode, message, reason)
}

// resolveURL prepends the base URL unless url already starts with it.
func (c *Client) resolveURL(url string) string {
	if c.baseURL == "" || strings.HasPrefix(url, c.baseURL) {
		return url
	}
	return c.baseURL + url
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// statusReason extracts the status phrase, falling back to the standard text
// for the code.
func statusReason(resp *http.Response) string {
	phrase := resp.Status
	if idx := strings.IndexByte(phrase, ' '); idx != -1 {
		phrase = phrase[idx+1:]
	}
	if phrase == "" {
		phrase = http.StatusText(resp.StatusCode)
	}
	return phrase
}

// endpointFromURL strips the scheme and query so metric labels stay low
// cardinality.
func endpointFromURL(effURL string) string {
	endpoint := effURL
	if idx := strings.Index(endpoint, "://"); idx != -1 {
		endpoint = endpoint[idx+3:]
	}
	if idx := strings.IndexByte(endpoint, '?'); idx != -1 {
		endpoint = endpoint[:idx]
	}
	if endpoint == "" {
		return "unknown"
	}
	return endpoint
}
