package limber

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// WithBaseURL sets the prefix prepended to relative request URLs.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHeaders replaces the default headers sent with every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		c.headers = map[string]string{}
		for key, value := range headers {
			c.headers[key] = value
		}
	}
}

// WithHeader sets a single default header.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithRateLimit bounds request starts to perSecond per rolling second,
// shared across all concurrent calls on the client.
func WithRateLimit(perSecond int) Option {
	return func(c *Client) {
		c.rateLimit = perSecond
	}
}

// WithTimeout sets the per-request deadline enforced by the transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithMaxAttempts sets the total attempt budget per request, first try
// included.
func WithMaxAttempts(n int) Option {
	return func(c *Client) {
		c.maxAttempts = n
	}
}

// WithRetryWait sets a fixed inter-retry delay, replacing the default 10s.
func WithRetryWait(d time.Duration) Option {
	return func(c *Client) {
		c.retryWait = &d
	}
}

// WithExponentialBackoff clears the fixed delay: the wait before attempt n+1
// becomes 2^n seconds, unbounded, with no jitter.
func WithExponentialBackoff() Option {
	return func(c *Client) {
		c.retryWait = nil
	}
}

// WithRetryableKinds replaces the set of failure kinds eligible for retry.
// The default is {KindTimeout, KindConnection}. KindUnclassified is never
// retried regardless of this set.
func WithRetryableKinds(kinds ...ErrorKind) Option {
	return func(c *Client) {
		c.retryableKinds = map[ErrorKind]bool{}
		for _, kind := range kinds {
			c.retryableKinds[kind] = true
		}
	}
}

// WithRetryOnRateLimited retries 429 responses even when KindStatus is not
// in the retryable set.
func WithRetryOnRateLimited() Option {
	return func(c *Client) {
		c.retryOnRateLimited = true
	}
}

// WithTransport sets the http.RoundTripper used by sessions.
func WithTransport(transport http.RoundTripper) Option {
	return func(c *Client) {
		c.transport = transport
	}
}

// WithMetrics enables Prometheus metrics on the default registerer.
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector.
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithLogger sets a custom logger for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSimpleLogger enables debug logging with a plain console logger.
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithZapLogger enables debug logging through a zap logger.
func WithZapLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewZapLogger(logger)
	}
}

// WithDebug enables debug logging with the default configuration.
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets a custom debug configuration.
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs.
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// WithRegistry registers the client on a registry so it is stopped by the
// registry's CloseAll.
func WithRegistry(registry *Registry) Option {
	return func(c *Client) {
		c.registry = registry
	}
}

// ValidateConfiguration validates the client configuration and returns an
// error listing every violation.
func (c *Client) ValidateConfiguration() error {
	var errs []string

	errs = append(errs, c.validateRetryConfig()...)
	errs = append(errs, c.validateRateLimitConfig()...)
	errs = append(errs, c.validateSessionConfig()...)
	errs = append(errs, c.validateDebugConfig()...)
	errs = append(errs, c.validateExtremeValues()...)

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}

	return nil
}

func (c *Client) validateRetryConfig() []string {
	var errs []string

	if c.maxAttempts < 1 {
		errs = append(errs, "maxAttempts must be at least 1")
	}
	if c.retryWait != nil && *c.retryWait < 0 {
		errs = append(errs, "retryWait must be non-negative")
	}
	for kind := range c.retryableKinds {
		if kind == KindUnclassified {
			errs = append(errs, "KindUnclassified cannot be retryable")
		}
	}

	return errs
}

func (c *Client) validateRateLimitConfig() []string {
	var errs []string

	if c.rateLimit < 0 {
		errs = append(errs, "rateLimit must be non-negative")
	}

	return errs
}

func (c *Client) validateSessionConfig() []string {
	var errs []string

	if c.timeout <= 0 {
		errs = append(errs, "timeout must be positive")
	}

	return errs
}

func (c *Client) validateDebugConfig() []string {
	var errs []string

	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			errs = append(errs, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			errs = append(errs, "logger must be set when debug is enabled")
		}
	}

	return errs
}

func (c *Client) validateExtremeValues() []string {
	var errs []string

	if c.maxAttempts > 100 {
		errs = append(errs, "maxAttempts > 100 may cause excessive resource usage")
	}
	if c.timeout > 10*time.Minute {
		errs = append(errs, "timeout > 10m may cause requests to hang for too long")
	}
	if c.retryWait != nil && *c.retryWait > time.Hour {
		errs = append(errs, "retryWait > 1h may cause extremely long delays")
	}
	if c.rateLimit > 1_000_000 {
		errs = append(errs, "rateLimit > 1M may cause excessive CPU usage")
	}

	return errs
}
