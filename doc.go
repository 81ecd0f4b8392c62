// Package limber provides a rate-limited, retrying HTTP client for JSON APIs.
// Request methods return a normalized Response value instead of an error:
//
//   - Rate limiting shared across concurrent calls (token bucket, per second)
//   - Retries driven by a closed error-kind classification with per-kind opt-in
//   - Fixed or exponential (2^attempt) inter-retry delays
//   - Lazy session start, idempotent stop, scoped session bracketing
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Small surface area: functional options configure everything
//   - Callers never handle transport errors: inspect Response.IsError instead
//   - Safe concurrent use of a single *Client instance
//   - Extensibility via pluggable logger, metrics registry and transport
//
// Typical usage:
//
//	client := limber.New(
//	    limber.WithBaseURL("https://api.example.com"),
//	    limber.WithRateLimit(10),
//	    limber.WithMaxAttempts(5),
//	    limber.WithRetryableKinds(limber.KindTimeout, limber.KindConnection, limber.KindStatus),
//	)
//	defer client.Stop()
//
//	resp := client.Get(ctx, "/items", nil)
//	if resp.IsError() {
//	    log.Println(resp.Err)
//	}
//
// Only timeout and connection failures are retried by default; opt in to more
// kinds with WithRetryableKinds. The library avoids opinionated logging: provide
// a Logger (e.g. via WithSimpleLogger or WithZapLogger) + enable debug flags
// selectively (WithDebug / WithDebugConfig) for insight without noise.
package limber
