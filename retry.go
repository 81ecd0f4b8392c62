package limber

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kermit-frogs19/limber/internal/backoff"
)

// RetryDecision is the outcome of consulting the retry policy after a failed
// attempt: either continue after Delay, or stop with a terminal Message.
type RetryDecision struct {
	Retry   bool
	Delay   time.Duration
	Message string
}

// RetryPolicy decides whether a classified failure is retried and how long to
// wait before the next attempt. It is stateless across requests; the attempt
// number is carried by the executor.
type RetryPolicy struct {
	maxAttempts        int
	retryable          map[ErrorKind]bool
	retryOnRateLimited bool
	strategy           backoff.Strategy
}

// Decide classifies err and returns the retry outcome for the given 1-indexed
// attempt. Unclassified errors stop immediately regardless of budget. A 429
// status is retried when either the generic status kind is retryable or the
// retry-on-rate-limited flag is set.
func (p *RetryPolicy) Decide(err error, attempt int) RetryDecision {
	reqErr := Classify(err)
	if reqErr == nil {
		return RetryDecision{}
	}

	if reqErr.Kind == KindUnclassified {
		return RetryDecision{
			Message: fmt.Sprintf("Unclassified error in %s request - %s", reqErr.Method, describe(reqErr)),
		}
	}

	main := fmt.Sprintf("%s %s in %s request", reqErr.Kind, describe(reqErr), reqErr.Method)

	retryable := p.retryable[reqErr.Kind]
	if reqErr.Kind == KindStatus && reqErr.StatusCode == http.StatusTooManyRequests && p.retryOnRateLimited {
		retryable = true
	}

	switch {
	case !retryable:
		return RetryDecision{Message: "Non-retryable error: " + main}
	case attempt >= p.maxAttempts:
		return RetryDecision{
			Message: fmt.Sprintf("Failed after attempting %d/%d times. %s", attempt, p.maxAttempts, main),
		}
	default:
		return RetryDecision{Retry: true, Delay: p.strategy.Delay(attempt)}
	}
}

// MaxAttempts returns the attempt budget the policy enforces.
func (p *RetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

func describe(e *RequestError) string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%d %s", e.StatusCode, e.Reason)
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Message
}
