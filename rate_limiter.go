package limber

import (
	"context"

	"golang.org/x/time/rate"
)

// Gate bounds request admission to a fixed number of starts per second,
// shared by all in-flight calls on a client. A nil Gate admits immediately.
// Safe for concurrent use.
type Gate struct {
	limiter   *rate.Limiter
	perSecond int
}

// newGate builds a gate admitting perSecond request starts per rolling
// one-second window. Non-positive values disable limiting.
func newGate(perSecond int) *Gate {
	if perSecond <= 0 {
		return nil
	}
	return &Gate{
		limiter:   rate.NewLimiter(rate.Limit(perSecond), perSecond),
		perSecond: perSecond,
	}
}

// Acquire blocks until a permit is available or ctx is done. It is scoped to
// a single attempt's network call: retries re-enter the gate after backoff.
func (g *Gate) Acquire(ctx context.Context) error {
	if g == nil || g.limiter == nil {
		return nil
	}
	return g.limiter.Wait(ctx)
}

// Tokens reports the currently available permits, for metrics.
func (g *Gate) Tokens() float64 {
	if g == nil || g.limiter == nil {
		return 0
	}
	return g.limiter.Tokens()
}

// Limit returns the configured admissions per second, 0 when disabled.
func (g *Gate) Limit() int {
	if g == nil {
		return 0
	}
	return g.perSecond
}
