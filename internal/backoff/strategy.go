package backoff

import "time"

// Strategy defines the interface for inter-retry delay calculation.
// Attempt numbers are 1-indexed: Delay(n) is the wait after the n-th
// failed attempt, before attempt n+1 starts.
type Strategy interface {
	Delay(attempt int) time.Duration
}

// Fixed waits the same duration between every retry.
type Fixed struct {
	Wait time.Duration
}

// Delay implements the Strategy interface.
func (f Fixed) Delay(int) time.Duration {
	return f.Wait
}

// Exponential waits Unit * 2^attempt: 2 units after attempt 1, 4 after
// attempt 2, and so on. There is no jitter and no cap.
type Exponential struct {
	Unit time.Duration
}

// maxShift bounds the exponent so the multiplication cannot overflow int64.
const maxShift = 40

// Delay implements the Strategy interface.
func (e Exponential) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}
	unit := e.Unit
	if unit <= 0 {
		unit = time.Second
	}
	return unit * time.Duration(int64(1)<<attempt)
}
