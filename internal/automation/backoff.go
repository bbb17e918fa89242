package automation

import (
	"math"
	"time"
)

// ExponentialBackoff doubles the delay on every attempt:
// Delay(n) = Base * 2^n with n starting at 0.
type ExponentialBackoff struct {
	Base time.Duration
}

// Delay returns the wait before the attempt following failed attempt
// attemptIndex (0-indexed).
func (b ExponentialBackoff) Delay(attemptIndex int) time.Duration {
	if attemptIndex < 0 {
		attemptIndex = 0
	}
	return time.Duration(float64(b.Base) * math.Pow(2, float64(attemptIndex)))
}
