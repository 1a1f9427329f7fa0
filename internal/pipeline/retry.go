package pipeline

import "time"

// RetryPolicy drives the submission retry loop: up to MaxAttempts attempts
// with a linearly increasing delay between them. The policy is pure so tests
// exercise it without real time.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 2 * time.Second}
}

// ShouldRetry decides whether attempt (1-based) may be followed by another
// one for the given failure. Only transient failures are retried.
func (p RetryPolicy) ShouldRetry(attempt int, err error) bool {
	if err == nil {
		return false
	}
	if attempt >= p.MaxAttempts {
		return false
	}
	return IsTransient(err)
}

// Delay returns the pause before the attempt following the given one:
// BaseDelay after the first failure, twice that after the second, and so on.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return time.Duration(attempt) * p.BaseDelay
}
