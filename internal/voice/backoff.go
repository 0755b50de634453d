package voice

import "time"

// RetryPolicy describes the reconnect behavior for the session
// WebSocket: capped linear backoff, delay growing with each attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultRetryPolicy matches the browser client's behavior: up to five
// attempts, one second base delay, delay scaling linearly.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		Multiplier:  1,
	}
}

// Delay returns the wait before the given attempt (1-based)
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	scale := 1 + p.Multiplier*float64(attempt-1)
	return time.Duration(float64(p.BaseDelay) * scale)
}

// Exhausted reports whether all attempts have been used
func (p RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= p.MaxAttempts
}
