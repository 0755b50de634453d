package voice

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicyLinearDelays(t *testing.T) {
	p := DefaultRetryPolicy()

	assert.Equal(t, 1*time.Second, p.Delay(1))
	assert.Equal(t, 2*time.Second, p.Delay(2))
	assert.Equal(t, 3*time.Second, p.Delay(3))
	assert.Equal(t, 5*time.Second, p.Delay(5))
}

func TestRetryPolicyClampsAttempt(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.Equal(t, p.Delay(1), p.Delay(0))
	assert.Equal(t, p.Delay(1), p.Delay(-3))
}

func TestRetryPolicyExhausted(t *testing.T) {
	p := DefaultRetryPolicy()
	assert.False(t, p.Exhausted(1))
	assert.False(t, p.Exhausted(4))
	assert.True(t, p.Exhausted(5))
	assert.True(t, p.Exhausted(6))
}

func TestRetryPolicyCustomMultiplier(t *testing.T) {
	p := RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, Multiplier: 2}
	assert.Equal(t, 500*time.Millisecond, p.Delay(1))
	assert.Equal(t, 1500*time.Millisecond, p.Delay(2))
	assert.Equal(t, 2500*time.Millisecond, p.Delay(3))
}
