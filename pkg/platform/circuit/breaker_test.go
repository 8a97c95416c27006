package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBreaker_InitialState(t *testing.T) {
	b := New("paystack")
	assert.False(t, b.IsOpen())
	assert.True(t, b.Allow())
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, "paystack", b.Name())
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := New("paystack", WithFailureThreshold(3))

	unavailable, change := b.RecordFailure()
	assert.False(t, unavailable)
	assert.False(t, change.Opened)

	unavailable, change = b.RecordFailure()
	assert.False(t, unavailable)
	assert.False(t, change.Opened)

	unavailable, change = b.RecordFailure()
	assert.True(t, unavailable)
	assert.True(t, change.Opened)
	assert.True(t, b.IsOpen())
}

func TestBreaker_ClosesAfterSuccessThreshold(t *testing.T) {
	b := New("paystack", WithFailureThreshold(1), WithSuccessThreshold(2))

	b.RecordFailure()
	assert.True(t, b.IsOpen())

	closed, change := b.RecordSuccess()
	assert.False(t, closed)
	assert.False(t, change.Closed)
	assert.True(t, b.IsOpen())

	closed, change = b.RecordSuccess()
	assert.True(t, closed)
	assert.True(t, change.Closed)
	assert.False(t, b.IsOpen())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := New("emailjs", WithFailureThreshold(3))

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()

	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())

	b.RecordFailure()
	assert.True(t, b.IsOpen())
}

func TestBreaker_AllowWaitsForCooldown(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := New("paystack",
		WithFailureThreshold(1),
		WithCooldown(10*time.Second),
		WithClock(func() time.Time { return now }),
	)

	b.RecordFailure()
	assert.False(t, b.Allow(), "open breaker rejects calls inside cooldown")

	now = now.Add(10 * time.Second)
	assert.True(t, b.Allow(), "probe allowed once cooldown elapsed")

	b.RecordFailure()
	assert.False(t, b.Allow(), "failed probe restarts cooldown")
}

func TestBreaker_Reset(t *testing.T) {
	b := New("paystack", WithFailureThreshold(1))
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_OpenCircuitReportsNoSecondTransition(t *testing.T) {
	b := New("paystack", WithFailureThreshold(1))
	b.RecordFailure()

	unavailable, change := b.RecordFailure()
	assert.True(t, unavailable)
	assert.False(t, change.Opened)
}
