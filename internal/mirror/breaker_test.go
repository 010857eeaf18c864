package mirror

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errRemote = errors.New("remote down")

func fail(context.Context) error    { return errRemote }
func succeed(context.Context) error { return nil }

func TestBreaker_Lifecycle(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	b := NewBreaker(BreakerConfig{FailureThreshold: 2, OpenTimeout: time.Minute})
	b.now = func() time.Time { return now }
	ctx := context.Background()

	require.ErrorIs(t, b.Execute(ctx, fail), errRemote)
	assert.Equal(t, StateClosed, b.State())
	require.ErrorIs(t, b.Execute(ctx, fail), errRemote)
	assert.Equal(t, StateOpen, b.State())

	require.ErrorIs(t, b.Execute(ctx, succeed), ErrCircuitOpen)

	now = now.Add(time.Minute)
	require.ErrorIs(t, b.Execute(ctx, fail), errRemote)
	assert.Equal(t, StateOpen, b.State(), "failed probe reopens")

	now = now.Add(time.Minute)
	require.NoError(t, b.Execute(ctx, succeed))
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker(BreakerConfig{FailureThreshold: 2})
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, succeed)
	_ = b.Execute(ctx, fail)
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_IgnoresNonFailures(t *testing.T) {
	errRejected := errors.New("rejected by remote")
	b := NewBreaker(BreakerConfig{
		FailureThreshold: 2,
		IsFailure:        func(err error) bool { return !errors.Is(err, errRejected) },
	})
	ctx := context.Background()
	reject := func(context.Context) error { return errRejected }

	for range 5 {
		require.ErrorIs(t, b.Execute(ctx, reject), errRejected)
	}
	assert.Equal(t, StateClosed, b.State())

	_ = b.Execute(ctx, fail)
	_ = b.Execute(ctx, reject)
	_ = b.Execute(ctx, fail)
	assert.Equal(t, StateClosed, b.State(), "rejection resets the failure count")

	_ = b.Execute(ctx, fail)
	assert.Equal(t, StateOpen, b.State())
}

func TestBreaker_SingleProbeWhileHalfOpen(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Second})
	b.now = func() time.Time { return now }
	ctx := context.Background()

	_ = b.Execute(ctx, fail)
	now = now.Add(time.Second)

	err := b.Execute(ctx, func(ctx context.Context) error {
		assert.Equal(t, StateHalfOpen, b.State())
		assert.ErrorIs(t, b.Execute(ctx, succeed), ErrCircuitOpen)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, StateClosed, b.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "half-open", StateHalfOpen.String())
	assert.Equal(t, "unknown", State(9).String())
}
