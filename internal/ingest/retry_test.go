package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShouldRetryStopsAtMaxAttempts(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(3)
	err := errors.New("boom")

	require.True(t, p.ShouldRetry(err, 1))
	require.True(t, p.ShouldRetry(err, 2))
	require.False(t, p.ShouldRetry(err, 3))
}

func TestShouldRetryHonorsConfiguredAttempts(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")

	single := NewExponentialRetryPolicy(1)
	require.False(t, single.ShouldRetry(err, 1))

	clamped := NewExponentialRetryPolicy(0)
	require.Equal(t, 1, clamped.MaxAttempts())
	require.False(t, clamped.ShouldRetry(err, 1))

	wide := NewExponentialRetryPolicy(5)
	require.True(t, wide.ShouldRetry(err, 4))
	require.False(t, wide.ShouldRetry(err, 5))
}

func TestShouldRetryIgnoresContextErrors(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(3)

	require.False(t, p.ShouldRetry(context.Canceled, 1))
	require.False(t, p.ShouldRetry(context.DeadlineExceeded, 1))
	require.False(t, p.ShouldRetry(nil, 1))
}

func TestBackoffStaysWithinBounds(t *testing.T) {
	t.Parallel()

	p := NewExponentialRetryPolicy(3)

	for attempt := 0; attempt < 6; attempt++ {
		d := p.Backoff(attempt)
		require.Positive(t, d)
		require.LessOrEqual(t, d, 5*time.Second)
	}
}
