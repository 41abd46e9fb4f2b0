package latency

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitZeroReturnsImmediately(t *testing.T) {
	require.NoError(t, Wait(context.Background(), 0))
}

func TestWaitHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, Wait(ctx, time.Hour), context.Canceled)
}

func TestWaitHonorsDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, Wait(ctx, time.Hour), context.DeadlineExceeded)
}

func TestWaitElapses(t *testing.T) {
	start := time.Now()
	require.NoError(t, Wait(context.Background(), 5*time.Millisecond))
	require.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}
