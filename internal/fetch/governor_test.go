package fetch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GamblerIX/duanju/internal/provider"
	"github.com/GamblerIX/duanju/internal/testutil"
)

func TestGovernorBurstThenWait(t *testing.T) {
	g := NewGovernor(testutil.NopLogger())
	g.Register("p", 50, 3, 10)

	ctx := context.Background()

	// Burst tokens are granted immediately.
	for i := 0; i < 3; i++ {
		require.NoError(t, g.Acquire(ctx, "p"))
	}

	// The next acquisition has to wait for a token (20ms at 50 qps).
	start := time.Now()
	require.NoError(t, g.Acquire(ctx, "p"))
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
}

func TestGovernorQueueExhaustion(t *testing.T) {
	g := NewGovernor(testutil.NopLogger())
	// One token per 10s with a queue of 2: the burst caller passes, two
	// queue up, the rest are rejected.
	g.Register("p", 0.1, 1, 2)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, g.Acquire(ctx, "p"))

	var wg sync.WaitGroup
	waiterErrs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			waiterErrs <- g.Acquire(ctx, "p")
		}()
	}

	// Let both waiters enqueue before probing the bound.
	require.Eventually(t, func() bool { return g.Waiters("p") == 2 }, time.Second, time.Millisecond)

	err := g.Acquire(ctx, "p")
	require.Error(t, err)
	assert.True(t, provider.IsRateLimited(err), "overflow is rejected, not queued")

	// Release the queued waiters; cancellation is a valid wait outcome.
	cancel()
	wg.Wait()
	close(waiterErrs)
	for err := range waiterErrs {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestGovernorUnmeteredProvider(t *testing.T) {
	g := NewGovernor(testutil.NopLogger())

	// No budget registered: every acquisition passes.
	for i := 0; i < 100; i++ {
		require.NoError(t, g.Acquire(context.Background(), "free"))
	}

	// A non-positive budget unmeters an existing provider.
	g.Register("p", 1, 1, 1)
	g.Register("p", 0, 0, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, g.Acquire(context.Background(), "p"))
	}
}
