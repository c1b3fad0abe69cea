package fetch

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/GamblerIX/duanju/internal/provider"
)

// providerLimiter pairs a token bucket with a bounded waiter count.
type providerLimiter struct {
	limiter    *rate.Limiter
	maxWaiters int64
	waiters    atomic.Int64
}

// Governor enforces per-provider request budgets. Each provider gets a
// token bucket sized from its declared QPS budget and burst; callers that
// find the bucket empty queue up to a bound, beyond which they are
// rejected with a rate-limit error instead of waiting.
type Governor struct {
	mu       sync.RWMutex
	limiters map[string]*providerLimiter
	logger   zerolog.Logger
}

// NewGovernor creates an empty governor.
func NewGovernor(logger zerolog.Logger) *Governor {
	return &Governor{
		limiters: make(map[string]*providerLimiter),
		logger:   logger.With().Str("component", "governor").Logger(),
	}
}

// Register installs the budget for one provider. A non-positive qps
// leaves the provider unmetered. Registering an id again replaces its
// budget.
func (g *Governor) Register(providerID string, qps float64, burst, maxWaiters int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if qps <= 0 {
		delete(g.limiters, providerID)
		return
	}
	if burst < 1 {
		burst = 1
	}
	if maxWaiters < 1 {
		maxWaiters = 16
	}

	g.limiters[providerID] = &providerLimiter{
		limiter:    rate.NewLimiter(rate.Limit(qps), burst),
		maxWaiters: int64(maxWaiters),
	}

	g.logger.Debug().
		Str("provider", providerID).
		Float64("qps", qps).
		Int("burst", burst).
		Int("max_waiters", maxWaiters).
		Msg("Rate budget registered")
}

// Acquire takes one token for the provider, waiting if the bucket is
// empty. When the wait queue is already at its bound the call fails
// immediately with a rate-limit error.
func (g *Governor) Acquire(ctx context.Context, providerID string) error {
	g.mu.RLock()
	pl, ok := g.limiters[providerID]
	g.mu.RUnlock()
	if !ok {
		return nil
	}

	if pl.limiter.Allow() {
		return nil
	}

	if pl.waiters.Add(1) > pl.maxWaiters {
		pl.waiters.Add(-1)
		g.logger.Warn().Str("provider", providerID).Msg("Rate limit queue exhausted")
		return provider.NewRateLimitError(providerID)
	}
	defer pl.waiters.Add(-1)

	return pl.limiter.Wait(ctx)
}

// Waiters reports how many callers are queued for the provider.
func (g *Governor) Waiters(providerID string) int {
	g.mu.RLock()
	pl, ok := g.limiters[providerID]
	g.mu.RUnlock()
	if !ok {
		return 0
	}
	return int(pl.waiters.Load())
}
