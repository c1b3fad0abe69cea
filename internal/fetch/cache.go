package fetch

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type entryState int

const (
	statePending entryState = iota
	stateReady
	stateFailed
)

// entry is one cache slot. A pending entry has an open done channel that
// every interested caller waits on; it is closed exactly once when the
// fetch resolves. Pending entries have no expiry and are never evicted.
type entry struct {
	fingerprint string
	state       entryState
	value       interface{}
	err         error
	expiresAt   time.Time
	done        chan struct{}
	elem        *list.Element
}

func (e *entry) expired(now time.Time) bool {
	return e.state != statePending && now.After(e.expiresAt)
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries   int   `json:"entries"`
	Pending   int   `json:"pending"`
	Hits      int64 `json:"hits"`
	Misses    int64 `json:"misses"`
	Joins     int64 `json:"joins"`
	Evictions int64 `json:"evictions"`
	Expired   int64 `json:"expired"`
}

// Cache is the dedup and caching engine. It guarantees at most one
// in-flight upstream fetch per fingerprint: the first caller triggers
// the fetch, later callers join the pending entry and share its outcome.
// Failed fetches are cached briefly so a broken upstream is not hammered.
type Cache struct {
	mu          sync.Mutex
	entries     map[string]*entry
	lru         *list.List // front = most recently used
	maxEntries  int
	negativeTTL time.Duration
	logger      zerolog.Logger

	hits      int64
	misses    int64
	joins     int64
	evictions int64
	expired   int64
}

// NewCache creates a cache bounded to maxEntries resolved entries.
// Failed fetches are retained for negativeTTL.
func NewCache(maxEntries int, negativeTTL time.Duration, logger zerolog.Logger) *Cache {
	if maxEntries <= 0 {
		maxEntries = 500
	}
	if negativeTTL <= 0 {
		negativeTTL = 3 * time.Second
	}
	return &Cache{
		entries:     make(map[string]*entry),
		lru:         list.New(),
		maxEntries:  maxEntries,
		negativeTTL: negativeTTL,
		logger:      logger.With().Str("component", "cache").Logger(),
	}
}

// GetOrFetch returns the cached value for the fingerprint, or runs fetch
// to produce it. Concurrent callers with the same fingerprint share a
// single fetch. The fetch runs on a context detached from the caller's,
// so one caller giving up never aborts a result other callers are
// waiting on; the waiting itself still honors ctx.
func (c *Cache) GetOrFetch(ctx context.Context, fingerprint string, ttl time.Duration, fetch func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	c.mu.Lock()

	now := time.Now()
	if e, ok := c.entries[fingerprint]; ok {
		if e.expired(now) {
			c.removeLocked(e)
			c.expired++
		} else {
			switch e.state {
			case statePending:
				c.joins++
				c.mu.Unlock()
				return c.await(ctx, e)
			case stateReady:
				c.hits++
				c.lru.MoveToFront(e.elem)
				v := e.value
				c.mu.Unlock()
				return v, nil
			case stateFailed:
				c.hits++
				err := e.err
				c.mu.Unlock()
				return nil, err
			}
		}
	}

	c.misses++
	e := &entry{
		fingerprint: fingerprint,
		state:       statePending,
		done:        make(chan struct{}),
	}
	e.elem = c.lru.PushFront(e)
	c.entries[fingerprint] = e
	c.evictLocked()
	c.mu.Unlock()

	go c.resolve(context.WithoutCancel(ctx), e, ttl, fetch)

	return c.await(ctx, e)
}

// resolve runs the fetch and publishes its outcome to all waiters.
func (c *Cache) resolve(ctx context.Context, e *entry, ttl time.Duration, fetch func(ctx context.Context) (interface{}, error)) {
	value, err := fetch(ctx)

	c.mu.Lock()
	now := time.Now()
	if err != nil {
		e.state = stateFailed
		e.err = err
		e.expiresAt = now.Add(c.negativeTTL)
	} else {
		e.state = stateReady
		e.value = value
		e.expiresAt = now.Add(ttl)
	}
	close(e.done)
	c.mu.Unlock()
}

// await blocks until the entry resolves or the caller's context ends.
// Entry fields are written once before the done channel closes, so the
// reads below are ordered even if the entry was swept meanwhile.
func (c *Cache) await(ctx context.Context, e *entry) (interface{}, error) {
	select {
	case <-e.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if e.state == stateFailed {
		return nil, e.err
	}
	return e.value, nil
}

// evictLocked drops least-recently-used resolved entries until the cache
// fits its bound. Pending entries are skipped: evicting one would strand
// its waiters.
func (c *Cache) evictLocked() {
	for c.lru.Len() > c.maxEntries {
		evicted := false
		for elem := c.lru.Back(); elem != nil; elem = elem.Prev() {
			e := elem.Value.(*entry)
			if e.state == statePending {
				continue
			}
			c.removeLocked(e)
			c.evictions++
			evicted = true
			break
		}
		if !evicted {
			return
		}
	}
}

func (c *Cache) removeLocked(e *entry) {
	c.lru.Remove(e.elem)
	delete(c.entries, e.fingerprint)
}

// Sweep removes expired entries and returns how many were dropped.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	removed := 0
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		e := elem.Value.(*entry)
		if e.expired(now) {
			c.removeLocked(e)
			c.expired++
			removed++
		}
		elem = prev
	}

	if removed > 0 {
		c.logger.Debug().Int("removed", removed).Msg("Cache sweep completed")
	}
	return removed
}

// Clear drops all resolved entries and returns how many were dropped.
// Pending entries stay so in-flight fetches still deliver to waiters.
func (c *Cache) Clear() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for elem := c.lru.Back(); elem != nil; {
		prev := elem.Prev()
		e := elem.Value.(*entry)
		if e.state != statePending {
			c.removeLocked(e)
			removed++
		}
		elem = prev
	}

	c.logger.Info().Int("removed", removed).Msg("Cache cleared")
	return removed
}

// Len returns the number of entries, pending included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	pending := 0
	for _, e := range c.entries {
		if e.state == statePending {
			pending++
		}
	}

	return Stats{
		Entries:   len(c.entries),
		Pending:   pending,
		Hits:      c.hits,
		Misses:    c.misses,
		Joins:     c.joins,
		Evictions: c.evictions,
		Expired:   c.expired,
	}
}
