package coordinator

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"query-sync/core/broadcast"
)

// Fetch produces one logical payload. It is supplied per call and is never
// retained beyond the request it was issued for.
type Fetch func(ctx context.Context) (any, error)

// Coordinator resolves fetches through three layers: a TTL cache, in-flight
// deduplication, and retrying execution. One instance owns its cache and
// pending maps exclusively; several orchestrators may share it as long as
// their cache keys are namespaced apart.
type Coordinator struct {
	mu      sync.Mutex
	cache   map[string]cacheEntry
	pending map[string]*pendingRequest
	loading *broadcast.Broadcaster[int]
	logger  *zap.Logger

	// Injected for deterministic tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

type cacheEntry struct {
	payload  any
	storedAt time.Time
	ttl      time.Duration
}

func (e cacheEntry) expired(now time.Time) bool {
	return now.Sub(e.storedAt) > e.ttl
}

type pendingRequest struct {
	done    chan struct{}
	payload any
	err     error
}

// New creates a Coordinator.
func New(logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{
		cache:   make(map[string]cacheEntry),
		pending: make(map[string]*pendingRequest),
		loading: broadcast.NewWith(0),
		logger:  logger,
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// Execute resolves one logical result for key.
//
// The layers apply in strict order: a fresh cache entry is returned without
// invoking fetch (an expired one is evicted); an in-flight request for the
// same key is joined, all joiners observing the same outcome; otherwise fetch
// runs with exponential backoff retries. Success populates the cache (unless
// the policy bypasses it), failure never does, and the pending entry is
// removed unconditionally once the request settles.
func (c *Coordinator) Execute(ctx context.Context, key string, fetch Fetch, policy Policy) (any, error) {
	policy = policy.withDefaults()

	c.mu.Lock()
	if !policy.SkipCache {
		if entry, ok := c.cache[key]; ok {
			if !entry.expired(c.now()) {
				c.mu.Unlock()
				return entry.payload, nil
			}
			delete(c.cache, key)
		}
	}

	if p, ok := c.pending[key]; ok {
		c.mu.Unlock()
		return c.join(ctx, p)
	}

	p := &pendingRequest{done: make(chan struct{})}
	c.pending[key] = p
	c.publishLoading()
	c.mu.Unlock()

	payload, err := c.fetchWithRetry(ctx, key, fetch, policy)

	c.mu.Lock()
	if err == nil && !policy.SkipCache {
		c.cache[key] = cacheEntry{payload: payload, storedAt: c.now(), ttl: policy.TTL}
	}
	delete(c.pending, key)
	c.publishLoading()
	c.mu.Unlock()

	p.payload = payload
	p.err = err
	close(p.done)
	return payload, err
}

// join waits for an in-flight request to settle. The joiner's own context
// can abandon the wait; the underlying fetch is not cancelled and will still
// populate the cache for later callers.
func (c *Coordinator) join(ctx context.Context, p *pendingRequest) (any, error) {
	select {
	case <-p.done:
		return p.payload, p.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Coordinator) fetchWithRetry(ctx context.Context, key string, fetch Fetch, policy Policy) (any, error) {
	var payload any
	var err error
	for attempt := 0; ; attempt++ {
		payload, err = fetch(ctx)
		if err == nil {
			return payload, nil
		}
		if attempt >= policy.RetryAttempts {
			c.logger.Warn("fetch failed, retries exhausted",
				zap.String("key", key),
				zap.Int("attempts", attempt+1),
				zap.Error(err))
			return nil, err
		}

		delay := policy.RetryBaseDelay << attempt
		c.logger.Debug("fetch failed, retrying",
			zap.String("key", key),
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err))
		if sleepErr := c.sleep(ctx, delay); sleepErr != nil {
			return nil, sleepErr
		}
	}
}

// Loading reports whether a request for key is currently in flight.
func (c *Coordinator) Loading(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[key]
	return ok
}

// AnyLoading reports whether any request is in flight.
func (c *Coordinator) AnyLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending) > 0
}

// LoadingChanges returns a stream of in-flight request counts, derived
// purely from pending membership.
func (c *Coordinator) LoadingChanges() (<-chan int, func()) {
	return c.loading.Subscribe()
}

// Invalidate removes the cache entry for key. An in-flight request for the
// same key is left alone and may repopulate the cache when it settles.
func (c *Coordinator) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cache, key)
}

// InvalidatePattern removes every cache entry whose key contains substr.
func (c *Coordinator) InvalidatePattern(substr string) {
	c.InvalidateMatching(func(key string) bool {
		return strings.Contains(key, substr)
	})
}

// InvalidateMatching removes every cache entry whose key satisfies pred.
func (c *Coordinator) InvalidateMatching(pred func(key string) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.cache {
		if pred(key) {
			delete(c.cache, key)
		}
	}
}

// publishLoading must be called with the mutex held.
func (c *Coordinator) publishLoading() {
	c.loading.Publish(len(c.pending))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
