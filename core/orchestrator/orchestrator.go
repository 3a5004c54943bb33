package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"query-sync/core/broadcast"
	"query-sync/core/coordinator"
	"query-sync/core/params"
)

// Options configures an Orchestrator. Derive, BuildKey and Fetch are the
// pluggable domain collaborators; they must be pure (Derive, BuildKey) and
// total: a malformed parameter set is handled by coercion inside Derive,
// never by a panic.
type Options[F, T any] struct {
	// Store is the addressable state the orchestrator reacts to. Required
	// unless Passive.
	Store *params.Store
	// Coordinator resolves fetches. Required unless Passive. Sharing one
	// instance across orchestrators maximizes cache and dedup effectiveness
	// as long as BuildKey namespaces keys apart.
	Coordinator *coordinator.Coordinator
	// Derive projects the raw parameter set into a typed filter state and
	// the highlight overlay.
	Derive func(set params.ParameterSet) (F, Overlay)
	// BuildKey produces the deterministic cache key for a derived state.
	BuildKey func(filters F, overlay Overlay) string
	// Fetch loads a page of results for the derived state.
	Fetch func(ctx context.Context, filters F, overlay Overlay) (Result[T], error)
	// Policy is the coordinator policy applied to every fetch.
	Policy coordinator.Policy
	// Passive disables the store subscription and fetching entirely; state
	// arrives solely through SyncFromSnapshot.
	Passive bool
	Logger  *zap.Logger
}

// Orchestrator subscribes to the parameter store, derives filters and an
// overlay on every emission, resolves the fetch through the coordinator and
// republishes results as observable state.
//
// Ordering: every emission is tagged with a monotonically increasing
// generation; a completion whose generation no longer matches the current
// one is discarded, so a slow early fetch can never overwrite the state of a
// later change. The underlying fetch is not cancelled; its result still
// lands in the coordinator cache for whoever asks next.
type Orchestrator[F, T any] struct {
	store    *params.Store
	coord    *coordinator.Coordinator
	derive   func(params.ParameterSet) (F, Overlay)
	buildKey func(F, Overlay) string
	fetch    func(context.Context, F, Overlay) (Result[T], error)
	policy   coordinator.Policy
	passive  bool
	logger   *zap.Logger

	results *broadcast.Broadcaster[State[F, T]]

	mu    sync.Mutex
	gen   uint64
	state State[F, T]

	ctx       context.Context
	cancel    context.CancelFunc
	cancelSub func()
	closeOnce sync.Once
}

// New validates the options and starts the orchestrator. Construction is the
// only place configuration errors surface; everything afterwards is data.
func New[F, T any](opts Options[F, T]) (*Orchestrator[F, T], error) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if !opts.Passive {
		if opts.Store == nil {
			return nil, errors.New("orchestrator: store is required")
		}
		if opts.Coordinator == nil {
			return nil, errors.New("orchestrator: coordinator is required")
		}
		if opts.Derive == nil {
			return nil, errors.New("orchestrator: derive func is required")
		}
		if opts.BuildKey == nil {
			return nil, errors.New("orchestrator: key builder is required")
		}
		if opts.Fetch == nil {
			return nil, errors.New("orchestrator: fetch adapter is required")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator[F, T]{
		store:    opts.Store,
		coord:    opts.Coordinator,
		derive:   opts.Derive,
		buildKey: opts.BuildKey,
		fetch:    opts.Fetch,
		policy:   opts.Policy,
		passive:  opts.Passive,
		logger:   opts.Logger,
		results:  broadcast.New[State[F, T]](),
		ctx:      ctx,
		cancel:   cancel,
	}
	o.results.Publish(o.state)

	if !o.passive {
		ch, cancelSub := o.store.Changes()
		o.cancelSub = cancelSub
		go func() {
			for set := range ch {
				o.dispatch(set, false)
			}
		}()
	}
	return o, nil
}

// State returns the current resource state.
func (o *Orchestrator[F, T]) State() State[F, T] {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Generation returns the generation of the most recent dispatch.
func (o *Orchestrator[F, T]) Generation() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gen
}

// Results returns the state stream. The current state is replayed to each
// new subscriber.
func (o *Orchestrator[F, T]) Results() (<-chan State[F, T], func()) {
	return o.results.Subscribe()
}

// Refresh re-runs the current parameter set's fetch, bypassing (but not
// deleting) the cache entry. No-op for passive orchestrators.
func (o *Orchestrator[F, T]) Refresh() {
	if o.passive {
		return
	}
	o.dispatch(o.store.Snapshot(), true)
}

// SyncFromSnapshot replaces the entire state with an externally supplied
// snapshot and performs no fetch. Any still-outstanding fetch is superseded.
func (o *Orchestrator[F, T]) SyncFromSnapshot(snapshot State[F, T]) {
	o.mu.Lock()
	o.gen++
	snapshot.Generation = o.gen
	o.state = snapshot
	o.results.Publish(snapshot)
	o.mu.Unlock()
}

// Close stops the store subscription and discards late completions.
func (o *Orchestrator[F, T]) Close() {
	o.closeOnce.Do(func() {
		if o.cancelSub != nil {
			o.cancelSub()
		}
		o.cancel()
		o.results.Close()
	})
}

// dispatch derives the typed state for set, publishes the loading state and
// resolves the fetch asynchronously so later emissions are not blocked by
// earlier in-flight requests.
func (o *Orchestrator[F, T]) dispatch(set params.ParameterSet, skipCache bool) {
	filters, overlay := o.derive(set)
	key := o.buildKey(filters, overlay)

	o.mu.Lock()
	o.gen++
	gen := o.gen
	o.state.Loading = true
	o.state.Filters = filters
	o.state.Generation = gen
	// Published under the mutex so the stream stays generation-monotonic:
	// a newer dispatch can never slip its publication in front of this one.
	o.results.Publish(o.state)
	o.mu.Unlock()

	policy := o.policy
	policy.SkipCache = skipCache

	go func() {
		payload, err := o.coord.Execute(o.ctx, key, func(ctx context.Context) (any, error) {
			return o.fetch(ctx, filters, overlay)
		}, policy)
		o.complete(gen, key, payload, err)
	}()
}

// complete applies a settled fetch, unless a newer dispatch has superseded
// it. A failure keeps the previous items on display and only flips the error
// field.
func (o *Orchestrator[F, T]) complete(gen uint64, key string, payload any, err error) {
	o.mu.Lock()
	if gen != o.gen || o.ctx.Err() != nil {
		o.mu.Unlock()
		o.logger.Debug("discarding stale fetch completion",
			zap.String("key", key),
			zap.Uint64("generation", gen))
		return
	}

	o.state.Loading = false
	if err != nil {
		o.state.Error = err.Error()
	} else if result, ok := payload.(Result[T]); ok {
		o.state.Error = ""
		o.state.Items = result.Items
		o.state.TotalCount = result.TotalCount
		o.state.Statistics = result.Statistics
	} else {
		// A colliding cache key can hand back a foreign payload type. Keys
		// are namespaced by construction, so this is surfaced as data.
		o.state.Error = fmt.Sprintf("unexpected payload type %T for key %q", payload, key)
	}
	o.results.Publish(o.state)
	o.mu.Unlock()
}
