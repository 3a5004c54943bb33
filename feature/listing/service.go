package listing

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"query-sync/core/coordinator"
	"query-sync/core/orchestrator"
	"query-sync/core/params"
	"query-sync/core/snapshot"
	"query-sync/feature/listing/models"
)

// State is the published listing resource state.
type State = orchestrator.State[Filters, models.Listing]

// Service wires the engine for the listing domain: the addressable store
// (the request query string is the external address), a shared coordinator,
// the active orchestrator, and a passive mirror fed through the snapshot
// broker.
type Service struct {
	store     *params.Store
	committer *params.MemoryCommitter
	coord     *coordinator.Coordinator
	orch      *orchestrator.Orchestrator[Filters, models.Listing]
	mirror    *orchestrator.Orchestrator[Filters, models.Listing]
	broker    *snapshot.Broker[State]
	snapshots *snapshot.Store
	logger    *zap.Logger

	cancelFeed func()
}

// NewService builds the full engine stack for listings. snapshots may be
// nil, which disables durable snapshot sharing.
func NewService(db *gorm.DB, policy coordinator.Policy, snapshots *snapshot.Store, logger *zap.Logger) (*Service, error) {
	if db == nil {
		return nil, errors.New("listing: database connection is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	committer := params.NewMemoryCommitter()
	store := params.NewStore(committer, logger)
	committer.OnNavigate(func(address string) { store.SetAddress(address) })

	coord := coordinator.New(logger)
	adapter := NewAdapter(db, logger)

	orch, err := orchestrator.New(orchestrator.Options[Filters, models.Listing]{
		Store:       store,
		Coordinator: coord,
		Derive:      DeriveFilters,
		BuildKey:    BuildKey,
		Fetch:       adapter.Fetch,
		Policy:      policy,
		Logger:      logger,
	})
	if err != nil {
		return nil, fmt.Errorf("listing: failed to build orchestrator: %w", err)
	}

	mirror, err := orchestrator.New(orchestrator.Options[Filters, models.Listing]{
		Passive: true,
		Logger:  logger,
	})
	if err != nil {
		orch.Close()
		return nil, fmt.Errorf("listing: failed to build mirror: %w", err)
	}

	s := &Service{
		store:     store,
		committer: committer,
		coord:     coord,
		orch:      orch,
		mirror:    mirror,
		broker:    snapshot.NewBroker[State](),
		snapshots: snapshots,
		logger:    logger,
	}

	// The mirror follows whatever lands on the broker, whether published
	// locally or received over the sync endpoint.
	feed, cancelFeed := s.broker.Subscribe()
	s.cancelFeed = cancelFeed
	go func() {
		for st := range feed {
			s.mirror.SyncFromSnapshot(st)
		}
	}()

	return s, nil
}

// Query applies rawQuery as the new external address and waits for the
// resulting state to settle. An unchanged address resolves against the
// already settled state (or the cache) without a new fetch.
func (s *Service) Query(ctx context.Context, rawQuery string) (State, error) {
	results, cancel := s.orch.Results()
	defer cancel()

	prevGen := s.orch.Generation()
	changed := s.store.SetAddress(rawQuery)
	if changed {
		// SetAddress bypasses the committer; record the canonical address
		// so Back and Forward can walk through past queries.
		s.committer.Commit(ctx, s.store.Address(), params.ModePush)
	}

	return s.awaitSettled(ctx, results, func(st State) bool {
		if changed && st.Generation <= prevGen {
			return false
		}
		// Generation zero predates the initial dispatch; wait it out so a
		// freshly started service answers with real data.
		return st.Generation > 0 && !st.Loading
	})
}

// Refresh re-runs the current filter state's fetch, bypassing the cache,
// and waits for it to settle.
func (s *Service) Refresh(ctx context.Context) (State, error) {
	results, cancel := s.orch.Results()
	defer cancel()

	prevGen := s.orch.Generation()
	s.orch.Refresh()

	return s.awaitSettled(ctx, results, func(st State) bool {
		return st.Generation > prevGen && !st.Loading
	})
}

// Current returns the active orchestrator's state without waiting.
func (s *Service) Current() State {
	return s.orch.State()
}

// Mirror returns the passively synced state.
func (s *Service) Mirror() State {
	return s.mirror.State()
}

// ApplySnapshot feeds an externally supplied state snapshot to the mirror.
func (s *Service) ApplySnapshot(st State) {
	s.broker.Publish(st)
}

// Share publishes the current state as a durable snapshot object and
// returns its name.
func (s *Service) Share(ctx context.Context) (string, error) {
	if s.snapshots == nil {
		return "", errors.New("listing: snapshot sharing is not configured")
	}
	return s.snapshots.Publish(ctx, s.orch.State())
}

// Snapshot loads a previously shared snapshot by object name. An empty name
// returns the current state without waiting for an in-flight fetch, so a
// secondary consumer can seed itself either from durable storage or from the
// live instance.
func (s *Service) Snapshot(ctx context.Context, name string) (State, error) {
	if name == "" {
		return s.orch.State(), nil
	}
	if s.snapshots == nil {
		return State{}, errors.New("listing: snapshot sharing is not configured")
	}
	var state State
	if err := s.snapshots.Fetch(ctx, name, &state); err != nil {
		return State{}, err
	}
	return state, nil
}

// Invalidate drops every cached listing response. In-flight requests settle
// normally and may repopulate the cache.
func (s *Service) Invalidate() {
	s.coord.InvalidatePattern(KeyNamespace + "|")
}

// Back navigates the address history one entry backwards, re-emitting the
// older parameter set through the store.
func (s *Service) Back() bool {
	_, ok := s.committer.Back()
	return ok
}

// Forward is the inverse of Back.
func (s *Service) Forward() bool {
	_, ok := s.committer.Forward()
	return ok
}

// Address returns the current external address.
func (s *Service) Address() string {
	return s.store.Address()
}

// Loading reports whether any listing fetch is in flight.
func (s *Service) Loading() bool {
	return s.coord.AnyLoading()
}

// Close tears the engine down.
func (s *Service) Close() {
	s.cancelFeed()
	s.broker.Close()
	s.orch.Close()
	s.mirror.Close()
}

func (s *Service) awaitSettled(ctx context.Context, results <-chan State, pred func(State) bool) (State, error) {
	for {
		select {
		case st, ok := <-results:
			if !ok {
				return State{}, errors.New("listing: result stream closed")
			}
			if pred(st) {
				return st, nil
			}
		case <-ctx.Done():
			return State{}, ctx.Err()
		}
	}
}
