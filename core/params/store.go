package params

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"query-sync/core/broadcast"
)

// Store owns the canonical parameter set and its single external address.
// The serialized address is the only persisted representation of the set;
// everything else is derived from it.
type Store struct {
	mu        sync.Mutex
	current   ParameterSet
	address   string
	committer Committer
	changes   *broadcast.Broadcaster[ParameterSet]
	logger    *zap.Logger
}

// NewStore creates a store with an empty parameter set. The committer must
// not be nil.
func NewStore(committer Committer, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{
		current:   ParameterSet{},
		committer: committer,
		changes:   broadcast.New[ParameterSet](),
		logger:    logger,
	}
	s.changes.Publish(ParameterSet{})
	return s
}

// Snapshot returns a copy of the current parameter set. It never blocks on
// I/O and never fails.
func (s *Store) Snapshot() ParameterSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Address returns the current serialized address.
func (s *Store) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.address
}

// Changes returns a stream of parameter sets. The current set is replayed to
// each new subscriber; afterwards one value is emitted per distinct address
// change. Two changes producing structurally equal sets emit once.
func (s *Store) Changes() (<-chan ParameterSet, func()) {
	return s.changes.Subscribe()
}

// Update shallow-merges partial into the current set (nil values delete the
// key), serializes the result and commits it as the new address. It returns
// false only when the committer rejects the navigation; the store state is
// left untouched in that case. Malformed values are serialized on a
// best-effort basis, never reported as an error.
func (s *Store) Update(ctx context.Context, partial ParameterSet, mode Mode) bool {
	s.mu.Lock()
	merged := s.current.Clone().Merge(partial)
	s.mu.Unlock()

	address := Serialize(merged)
	if !s.committer.Commit(ctx, address, mode) {
		s.logger.Debug("address commit rejected", zap.String("address", address))
		return false
	}

	s.apply(merged, address)
	return true
}

// Clear removes every key from the set, committing the empty address.
func (s *Store) Clear(ctx context.Context, mode Mode) bool {
	s.mu.Lock()
	partial := make(ParameterSet, len(s.current))
	for k := range s.current {
		partial[k] = nil
	}
	s.mu.Unlock()
	return s.Update(ctx, partial, mode)
}

// SetAddress replaces the parameter set wholesale from an externally changed
// address (history navigation, an incoming request URL, a shared link). It
// does not go through the committer; the address already changed. It
// returns true when the resulting set differs from the current one.
func (s *Store) SetAddress(raw string) bool {
	set := Deserialize(raw)
	return s.apply(set, Serialize(set))
}

func (s *Store) apply(set ParameterSet, address string) bool {
	s.mu.Lock()
	changed := !s.current.Equal(set)
	s.current = set
	s.address = address
	s.mu.Unlock()

	if changed {
		s.logger.Debug("parameter set changed", zap.String("address", address))
		s.changes.Publish(set.Clone())
	}
	return changed
}
