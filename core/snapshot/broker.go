package snapshot

import "query-sync/core/broadcast"

// Broker is the in-process leg of the passive-sync channel: a one-way
// conduit carrying state snapshots from an active consumer to passively
// synced mirrors in the same process.
type Broker[T any] struct {
	stream *broadcast.Broadcaster[T]
}

// NewBroker creates an empty broker.
func NewBroker[T any]() *Broker[T] {
	return &Broker[T]{stream: broadcast.New[T]()}
}

// Publish forwards a snapshot to all subscribed mirrors.
func (b *Broker[T]) Publish(snapshot T) {
	b.stream.Publish(snapshot)
}

// Subscribe registers a mirror. The latest snapshot (if any) is replayed.
func (b *Broker[T]) Subscribe() (<-chan T, func()) {
	return b.stream.Subscribe()
}

// Latest returns the most recently published snapshot.
func (b *Broker[T]) Latest() (T, bool) {
	return b.stream.Get()
}

// Close shuts the broker down.
func (b *Broker[T]) Close() {
	b.stream.Close()
}
