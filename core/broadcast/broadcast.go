package broadcast

import "sync"

// Broadcaster holds the latest value of type T and fans it out to subscribers.
// Get is synchronous; Subscribe replays the current value (if any) and then
// delivers every subsequent publish. Subscriber channels have capacity one and
// coalesce: when a subscriber lags, the pending value is replaced by the newer
// one, so a reader always converges on the latest published value.
type Broadcaster[T any] struct {
	mu      sync.Mutex
	current T
	hasVal  bool
	subs    map[int]chan T
	nextID  int
	closed  bool
}

// New creates a Broadcaster with no initial value.
func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{subs: make(map[int]chan T)}
}

// NewWith creates a Broadcaster seeded with an initial value.
func NewWith[T any](initial T) *Broadcaster[T] {
	b := New[T]()
	b.current = initial
	b.hasVal = true
	return b
}

// Get returns the latest published value and whether one exists.
func (b *Broadcaster[T]) Get() (T, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current, b.hasVal
}

// Publish stores v as the latest value and notifies all subscribers.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.current = v
	b.hasVal = true
	for _, ch := range b.subs {
		send(ch, v)
	}
}

// Subscribe registers a new subscriber. The returned cancel func must be
// called when the subscriber is done; it closes the channel.
func (b *Broadcaster[T]) Subscribe() (<-chan T, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, 1)
	if b.closed {
		close(ch)
		return ch, func() {}
	}

	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	if b.hasVal {
		ch <- b.current
	}

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Close terminates the broadcaster and closes all subscriber channels.
// Publish and Subscribe become no-ops afterwards.
func (b *Broadcaster[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

// send delivers v without blocking: if the subscriber has not consumed the
// previous value yet, that value is dropped in favor of v.
func send[T any](ch chan T, v T) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
