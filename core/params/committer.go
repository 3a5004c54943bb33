package params

import (
	"context"
	"sync"
)

// Mode selects how an address commit affects navigable history.
type Mode string

const (
	// ModePush commits the address as a new history entry.
	ModePush Mode = "push"
	// ModeReplace overwrites the current history entry.
	ModeReplace Mode = "replace"
)

// Committer persists a serialized parameter set as the external address.
// Commit returns false when the navigation is rejected (e.g. blocked by a
// guard); it never returns an error, matching the store's boolean contract.
type Committer interface {
	Commit(ctx context.Context, address string, mode Mode) bool
}

// MemoryCommitter is an in-process Committer with a navigable history stack.
// It stands in for a browser-style address bar: Back and Forward walk the
// history and report the address through the OnNavigate hook, which callers
// typically wire to Store.SetAddress.
type MemoryCommitter struct {
	mu         sync.Mutex
	history    []string
	index      int
	guard      func(address string) bool
	onNavigate func(address string)
}

// NewMemoryCommitter creates a committer with a single empty history entry.
func NewMemoryCommitter() *MemoryCommitter {
	return &MemoryCommitter{history: []string{""}}
}

// SetGuard installs a predicate consulted before every commit. Returning
// false rejects the navigation.
func (m *MemoryCommitter) SetGuard(guard func(address string) bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.guard = guard
}

// OnNavigate installs a hook invoked with the new address whenever Back or
// Forward navigates the history.
func (m *MemoryCommitter) OnNavigate(fn func(address string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onNavigate = fn
}

// Commit records address in the history. ModePush truncates any forward
// entries and appends; ModeReplace overwrites in place.
func (m *MemoryCommitter) Commit(ctx context.Context, address string, mode Mode) bool {
	if ctx != nil && ctx.Err() != nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.guard != nil && !m.guard(address) {
		return false
	}
	if mode == ModePush {
		m.history = append(m.history[:m.index+1], address)
		m.index++
		return true
	}
	m.history[m.index] = address
	return true
}

// Current returns the address at the current history position.
func (m *MemoryCommitter) Current() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history[m.index]
}

// Len returns the number of history entries.
func (m *MemoryCommitter) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.history)
}

// Back navigates one entry backwards. It returns the new address and whether
// navigation happened.
func (m *MemoryCommitter) Back() (string, bool) {
	return m.navigate(-1)
}

// Forward navigates one entry forwards.
func (m *MemoryCommitter) Forward() (string, bool) {
	return m.navigate(1)
}

func (m *MemoryCommitter) navigate(delta int) (string, bool) {
	m.mu.Lock()
	next := m.index + delta
	if next < 0 || next >= len(m.history) {
		m.mu.Unlock()
		return "", false
	}
	m.index = next
	address := m.history[next]
	hook := m.onNavigate
	m.mu.Unlock()

	if hook != nil {
		hook(address)
	}
	return address, true
}
