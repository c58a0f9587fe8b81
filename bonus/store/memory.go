// Package store provides the in-memory Persistence implementation used by
// tests and development runs.
package store

import (
	"context"
	"sync"

	"github.com/warp/bonus-engine/bonus"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds the state and event trail in process memory. Safe for
// concurrent use; all reads and writes are deep copies.
type Memory struct {
	mu     sync.RWMutex
	state  bonus.State
	events []bonus.Event

	// LoadErr, when set, is returned by Load. Lets tests exercise the
	// start-fresh fallback.
	LoadErr error
}

func NewMemory() *Memory {
	return &Memory{state: bonus.NewState()}
}

// Seed replaces the stored state. Test setup helper.
func (m *Memory) Seed(state bonus.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Clone()
}

func (m *Memory) Load(_ context.Context) (bonus.State, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.LoadErr != nil {
		return bonus.State{}, m.LoadErr
	}
	return m.state.Clone(), nil
}

func (m *Memory) Save(_ context.Context, state bonus.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.Clone()
	return nil
}

func (m *Memory) Record(_ context.Context, event bonus.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of the recorded event trail.
func (m *Memory) Events() []bonus.Event {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]bonus.Event, len(m.events))
	copy(out, m.events)
	return out
}

// ListEvents returns the most recent events, newest first.
func (m *Memory) ListEvents(_ context.Context, limit int) ([]bonus.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if limit <= 0 || limit > len(m.events) {
		limit = len(m.events)
	}
	out := make([]bonus.Event, 0, limit)
	for i := len(m.events) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}
