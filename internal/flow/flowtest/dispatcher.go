// Package flowtest provides a dispatcher that holds deliveries until the test
// releases them.
package flowtest

import (
	"context"
	"errors"
	"sync"

	"github.com/socialchef/cocktail-studio/internal/flow"
)

// ManualDispatcher records deliveries instead of scheduling them.
type ManualDispatcher struct {
	store flow.Store

	mu      sync.Mutex
	pending []flow.Delivery
	err     error
}

// NewManualDispatcher creates a dispatcher that delivers into store on release.
func NewManualDispatcher(store flow.Store) *ManualDispatcher {
	return &ManualDispatcher{store: store}
}

// FailWith makes every subsequent Dispatch return err.
func (m *ManualDispatcher) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *ManualDispatcher) Dispatch(_ context.Context, d flow.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.pending = append(m.pending, d)
	return nil
}

// Pending returns the held deliveries in dispatch order.
func (m *ManualDispatcher) Pending() []flow.Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]flow.Delivery, len(m.pending))
	copy(out, m.pending)
	return out
}

// Release delivers the held delivery at index i, as if its delay elapsed.
func (m *ManualDispatcher) Release(ctx context.Context, i int) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.pending) {
		m.mu.Unlock()
		return errors.New("no pending delivery at index")
	}
	d := m.pending[i]
	m.pending = append(m.pending[:i], m.pending[i+1:]...)
	m.mu.Unlock()

	return flow.Deliver(ctx, m.store, d)
}

// ReleaseAll delivers every held delivery in dispatch order.
func (m *ManualDispatcher) ReleaseAll(ctx context.Context) error {
	for {
		m.mu.Lock()
		n := len(m.pending)
		m.mu.Unlock()
		if n == 0 {
			return nil
		}
		if err := m.Release(ctx, 0); err != nil {
			return err
		}
	}
}
