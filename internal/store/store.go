// Package store holds the per-flow state slots, in memory or in Redis.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/socialchef/cocktail-studio/internal/flow"
)

// MemoryStore keeps slots in a map guarded by a mutex.
type MemoryStore struct {
	mu    sync.RWMutex
	slots map[flow.Kind]flow.Slot
	now   func() time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		slots: make(map[flow.Kind]flow.Slot),
		now:   time.Now,
	}
}

func (s *MemoryStore) MarkPending(_ context.Context, kind flow.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.slots[kind]
	slot.Loading = true
	s.slots[kind] = slot
	return nil
}

func (s *MemoryStore) ClearPending(_ context.Context, kind flow.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot := s.slots[kind]
	slot.Loading = false
	s.slots[kind] = slot
	return nil
}

func (s *MemoryStore) Deliver(_ context.Context, d flow.Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]byte, len(d.Payload))
	copy(result, d.Payload)

	s.slots[d.Flow] = flow.Slot{
		Loading:    false,
		Result:     result,
		DeliveryID: d.ID,
		UpdatedAt:  s.now(),
	}
	return nil
}

func (s *MemoryStore) Load(_ context.Context, kind flow.Kind) (flow.Slot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	slot := s.slots[kind]
	if slot.Result != nil {
		result := make([]byte, len(slot.Result))
		copy(result, slot.Result)
		slot.Result = result
	}
	return slot, nil
}
