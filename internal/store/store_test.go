package store

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/socialchef/cocktail-studio/internal/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_EmptySlot(t *testing.T) {
	s := NewMemoryStore()

	slot, err := s.Load(context.Background(), flow.KindIdeas)
	require.NoError(t, err)
	assert.False(t, slot.Loading)
	assert.Nil(t, slot.Result)
	assert.True(t, slot.UpdatedAt.IsZero())
}

func TestMemoryStore_PendingThenDeliver(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.MarkPending(ctx, flow.KindResearch))
	slot, _ := s.Load(ctx, flow.KindResearch)
	assert.True(t, slot.Loading)

	require.NoError(t, s.Deliver(ctx, flow.Delivery{
		ID:      "d-1",
		Flow:    flow.KindResearch,
		Payload: json.RawMessage(`"summary"`),
	}))

	slot, _ = s.Load(ctx, flow.KindResearch)
	assert.False(t, slot.Loading)
	assert.JSONEq(t, `"summary"`, string(slot.Result))
	assert.Equal(t, "d-1", slot.DeliveryID)
	assert.Equal(t, fixed, slot.UpdatedAt)
}

func TestMemoryStore_DeliveryReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Deliver(ctx, flow.Delivery{ID: "a", Flow: flow.KindIdeas, Payload: json.RawMessage(`[1,2,3]`)}))
	require.NoError(t, s.Deliver(ctx, flow.Delivery{ID: "b", Flow: flow.KindIdeas, Payload: json.RawMessage(`[]`)}))

	slot, _ := s.Load(ctx, flow.KindIdeas)
	assert.JSONEq(t, `[]`, string(slot.Result))
	assert.Equal(t, "b", slot.DeliveryID)
}

func TestMemoryStore_ClearPendingKeepsResult(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.Deliver(ctx, flow.Delivery{ID: "a", Flow: flow.KindVisual, Payload: json.RawMessage(`"uri"`)}))
	require.NoError(t, s.MarkPending(ctx, flow.KindVisual))
	require.NoError(t, s.ClearPending(ctx, flow.KindVisual))

	slot, _ := s.Load(ctx, flow.KindVisual)
	assert.False(t, slot.Loading)
	assert.JSONEq(t, `"uri"`, string(slot.Result))
}

func TestMemoryStore_SlotsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.MarkPending(ctx, flow.KindIdeas))

	visual, _ := s.Load(ctx, flow.KindVisual)
	research, _ := s.Load(ctx, flow.KindResearch)
	assert.False(t, visual.Loading)
	assert.False(t, research.Loading)
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	payload := json.RawMessage(`"abc"`)

	require.NoError(t, s.Deliver(ctx, flow.Delivery{Flow: flow.KindResearch, Payload: payload}))
	payload[1] = 'x'

	slot, _ := s.Load(ctx, flow.KindResearch)
	slot.Result[1] = 'y'

	again, _ := s.Load(ctx, flow.KindResearch)
	assert.Equal(t, `"abc"`, string(again.Result))
}

func TestMemoryStore_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.MarkPending(ctx, flow.KindIdeas)
		}()
		go func() {
			defer wg.Done()
			_ = s.Deliver(ctx, flow.Delivery{Flow: flow.KindIdeas, Payload: json.RawMessage(`[]`)})
		}()
	}
	wg.Wait()

	slot, err := s.Load(ctx, flow.KindIdeas)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(slot.Result))
}
