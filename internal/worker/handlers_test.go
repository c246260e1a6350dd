package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/socialchef/cocktail-studio/internal/flow"
	"github.com/socialchef/cocktail-studio/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) MarkPending(ctx context.Context, kind flow.Kind) error {
	return m.Called(ctx, kind).Error(0)
}

func (m *MockStore) ClearPending(ctx context.Context, kind flow.Kind) error {
	return m.Called(ctx, kind).Error(0)
}

func (m *MockStore) Deliver(ctx context.Context, d flow.Delivery) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockStore) Load(ctx context.Context, kind flow.Kind) (flow.Slot, error) {
	args := m.Called(ctx, kind)
	return args.Get(0).(flow.Slot), args.Error(1)
}

func TestHandleDeliverResult_WritesSlot(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemoryStore()
	require.NoError(t, s.MarkPending(ctx, flow.KindResearch))

	task, err := NewDeliverResultTask(testDelivery())
	require.NoError(t, err)

	p := NewDeliveryProcessor(s)
	require.NoError(t, p.HandleDeliverResult(ctx, task))

	slot, err := s.Load(ctx, flow.KindResearch)
	require.NoError(t, err)
	assert.False(t, slot.Loading)
	assert.JSONEq(t, `"resumo"`, string(slot.Result))
	assert.Equal(t, "d-1", slot.DeliveryID)
}

func TestHandleDeliverResult_InvalidPayloadSkipsRetry(t *testing.T) {
	p := NewDeliveryProcessor(store.NewMemoryStore())

	err := p.HandleDeliverResult(context.Background(), asynq.NewTask(TypeDeliverResult, []byte("{not json")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestHandleDeliverResult_UnknownFlowSkipsRetry(t *testing.T) {
	s := new(MockStore)
	p := NewDeliveryProcessor(s)

	data, err := json.Marshal(DeliverResultPayload{Delivery: flow.Delivery{ID: "x", Flow: "cellar"}})
	require.NoError(t, err)

	err = p.HandleDeliverResult(context.Background(), asynq.NewTask(TypeDeliverResult, data))
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
	s.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
}

func TestHandleDeliverResult_StoreErrorIsRetried(t *testing.T) {
	s := new(MockStore)
	s.On("Deliver", mock.Anything, mock.AnythingOfType("flow.Delivery")).Return(errors.New("i/o timeout"))

	task, err := NewDeliverResultTask(testDelivery())
	require.NoError(t, err)

	err = NewDeliveryProcessor(s).HandleDeliverResult(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	s.AssertExpectations(t)
}

func TestIsFinalAttempt(t *testing.T) {
	plain := errors.New("boom")

	assert.False(t, isFinalAttempt(plain, 0, 3))
	assert.True(t, isFinalAttempt(plain, 3, 3))
	assert.True(t, isFinalAttempt(errors.Join(plain, asynq.SkipRetry), 0, 3))
}

func TestRedisConnOpt(t *testing.T) {
	tests := []struct {
		name     string
		url      string
		addr     string
		password string
		db       int
		tls      bool
	}{
		{"plain host", "localhost:6379", "localhost:6379", "", 0, false},
		{"redis scheme", "redis://:secret@cache:6380/2", "cache:6380", "secret", 2, false},
		{"tls scheme", "rediss://default:pw@upstash.io:6379", "upstash.io:6379", "pw", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, err := RedisConnOpt(tt.url)
			require.NoError(t, err)

			opt, ok := conn.(asynq.RedisClientOpt)
			require.True(t, ok, "unexpected option type %T", conn)
			assert.Equal(t, tt.addr, opt.Addr)
			assert.Equal(t, tt.password, opt.Password)
			assert.Equal(t, tt.db, opt.DB)
			assert.Equal(t, tt.tls, opt.TLSConfig != nil)
		})
	}

	_, err := RedisConnOpt("ftp://cache:6379")
	assert.Error(t, err)
}

func TestNewDeliverResultTask(t *testing.T) {
	d := testDelivery()
	d.ScheduledAt = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	task, err := NewDeliverResultTask(d)
	require.NoError(t, err)
	assert.Equal(t, TypeDeliverResult, task.Type())

	var payload DeliverResultPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, d.Flow, payload.Delivery.Flow)
	assert.Equal(t, d.Delay, payload.Delivery.Delay)
	assert.True(t, d.ScheduledAt.Equal(payload.Delivery.ScheduledAt))
}
