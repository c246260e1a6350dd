package store

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/socialchef/cocktail-studio/internal/flow"
)

const (
	fieldLoading    = "loading"
	fieldResult     = "result"
	fieldDeliveryID = "delivery_id"
	fieldUpdatedAt  = "updated_at"
)

// RedisStore keeps each flow's slot in a Redis hash so the API and the
// worker share state.
type RedisStore struct {
	client redis.Cmdable
	prefix string
	now    func() time.Time
}

// NewRedisStore creates a store using client. Keys are namespaced by prefix.
func NewRedisStore(client redis.Cmdable, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "cocktail-studio:"
	}
	return &RedisStore{
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

// NewRedisClient parses redisURL and returns a connected client.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		// Plain host:port is accepted as well.
		opts = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opts)

	if err := redisotel.InstrumentTracing(client); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to instrument Redis tracing: %w", err)
	}
	if err := redisotel.InstrumentMetrics(client); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to instrument Redis metrics: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// makeKey returns the hash key for kind.
func (s *RedisStore) makeKey(kind flow.Kind) string {
	return fmt.Sprintf("%sflow:%s", s.prefix, kind)
}

func (s *RedisStore) MarkPending(ctx context.Context, kind flow.Kind) error {
	if err := s.client.HSet(ctx, s.makeKey(kind), fieldLoading, "1").Err(); err != nil {
		return fmt.Errorf("failed to mark %s pending: %w", kind, err)
	}
	return nil
}

func (s *RedisStore) ClearPending(ctx context.Context, kind flow.Kind) error {
	if err := s.client.HSet(ctx, s.makeKey(kind), fieldLoading, "0").Err(); err != nil {
		return fmt.Errorf("failed to clear %s pending: %w", kind, err)
	}
	return nil
}

func (s *RedisStore) Deliver(ctx context.Context, d flow.Delivery) error {
	err := s.client.HSet(ctx, s.makeKey(d.Flow),
		fieldLoading, "0",
		fieldResult, string(d.Payload),
		fieldDeliveryID, d.ID,
		fieldUpdatedAt, strconv.FormatInt(s.now().UnixMilli(), 10),
	).Err()
	if err != nil {
		return fmt.Errorf("failed to store %s delivery: %w", d.Flow, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, kind flow.Kind) (flow.Slot, error) {
	fields, err := s.client.HGetAll(ctx, s.makeKey(kind)).Result()
	if err != nil {
		return flow.Slot{}, fmt.Errorf("failed to load %s: %w", kind, err)
	}
	return decodeSlot(fields)
}

func decodeSlot(fields map[string]string) (flow.Slot, error) {
	var slot flow.Slot
	if len(fields) == 0 {
		return slot, nil
	}

	slot.Loading = fields[fieldLoading] == "1"
	slot.DeliveryID = fields[fieldDeliveryID]

	if result, ok := fields[fieldResult]; ok {
		slot.Result = []byte(result)
	}

	if updated := fields[fieldUpdatedAt]; updated != "" {
		ms, err := strconv.ParseInt(updated, 10, 64)
		if err != nil {
			return flow.Slot{}, fmt.Errorf("invalid updated_at %q: %w", updated, err)
		}
		slot.UpdatedAt = time.UnixMilli(ms)
	}

	return slot, nil
}
