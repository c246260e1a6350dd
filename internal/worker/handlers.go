package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/socialchef/cocktail-studio/internal/flow"
	"github.com/socialchef/cocktail-studio/internal/metrics"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DeliveryProcessor writes delayed flow results into the store.
type DeliveryProcessor struct {
	store flow.Store
}

func NewDeliveryProcessor(store flow.Store) *DeliveryProcessor {
	return &DeliveryProcessor{store: store}
}

func (p *DeliveryProcessor) HandleDeliverResult(ctx context.Context, t *asynq.Task) error {
	start := time.Now()

	var payload DeliverResultPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		metrics.RecordJob(ctx, t.Type(), "invalid", time.Since(start))
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}

	d := payload.Delivery
	if !d.Flow.Valid() {
		metrics.RecordJob(ctx, t.Type(), "invalid", time.Since(start))
		return fmt.Errorf("unknown flow %q: %w", d.Flow, asynq.SkipRetry)
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.String("flow.kind", string(d.Flow)),
		attribute.String("flow.delivery_id", d.ID),
	)

	if lag := time.Since(d.ScheduledAt.Add(d.Delay)); lag > time.Second {
		slog.WarnContext(ctx, "Delivery processed late", "flow", d.Flow, "delivery_id", d.ID, "lag", lag)
	}

	if err := flow.Deliver(ctx, p.store, d); err != nil {
		metrics.RecordJob(ctx, t.Type(), "failed", time.Since(start))
		return err
	}

	metrics.RecordJob(ctx, t.Type(), "success", time.Since(start))
	return nil
}
