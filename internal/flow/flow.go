package flow

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/socialchef/cocktail-studio/internal/errors"
	"github.com/socialchef/cocktail-studio/internal/logger"
	"github.com/socialchef/cocktail-studio/internal/metrics"
	"github.com/socialchef/cocktail-studio/internal/telemetry"
	"github.com/socialchef/cocktail-studio/internal/validation"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// ComputeFunc builds a flow's payload from already sanitized input.
type ComputeFunc[T any] func(ctx context.Context, safe string) (T, error)

// Config describes one flow.
type Config[T any] struct {
	Kind    Kind
	Window  Window
	Compute ComputeFunc[T]
	// Initial is reported as the result before the first delivery.
	Initial T
}

// State is the decoded view of a flow's slot.
type State[T any] struct {
	Flow       Kind       `json:"flow"`
	Loading    bool       `json:"loading"`
	Result     T          `json:"result"`
	HasResult  bool       `json:"has_result"`
	DeliveryID string     `json:"delivery_id,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

// Flow is one input -> delay -> result cycle with a typed payload.
type Flow[T any] struct {
	cfg        Config[T]
	store      Store
	dispatcher Dispatcher
	delays     DelaySource
	now        func() time.Time
}

// New creates a flow backed by store and dispatcher. A nil delays falls back
// to UniformDelay.
func New[T any](cfg Config[T], store Store, dispatcher Dispatcher, delays DelaySource) *Flow[T] {
	if delays == nil {
		delays = UniformDelay{}
	}
	return &Flow[T]{
		cfg:        cfg,
		store:      store,
		dispatcher: dispatcher,
		delays:     delays,
		now:        time.Now,
	}
}

// Kind returns the flow's name.
func (f *Flow[T]) Kind() Kind {
	return f.cfg.Kind
}

// Window returns the latency window deliveries are drawn from.
func (f *Flow[T]) Window() Window {
	return f.cfg.Window
}

// Trigger starts a request for input. It returns false without touching any
// state when the sanitized input is empty. Otherwise the payload is computed
// immediately, the flow is marked pending and a delivery is scheduled.
func (f *Flow[T]) Trigger(ctx context.Context, input string) (bool, error) {
	safe := validation.Sanitize(input)
	if safe == "" {
		metrics.RecordTrigger(ctx, string(f.cfg.Kind), false)
		return false, nil
	}

	ctx, span := telemetry.Tracer("flow").Start(ctx, fmt.Sprintf("flow:%s", f.cfg.Kind))
	defer span.End()

	payload, err := f.cfg.Compute(ctx, safe)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return false, apperrors.NewInternalError("failed to compute payload", "COMPUTE_FAILED", err)
	}

	data, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		return false, apperrors.NewInternalError("failed to encode payload", "ENCODE_FAILED", err)
	}

	if err := f.store.MarkPending(ctx, f.cfg.Kind); err != nil {
		span.RecordError(err)
		return false, apperrors.NewStoreError("failed to mark flow pending", "STORE_WRITE_FAILED", err)
	}

	d := Delivery{
		ID:          uuid.New().String(),
		Flow:        f.cfg.Kind,
		Payload:     data,
		Delay:       f.delays.Next(f.cfg.Window),
		ScheduledAt: f.now(),
	}

	span.SetAttributes(
		attribute.String("flow.kind", string(d.Flow)),
		attribute.String("flow.delivery_id", d.ID),
		attribute.Int64("flow.delay_ms", d.Delay.Milliseconds()),
	)

	if err := f.dispatcher.Dispatch(ctx, d); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if clearErr := f.store.ClearPending(ctx, f.cfg.Kind); clearErr != nil {
			slog.Error("Failed to clear pending flag", "flow", f.cfg.Kind, "error", clearErr)
		}
		return false, apperrors.NewDispatchError("failed to schedule delivery", "DISPATCH_FAILED", err)
	}

	metrics.RecordTrigger(ctx, string(f.cfg.Kind), true)
	slog.InfoContext(ctx, "Flow triggered",
		"flow", d.Flow,
		"delivery_id", d.ID,
		"delay_ms", d.Delay.Milliseconds(),
		logger.WithTraceContext(ctx),
	)

	return true, nil
}

// Snapshot returns the flow's current state.
func (f *Flow[T]) Snapshot(ctx context.Context) (State[T], error) {
	slot, err := f.store.Load(ctx, f.cfg.Kind)
	if err != nil {
		return State[T]{}, apperrors.NewStoreError("failed to load flow state", "STORE_READ_FAILED", err)
	}

	state := State[T]{
		Flow:       f.cfg.Kind,
		Loading:    slot.Loading,
		Result:     f.cfg.Initial,
		DeliveryID: slot.DeliveryID,
	}
	if !slot.UpdatedAt.IsZero() {
		updated := slot.UpdatedAt
		state.UpdatedAt = &updated
	}
	if slot.Result == nil {
		return state, nil
	}

	var result T
	if err := json.Unmarshal(slot.Result, &result); err != nil {
		return State[T]{}, apperrors.NewInternalError("failed to decode flow result", "DECODE_FAILED", err)
	}
	state.Result = result
	state.HasResult = true
	return state, nil
}

// Deliver writes d into store and records the outcome. Dispatchers call it
// once the delay has elapsed.
func Deliver(ctx context.Context, store Store, d Delivery) error {
	err := store.Deliver(ctx, d)
	metrics.RecordDelivery(ctx, string(d.Flow), d.Delay, err)
	if err != nil {
		slog.ErrorContext(ctx, "Flow delivery failed", "flow", d.Flow, "delivery_id", d.ID, "error", err)
		return fmt.Errorf("failed to deliver %s result: %w", d.Flow, err)
	}
	slog.InfoContext(ctx, "Flow delivered", "flow", d.Flow, "delivery_id", d.ID)
	return nil
}
