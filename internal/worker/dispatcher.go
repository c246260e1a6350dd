package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/socialchef/cocktail-studio/internal/flow"
	"github.com/socialchef/cocktail-studio/internal/utils"
)

const (
	defaultMaxRetry  = 3
	defaultRetention = 10 * time.Minute
)

// Dispatcher schedules deliveries as delayed asynq tasks. The worker
// process writes them into the shared store once the delay has elapsed.
type Dispatcher struct {
	client    Enqueuer
	maxRetry  int
	retention time.Duration
	retry     utils.RetryConfig
}

// DispatcherOption customizes a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithMaxRetry sets how often the worker retries a failed delivery.
func WithMaxRetry(n int) DispatcherOption {
	return func(d *Dispatcher) { d.maxRetry = n }
}

// WithEnqueueRetry overrides the retry policy used while enqueueing.
func WithEnqueueRetry(cfg utils.RetryConfig) DispatcherOption {
	return func(d *Dispatcher) { d.retry = cfg }
}

// NewDispatcher creates a queue-backed dispatcher.
func NewDispatcher(client Enqueuer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		client:    client,
		maxRetry:  defaultMaxRetry,
		retention: defaultRetention,
		retry:     utils.EnqueueRetryConfig(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var _ flow.Dispatcher = (*Dispatcher)(nil)

// Dispatch enqueues d to be processed after d.Delay. The delivery ID doubles
// as the task ID, so a retried enqueue that already landed is not duplicated.
func (d *Dispatcher) Dispatch(ctx context.Context, del flow.Delivery) error {
	task, err := NewDeliverResultTask(del)
	if err != nil {
		return fmt.Errorf("failed to encode delivery task: %w", err)
	}

	info, err := utils.WithRetry(ctx, func(ctx context.Context) (*asynq.TaskInfo, error) {
		return d.client.EnqueueContext(ctx, task,
			asynq.ProcessIn(del.Delay),
			asynq.TaskID(del.ID),
			asynq.MaxRetry(d.maxRetry),
			asynq.Queue(QueueDeliveries),
			asynq.Retention(d.retention),
		)
	}, d.retry)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		slog.DebugContext(ctx, "Delivery already enqueued", "flow", del.Flow, "delivery_id", del.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue %s delivery: %w", del.Flow, err)
	}

	slog.DebugContext(ctx, "Delivery enqueued", "flow", del.Flow, "task_id", info.ID, "queue", info.Queue, "delay", del.Delay)
	return nil
}
