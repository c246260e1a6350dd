package worker

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
)

// NewServer creates a new Asynq server for processing deliveries.
func NewServer(redisURL string, concurrency int) (*asynq.Server, error) {
	opt, err := RedisConnOpt(redisURL)
	if err != nil {
		return nil, err
	}
	if concurrency <= 0 {
		concurrency = 10
	}

	return asynq.NewServer(
		opt,
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				QueueDeliveries: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, t *asynq.Task, err error) {
				retried, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				slog.ErrorContext(ctx, "Task failed", "type", t.Type(), "retry", retried, "max_retry", maxRetry, "error", err)
			}),
		},
	), nil
}

// NewServeMux registers the delivery handler behind the Sentry and OTel
// middlewares.
func NewServeMux(processor *DeliveryProcessor) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(SentryMiddleware)
	mux.Use(OTelMiddleware)
	mux.HandleFunc(TypeDeliverResult, processor.HandleDeliverResult)
	return mux
}
