package worker

import (
	"context"
	"strings"

	"github.com/hibiken/asynq"
)

// RedisConnOpt turns a Redis URL into asynq connection options. Besides the
// URI schemes asynq understands, a bare host:port is accepted.
func RedisConnOpt(redisURL string) (asynq.RedisConnOpt, error) {
	if !strings.Contains(redisURL, "://") {
		return asynq.RedisClientOpt{Addr: redisURL}, nil
	}
	return asynq.ParseRedisURI(redisURL)
}

// Enqueuer is the subset of *asynq.Client the dispatcher needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// NewClient creates an asynq client for scheduling deliveries.
func NewClient(redisURL string) (*asynq.Client, error) {
	opt, err := RedisConnOpt(redisURL)
	if err != nil {
		return nil, err
	}
	return asynq.NewClient(opt), nil
}
