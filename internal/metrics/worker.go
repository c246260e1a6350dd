package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	workerMeter = otel.Meter("cocktail-studio/worker")

	WorkerJobsTotal   metric.Int64Counter
	WorkerJobDuration metric.Float64Histogram
)

// InitWorker creates the queue worker instruments.
func InitWorker() error {
	var err error

	WorkerJobsTotal, err = workerMeter.Int64Counter(
		"worker.jobs.total",
		metric.WithDescription("Total number of queue tasks processed"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	WorkerJobDuration, err = workerMeter.Float64Histogram(
		"worker.job.duration",
		metric.WithDescription("Time spent handling one queue task"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(1, 5, 10, 25, 50, 100, 250),
	)
	return err
}

// RecordJob records one processed task with its outcome.
func RecordJob(ctx context.Context, taskType, status string, took time.Duration) {
	typeAttr := attribute.String("task.type", taskType)

	if WorkerJobsTotal != nil {
		WorkerJobsTotal.Add(ctx, 1, metric.WithAttributes(typeAttr, attribute.String("status", status)))
	}
	if WorkerJobDuration != nil {
		WorkerJobDuration.Record(ctx, float64(took.Microseconds())/1000, metric.WithAttributes(typeAttr))
	}
}
