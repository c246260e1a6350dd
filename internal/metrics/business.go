package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	meter = otel.Meter("cocktail-studio/business")

	// Flow metrics
	FlowTriggersTotal   metric.Int64Counter
	FlowDeliveriesTotal metric.Int64Counter
	FlowDeliveryDelay   metric.Float64Histogram

	// Tab navigation metrics
	TabSwitchesTotal metric.Int64Counter
)

func Init() error {
	var err error

	// Flow metrics
	FlowTriggersTotal, err = meter.Int64Counter(
		"flow.triggers.total",
		metric.WithDescription("Total number of flow triggers, including empty-input no-ops"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	FlowDeliveriesTotal, err = meter.Int64Counter(
		"flow.deliveries.total",
		metric.WithDescription("Total number of delivered flow results"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	FlowDeliveryDelay, err = meter.Float64Histogram(
		"flow.delivery.delay",
		metric.WithDescription("Simulated latency applied before a result is delivered"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.5, 0.7, 0.8, 1, 1.2, 1.4, 2),
	)
	if err != nil {
		return err
	}

	// Tab navigation metrics
	TabSwitchesTotal, err = meter.Int64Counter(
		"studio.tab.switches.total",
		metric.WithDescription("Total number of active tab changes"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return err
	}

	return nil
}

// RecordTrigger counts a trigger. triggered is false for empty-input no-ops.
func RecordTrigger(ctx context.Context, flow string, triggered bool) {
	if FlowTriggersTotal == nil {
		return
	}
	FlowTriggersTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("flow", flow),
		attribute.Bool("triggered", triggered),
	))
}

// RecordDelivery counts a delivery and its simulated delay.
func RecordDelivery(ctx context.Context, flow string, delay time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	if FlowDeliveriesTotal != nil {
		FlowDeliveriesTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("flow", flow),
			attribute.String("status", status),
		))
	}
	if FlowDeliveryDelay != nil {
		FlowDeliveryDelay.Record(ctx, delay.Seconds(), metric.WithAttributes(
			attribute.String("flow", flow),
		))
	}
}

// RecordTabSwitch counts a change of the active tab.
func RecordTabSwitch(ctx context.Context, tab string) {
	if TabSwitchesTotal == nil {
		return
	}
	TabSwitchesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("tab", tab)))
}
