// Package telemetry provides OpenTelemetry initialization and helpers
// for tracing, logs and metrics across the Cocktail Studio services.
//
// The package configures OTLP HTTP export, with support for Grafana Cloud,
// Better Stack and local collector backends.
package telemetry
