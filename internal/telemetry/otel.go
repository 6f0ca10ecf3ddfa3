// Package telemetry records OpenTelemetry traces and metrics for flag
// evaluations. Everything here is a no-op unless the host application
// installs tracer and meter providers.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const (
	meterName  = "gofeatureflag"
	tracerName = "gofeatureflag"
)

// OTelProvider implements evaluation telemetry using OpenTelemetry
type OTelProvider struct {
	tracer trace.Tracer
	meter  metric.Meter

	// Metrics
	evaluations      metric.Int64Counter
	evaluationErrors metric.Int64Counter
	requestDuration  metric.Float64Histogram
}

// NewOTel creates a new OpenTelemetry provider
func NewOTel() (*OTelProvider, error) {
	provider := &OTelProvider{
		tracer: otel.Tracer(tracerName),
		meter:  otel.Meter(meterName),
	}

	if err := provider.initMetrics(); err != nil {
		return nil, err
	}

	return provider, nil
}

// initMetrics initializes all metrics
func (o *OTelProvider) initMetrics() error {
	var err error

	o.evaluations, err = o.meter.Int64Counter(
		"gofeatureflag.evaluations",
		metric.WithDescription("Number of flag evaluations"),
	)
	if err != nil {
		return err
	}

	o.evaluationErrors, err = o.meter.Int64Counter(
		"gofeatureflag.evaluation.errors",
		metric.WithDescription("Number of flag evaluations resolved to the default value because of an error"),
	)
	if err != nil {
		return err
	}

	o.requestDuration, err = o.meter.Float64Histogram(
		"gofeatureflag.request.duration",
		metric.WithDescription("Duration of relay proxy evaluation requests"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return err
	}

	return nil
}

// StartEvaluation opens a span covering one flag evaluation.
func (o *OTelProvider) StartEvaluation(ctx context.Context, flagKey, flagType string) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, "gofeatureflag.evaluation",
		trace.WithAttributes(
			attribute.String("feature_flag.key", flagKey),
			attribute.String("feature_flag.value_type", flagType),
		))
}

// RecordEvaluation records a completed flag evaluation
func (o *OTelProvider) RecordEvaluation(ctx context.Context, flagKey, reason string, duration time.Duration) {
	o.evaluations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("feature_flag.key", flagKey),
		attribute.String("feature_flag.reason", reason),
	))
	o.requestDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(
		attribute.String("feature_flag.key", flagKey),
	))
}

// RecordError records an evaluation that degraded to the default value
func (o *OTelProvider) RecordError(ctx context.Context, flagKey, errorCode string) {
	o.evaluationErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("feature_flag.key", flagKey),
		attribute.String("feature_flag.error_code", errorCode),
	))
}
