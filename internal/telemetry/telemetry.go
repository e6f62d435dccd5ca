// Package telemetry initializes OpenTelemetry tracing and metrics for
// the batch and query operations of cathexisd.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Shutdown releases the exporters configured by Init.
type Shutdown func(ctx context.Context) error

// Init configures the global tracer and meter providers. If endpoint
// is empty, OTEL is disabled and Init returns a no-op shutdown — the
// engine itself never requires telemetry to be configured.
func Init(ctx context.Context, endpoint, serviceName, version string, insecure bool) (Shutdown, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create resource: %w", err)
	}

	traceOpts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if insecure {
		traceOpts = append(traceOpts, otlptracehttp.WithInsecure())
	}
	traceExp, err := otlptracehttp.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	metricOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		metricOpts = append(metricOpts, otlpmetrichttp.WithInsecure())
	}
	metricExp, err := otlpmetrichttp.New(ctx, metricOpts...)
	if err != nil {
		return nil, fmt.Errorf("telemetry: create metric exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(15*time.Second))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	shutdown := func(ctx context.Context) error {
		var firstErr error
		if err := tp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := mp.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		return firstErr
	}
	return shutdown, nil
}

// Tracer returns the global tracer for the given instrumentation scope.
func Tracer(name string) trace.Tracer {
	return otel.GetTracerProvider().Tracer(name)
}

// Meter returns the global meter for the given instrumentation scope.
func Meter(name string) metric.Meter {
	return otel.GetMeterProvider().Meter(name)
}

// BatchInstruments are the metrics recorded around each RunBatch call.
type BatchInstruments struct {
	size     metric.Int64Histogram
	driftLog metric.Int64Counter
	latency  metric.Float64Histogram
}

// NewBatchInstruments registers the batch-path instruments on the
// given meter.
func NewBatchInstruments(m metric.Meter) (BatchInstruments, error) {
	size, err := m.Int64Histogram("cathexis.batch.size", metric.WithDescription("number of agents processed per batch"))
	if err != nil {
		return BatchInstruments{}, fmt.Errorf("telemetry: create batch size histogram: %w", err)
	}
	driftLog, err := m.Int64Counter("cathexis.batch.relabels", metric.WithDescription("number of categories relabeled per batch"))
	if err != nil {
		return BatchInstruments{}, fmt.Errorf("telemetry: create relabel counter: %w", err)
	}
	latency, err := m.Float64Histogram("cathexis.batch.latency_ms", metric.WithDescription("wall-clock duration of a batch run in milliseconds"))
	if err != nil {
		return BatchInstruments{}, fmt.Errorf("telemetry: create batch latency histogram: %w", err)
	}
	return BatchInstruments{size: size, driftLog: driftLog, latency: latency}, nil
}

// RecordBatch records one batch run's size, relabel count, and
// duration.
func (b BatchInstruments) RecordBatch(ctx context.Context, agentCount, relabelCount int, duration time.Duration) {
	b.size.Record(ctx, int64(agentCount))
	b.driftLog.Add(ctx, int64(relabelCount))
	b.latency.Record(ctx, float64(duration.Milliseconds()))
}
