package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/zatekoja/dentisalud-funnel"

// Metrics holds all application metrics
type Metrics struct {
	RequestCount      metric.Int64Counter
	RequestDuration   metric.Float64Histogram
	DBQueryDuration   metric.Float64Histogram
	CacheHitCount     metric.Int64Counter
	CacheMissCount    metric.Int64Counter
	LocatorSearches   metric.Int64Counter
	LocatorStale      metric.Int64Counter
	LeadNotifications metric.Int64Counter
	ImportedRows      metric.Int64Counter
}

// Setup initializes OpenTelemetry
func Setup(ctx context.Context, serviceName, serviceVersion, endpoint string) (func(context.Context) error, error) {
	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, err
	}

	traceExporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tracerProvider.Shutdown, nil
}

// InitMetrics initializes application metrics against the global meter provider
func InitMetrics() (*Metrics, error) {
	meter := otel.Meter(instrumentationName)
	m := &Metrics{}
	var err error

	if m.RequestCount, err = meter.Int64Counter("http.server.request.count",
		metric.WithDescription("Number of HTTP requests")); err != nil {
		return nil, err
	}
	if m.RequestDuration, err = meter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.DBQueryDuration, err = meter.Float64Histogram("db.query.duration",
		metric.WithDescription("Database query duration in milliseconds"),
		metric.WithUnit("ms")); err != nil {
		return nil, err
	}
	if m.CacheHitCount, err = meter.Int64Counter("cache.hit.count",
		metric.WithDescription("Number of cache hits")); err != nil {
		return nil, err
	}
	if m.CacheMissCount, err = meter.Int64Counter("cache.miss.count",
		metric.WithDescription("Number of cache misses")); err != nil {
		return nil, err
	}
	if m.LocatorSearches, err = meter.Int64Counter("locator.search.count",
		metric.WithDescription("Service point searches dispatched by locator sessions")); err != nil {
		return nil, err
	}
	if m.LocatorStale, err = meter.Int64Counter("locator.search.stale",
		metric.WithDescription("Search results discarded because a newer request superseded them")); err != nil {
		return nil, err
	}
	if m.LeadNotifications, err = meter.Int64Counter("lead.notification.count",
		metric.WithDescription("Lead notifications by channel and outcome")); err != nil {
		return nil, err
	}
	if m.ImportedRows, err = meter.Int64Counter("directory.import.rows",
		metric.WithDescription("Directory rows upserted by the bulk importer")); err != nil {
		return nil, err
	}

	return m, nil
}

// StartSpan starts a new trace span
func StartSpan(ctx context.Context, spanName string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, spanName)
}

// RecordError records an error in the current span
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
	}
}

// SetSpanAttributes sets attributes on a span
func SetSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	span.SetAttributes(attrs...)
}

// RecordRequestMetric records an HTTP request
func RecordRequestMetric(ctx context.Context, metrics *Metrics, method, path string, statusCode int, duration time.Duration) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", path),
		attribute.Int("http.status_code", statusCode),
	)
	metrics.RequestCount.Add(ctx, 1, attrs)
	metrics.RequestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordDBMetric records a database operation metric
func RecordDBMetric(ctx context.Context, metrics *Metrics, operation string, duration time.Duration) {
	if metrics == nil {
		return
	}
	metrics.DBQueryDuration.Record(ctx, float64(duration.Milliseconds()),
		metric.WithAttributes(attribute.String("db.operation", operation)))
}

// RecordCacheHit records a cache hit
func RecordCacheHit(ctx context.Context, metrics *Metrics, keyspace string) {
	if metrics == nil {
		return
	}
	metrics.CacheHitCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.keyspace", keyspace)))
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(ctx context.Context, metrics *Metrics, keyspace string) {
	if metrics == nil {
		return
	}
	metrics.CacheMissCount.Add(ctx, 1, metric.WithAttributes(attribute.String("cache.keyspace", keyspace)))
}

// RecordLocatorSearch records the outcome of one locator gateway call
func RecordLocatorSearch(ctx context.Context, metrics *Metrics, mode, outcome string) {
	if metrics == nil {
		return
	}
	metrics.LocatorSearches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("locator.mode", mode),
		attribute.String("locator.outcome", outcome),
	))
}

// RecordLocatorStale records a discarded search result
func RecordLocatorStale(ctx context.Context, metrics *Metrics) {
	if metrics == nil {
		return
	}
	metrics.LocatorStale.Add(ctx, 1)
}

// RecordLeadNotification records one channel delivery attempt
func RecordLeadNotification(ctx context.Context, metrics *Metrics, channel string, ok bool) {
	if metrics == nil {
		return
	}
	metrics.LeadNotifications.Add(ctx, 1, metric.WithAttributes(
		attribute.String("lead.channel", channel),
		attribute.Bool("lead.delivered", ok),
	))
}

// RecordImportedRows records rows written by one import batch
func RecordImportedRows(ctx context.Context, metrics *Metrics, n int) {
	if metrics == nil {
		return
	}
	metrics.ImportedRows.Add(ctx, int64(n))
}
