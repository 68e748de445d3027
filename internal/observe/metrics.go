// Package observe provides observability primitives for Wayfarer:
// OpenTelemetry metrics for content ingestion, tracing helpers, trace-aware
// logging, and HTTP middleware for the admin endpoints.
//
// Metrics are recorded through the OpenTelemetry Metrics API. A Prometheus
// exporter bridge is available via [InitProvider] so they can be scraped
// from /metrics. A package-level default [Metrics] instance
// ([DefaultMetrics]) is provided for convenience; tests should use
// [NewMetrics] with their own [metric.MeterProvider] to avoid cross-test
// pollution.
package observe

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope name used for all Wayfarer metrics.
const meterName = "github.com/MrWong99/wayfarer"

// Metrics holds all OpenTelemetry metric instruments for the application.
// All fields are safe for concurrent use.
type Metrics struct {
	// --- Ingestion ---

	// IngestDuration tracks how long one package takes to ingest. Use with
	// attribute.String("origin_kind", "static"|"dynamic").
	IngestDuration metric.Float64Histogram

	// PackagesLoaded counts package loads. Use with attributes:
	//   attribute.String("origin_kind", ...), attribute.String("status", ...)
	PackagesLoaded metric.Int64Counter

	// EntitiesLoaded counts entities inserted into the graph. Use with
	// attribute.String("kind", ...).
	EntitiesLoaded metric.Int64Counter

	// RecordsRejected counts records a parser or repository refused. Use with
	// attributes attribute.String("kind", ...), attribute.String("reason", ...).
	RecordsRejected metric.Int64Counter

	// Diagnostics counts parser diagnostics. Use with
	// attribute.String("entity_type", ...).
	Diagnostics metric.Int64Counter

	// --- Validation ---

	// MissingReferences records the number of dangling references found by
	// each validation run. Use with attribute.String("list", ...).
	MissingReferences metric.Int64Gauge

	// --- Placement ---

	// PlacementsPending tracks placements awaiting materialization.
	PlacementsPending metric.Int64UpDownCounter

	// --- HTTP middleware ---

	// HTTPRequestDuration tracks HTTP request processing time. Use with attributes:
	//   attribute.String("method", ...), attribute.String("path", ...)
	HTTPRequestDuration metric.Float64Histogram
}

// ingestBuckets defines histogram bucket boundaries (in seconds) for
// package ingestion.
var ingestBuckets = []float64{
	0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5,
}

// NewMetrics creates a fully initialised [Metrics] struct using the given
// [metric.MeterProvider]. Returns an error if any instrument creation fails.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	var err error
	met := &Metrics{}

	if met.IngestDuration, err = m.Float64Histogram("wayfarer.ingest.duration",
		metric.WithDescription("Time to ingest one content package."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(ingestBuckets...),
	); err != nil {
		return nil, err
	}
	if met.PackagesLoaded, err = m.Int64Counter("wayfarer.ingest.packages",
		metric.WithDescription("Content packages processed by origin kind and status."),
	); err != nil {
		return nil, err
	}
	if met.EntitiesLoaded, err = m.Int64Counter("wayfarer.ingest.entities",
		metric.WithDescription("Entities inserted into the content graph by kind."),
	); err != nil {
		return nil, err
	}
	if met.RecordsRejected, err = m.Int64Counter("wayfarer.ingest.rejected",
		metric.WithDescription("Records rejected during ingestion by kind and reason."),
	); err != nil {
		return nil, err
	}
	if met.Diagnostics, err = m.Int64Counter("wayfarer.ingest.diagnostics",
		metric.WithDescription("Content diagnostics reported by parsers by entity type."),
	); err != nil {
		return nil, err
	}
	if met.MissingReferences, err = m.Int64Gauge("wayfarer.validation.missing_references",
		metric.WithDescription("Dangling references found by the last validation run."),
	); err != nil {
		return nil, err
	}
	if met.PlacementsPending, err = m.Int64UpDownCounter("wayfarer.placement.pending",
		metric.WithDescription("Placements waiting for their dependent content to be materialized."),
	); err != nil {
		return nil, err
	}
	if met.HTTPRequestDuration, err = m.Float64Histogram("wayfarer.http.request.duration",
		metric.WithDescription("HTTP request latency by method and path."),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// defaultMetrics is the lazily-initialised package-level Metrics instance.
var (
	defaultMetrics     *Metrics
	defaultMetricsOnce sync.Once
)

// DefaultMetrics returns the package-level [Metrics] instance, creating it on
// first call using [otel.GetMeterProvider]. Panics if instrument creation
// fails.
func DefaultMetrics() *Metrics {
	defaultMetricsOnce.Do(func() {
		var err error
		defaultMetrics, err = NewMetrics(otel.GetMeterProvider())
		if err != nil {
			panic("observe: failed to create default metrics: " + err.Error())
		}
	})
	return defaultMetrics
}

// Attr is a convenience alias for [attribute.String].
func Attr(key, value string) attribute.KeyValue {
	return attribute.String(key, value)
}

// OriginKind labels a load as "static" or "dynamic".
func OriginKind(dynamic bool) string {
	if dynamic {
		return "dynamic"
	}
	return "static"
}

// RecordPackage records one processed package with its outcome.
func (m *Metrics) RecordPackage(ctx context.Context, dynamic bool, status string, seconds float64) {
	kind := attribute.String("origin_kind", OriginKind(dynamic))
	m.PackagesLoaded.Add(ctx, 1, metric.WithAttributes(kind, attribute.String("status", status)))
	m.IngestDuration.Record(ctx, seconds, metric.WithAttributes(kind))
}

// RecordEntities adds n inserted entities of kind.
func (m *Metrics) RecordEntities(ctx context.Context, kind string, n int) {
	if n <= 0 {
		return
	}
	m.EntitiesLoaded.Add(ctx, int64(n), metric.WithAttributes(attribute.String("kind", kind)))
}

// RecordRejected records one rejected record.
func (m *Metrics) RecordRejected(ctx context.Context, kind, reason string) {
	m.RecordsRejected.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("kind", kind),
			attribute.String("reason", reason),
		),
	)
}

// RecordDiagnostic records one parser diagnostic.
func (m *Metrics) RecordDiagnostic(ctx context.Context, entityType string) {
	m.Diagnostics.Add(ctx, 1, metric.WithAttributes(attribute.String("entity_type", entityType)))
}

// RecordValidation records the missing-reference counts of a validation run.
func (m *Metrics) RecordValidation(ctx context.Context, missingLocations, missingConnections int) {
	m.MissingReferences.Record(ctx, int64(missingLocations), metric.WithAttributes(attribute.String("list", "locations")))
	m.MissingReferences.Record(ctx, int64(missingConnections), metric.WithAttributes(attribute.String("list", "connected_locations")))
}
