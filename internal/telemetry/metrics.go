package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/tutorcontrol"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Website metrics
	PageRendersTotal   metric.Int64Counter
	PageNotFoundTotal  metric.Int64Counter
	PageRenderDuration metric.Float64Histogram
	AssetRebuildsTotal metric.Int64Counter

	// Journal metrics
	JournalGeneratedTotal   metric.Int64Counter
	JournalRecommendedTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.PageRendersTotal, _ = meter.Int64Counter(
		"tutorcontrol.pages.rendered.total",
		metric.WithDescription("Total number of page shells rendered, by component"),
		metric.WithUnit("{page}"),
	)

	m.PageNotFoundTotal, _ = meter.Int64Counter(
		"tutorcontrol.pages.not_found.total",
		metric.WithDescription("Total number of requests that matched no route"),
		metric.WithUnit("{page}"),
	)

	m.PageRenderDuration, _ = meter.Float64Histogram(
		"tutorcontrol.pages.render.duration",
		metric.WithDescription("Duration of page shell rendering"),
		metric.WithUnit("ms"),
	)

	m.AssetRebuildsTotal, _ = meter.Int64Counter(
		"tutorcontrol.assets.rebuilds.total",
		metric.WithDescription("Total number of asset bundle builds"),
		metric.WithUnit("{build}"),
	)

	m.JournalGeneratedTotal, _ = meter.Int64Counter(
		"tutorcontrol.journal.generated.total",
		metric.WithDescription("Total number of journal entries generated"),
		metric.WithUnit("{entry}"),
	)

	m.JournalRecommendedTotal, _ = meter.Int64Counter(
		"tutorcontrol.journal.recommended_lessons.total",
		metric.WithDescription("Total number of lessons recommended by generated journal entries"),
		metric.WithUnit("{lesson}"),
	)

	return m
}
