// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the analyzer service.
package telemetry

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "analyzer"

// Metrics holds the analyzer's Prometheus metrics.
type Metrics struct {
	DocumentsProcessed  *prometheus.CounterVec
	StageDuration       *prometheus.HistogramVec
	StageDegraded       *prometheus.CounterVec
	Availability        *prometheus.GaugeVec
	TranslationsSkipped prometheus.Counter
}

// Provider wraps the tracer and metrics.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

var (
	metricsOnce   sync.Once
	sharedMetrics *Metrics
)

// NewProvider initializes telemetry. Metrics register once per process; a
// second provider shares the same collectors.
func NewProvider() *Provider {
	metricsOnce.Do(func() {
		sharedMetrics = initMetrics()
	})
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: sharedMetrics,
	}
}

// Handler returns the Prometheus handler for the /metrics endpoint.
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	return &Metrics{
		DocumentsProcessed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_documents_processed_total",
			Help: "Documents run through the pipeline, by overall status",
		}, []string{"status"}),
		StageDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analyzer_stage_duration_seconds",
			Help:    "Wall time per pipeline stage",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"stage", "implementation"}),
		StageDegraded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "analyzer_stage_degraded_total",
			Help: "Stage invocations that fell back to a neutral output",
		}, []string{"stage", "error_tag"}),
		Availability: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "analyzer_implementation_available",
			Help: "1 if the implementation's last probe succeeded",
		}, []string{"stage", "implementation"}),
		TranslationsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "analyzer_translations_skipped_total",
			Help: "Documents already in English that took the identity path",
		}),
	}
}

// RecordDocument counts one finished pipeline run.
func (p *Provider) RecordDocument(status string) {
	if p == nil {
		return
	}
	p.Metrics.DocumentsProcessed.WithLabelValues(status).Inc()
}

// RecordStage records one stage invocation.
func (p *Provider) RecordStage(stage, implementation string, d time.Duration, degraded bool, errorTag string) {
	if p == nil {
		return
	}
	p.Metrics.StageDuration.WithLabelValues(stage, implementation).Observe(d.Seconds())
	if degraded {
		if errorTag == "" {
			errorTag = "unavailable"
		}
		p.Metrics.StageDegraded.WithLabelValues(stage, errorTag).Inc()
	}
}

// SetAvailability publishes a probe result.
func (p *Provider) SetAvailability(stage, implementation string, available bool) {
	if p == nil {
		return
	}
	v := 0.0
	if available {
		v = 1.0
	}
	p.Metrics.Availability.WithLabelValues(stage, implementation).Set(v)
}

// RecordTranslationSkipped counts one identity translation.
func (p *Provider) RecordTranslationSkipped() {
	if p == nil {
		return
	}
	p.Metrics.TranslationsSkipped.Inc()
}

// StartStageSpan opens a trace span for one stage invocation.
func (p *Provider) StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	if p == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.Tracer.Start(ctx, "pipeline."+stage,
		trace.WithAttributes(attribute.String("pipeline.stage", stage)))
}
