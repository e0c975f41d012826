// Package telemetry provides OpenTelemetry instrumentation for the
// veracity service. It exports Prometheus metrics and provides tracing
// capabilities.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "veracity"

// Request outcome labels.
const (
	OutcomeDone     = "done"
	OutcomeCacheHit = "cache_hit"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Pipeline stage labels.
const (
	StageNormalize = "normalize"
	StageClassify  = "classify"
	StageCrossref  = "crossref"
	StageExplain   = "explain"
	StageAggregate = "aggregate"
)

// Metrics holds all veracity Prometheus metrics
type Metrics struct {
	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	StageDuration   *prometheus.HistogramVec

	// Verdict metrics
	VerdictLabelTotal *prometheus.CounterVec
	AbsentSignals     *prometheus.CounterVec

	// Provider metrics
	ProviderRequests *prometheus.CounterVec
	ProviderLatency  *prometheus.HistogramVec

	// Cache metrics
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	CacheEvictions prometheus.Counter
	CacheEntries   prometheus.Gauge
}

// Provider wraps telemetry providers
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics
}

// NewProvider initializes telemetry with Prometheus metrics
func NewProvider() *Provider {
	return &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(),
	}
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint
func (p *Provider) Handler() http.Handler {
	return promhttp.Handler()
}

func initMetrics() *Metrics {
	m := &Metrics{}
	initRequestMetrics(m)
	initVerdictMetrics(m)
	initProviderMetrics(m)
	initCacheMetrics(m)
	return m
}

func initRequestMetrics(m *Metrics) {
	m.RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veracity_requests_total",
		Help: "Total analysis requests by outcome (done, cache_hit, rejected, failed)",
	}, []string{"outcome"})

	m.RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "veracity_request_duration_seconds",
		Help:    "End-to-end time to produce a verdict",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 20.0},
	})

	m.StageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "veracity_stage_duration_seconds",
		Help:    "Time spent per pipeline stage",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0},
	}, []string{"stage"})
}

func initVerdictMetrics(m *Metrics) {
	m.VerdictLabelTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veracity_verdict_label_total",
		Help: "Verdicts produced by predicted label",
	}, []string{"label"})

	m.AbsentSignals = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veracity_absent_signals_total",
		Help: "Optional signals that came back absent, by signal and reason",
	}, []string{"signal", "reason"})
}

func initProviderMetrics(m *Metrics) {
	m.ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "veracity_provider_requests_total",
		Help: "External provider calls by provider and outcome",
	}, []string{"provider", "outcome"})

	m.ProviderLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "veracity_provider_latency_seconds",
		Help:    "External provider call latency",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 4.0, 8.0, 15.0},
	}, []string{"provider"})
}

func initCacheMetrics(m *Metrics) {
	m.CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veracity_cache_hits_total",
		Help: "Verdicts served from the fingerprint cache",
	})

	m.CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veracity_cache_misses_total",
		Help: "Fingerprint lookups that missed",
	})

	m.CacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "veracity_cache_evictions_total",
		Help: "Cached verdicts evicted by size pressure",
	})

	m.CacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "veracity_cache_entries",
		Help: "Verdicts currently cached",
	})
}

// RecordRequest records one finished analysis request.
func (p *Provider) RecordRequest(outcome string, duration time.Duration) {
	p.Metrics.RequestsTotal.WithLabelValues(outcome).Inc()
	p.Metrics.RequestDuration.Observe(duration.Seconds())
}

// RecordStage records time spent in one pipeline stage.
func (p *Provider) RecordStage(stage string, duration time.Duration) {
	p.Metrics.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordVerdictLabel increments the label distribution counter.
func (p *Provider) RecordVerdictLabel(label string) {
	if label == "" {
		label = "unknown"
	}
	p.Metrics.VerdictLabelTotal.WithLabelValues(label).Inc()
}

// RecordAbsentSignal records an optional signal that was not produced.
func (p *Provider) RecordAbsentSignal(signal, reason string) {
	p.Metrics.AbsentSignals.WithLabelValues(signal, reason).Inc()
}

// RecordProviderCall records one external provider call.
func (p *Provider) RecordProviderCall(provider, outcome string, latency time.Duration) {
	p.Metrics.ProviderRequests.WithLabelValues(provider, outcome).Inc()
	p.Metrics.ProviderLatency.WithLabelValues(provider).Observe(latency.Seconds())
}

// RecordCacheHit counts a verdict served from cache.
func (p *Provider) RecordCacheHit() {
	p.Metrics.CacheHits.Inc()
}

// RecordCacheMiss counts a fingerprint lookup that missed.
func (p *Provider) RecordCacheMiss() {
	p.Metrics.CacheMisses.Inc()
}

// RecordCacheEviction counts an entry evicted by size pressure.
func (p *Provider) RecordCacheEviction() {
	p.Metrics.CacheEvictions.Inc()
}

// SetCacheEntries sets the current cache size gauge.
func (p *Provider) SetCacheEntries(n int) {
	p.Metrics.CacheEntries.Set(float64(n))
}

// StartSpan starts a new trace span.
// The caller is responsible for ending the span with span.End().
//
//nolint:spancheck // Caller is responsible for ending the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
	return ctx, span
}
