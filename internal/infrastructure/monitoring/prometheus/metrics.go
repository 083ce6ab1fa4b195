package prometheus

import (
	"strconv"
	"time"
)

// Default bucket sets.
var (
	DefaultHTTPDurationBuckets   = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
	DefaultRenderDurationBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1}
	DefaultUploadSizeBuckets     = []float64{64, 256, 512, 1024, 2048, 3072, 4096, 5120}
	DefaultSessionOpBuckets      = []float64{.0001, .0005, .001, .0025, .005, .01, .025, .05, .1}
)

// Upload outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeInvalid  = "invalid_line"
	OutcomeTooLarge = "too_large"
)

// Hover outcomes.
const (
	HoverRendered = "rendered"
	HoverEmpty    = "empty"
	HoverFailed   = "failed"
	HoverStale    = "stale"
)

// AppMetrics is the set of metric families MolScope records.
type AppMetrics struct {
	HTTPRequestsTotal   CounterVec   // method, path, status
	HTTPRequestDuration HistogramVec // method, path
	HTTPActiveRequests  GaugeVec     // (none)

	UploadsTotal      CounterVec   // outcome
	UploadSize        HistogramVec // (none)
	MoleculesIngested CounterVec   // (none)
	IngestDuration    HistogramVec // (none)

	HoverRequestsTotal CounterVec   // outcome
	RenderDuration     HistogramVec // kind: molecule | scatter
	RateLimitedTotal   CounterVec   // route

	SessionOpsTotal    CounterVec   // backend, op, result
	SessionOpDuration  HistogramVec // backend, op
	ActiveSessions     GaugeVec     // backend
	ConfigReloadsTotal CounterVec   // result

	ErrorsTotal CounterVec // component, code
}

// NewAppMetrics registers every family on collector.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Requests currently in flight")

	m.UploadsTotal = collector.RegisterCounter("uploads_total", "SMILES file uploads by outcome", "outcome")
	m.UploadSize = collector.RegisterHistogram("upload_size_bytes", "Size of accepted upload files", DefaultUploadSizeBuckets)
	m.MoleculesIngested = collector.RegisterCounter("molecules_ingested_total", "Molecules added to session tables")
	m.IngestDuration = collector.RegisterHistogram("ingest_duration_seconds", "Time to validate and describe one file", DefaultRenderDurationBuckets)

	m.HoverRequestsTotal = collector.RegisterCounter("hover_requests_total", "Hover callbacks by outcome", "outcome")
	m.RenderDuration = collector.RegisterHistogram("render_duration_seconds", "Image rendering duration", DefaultRenderDurationBuckets, "kind")
	m.RateLimitedTotal = collector.RegisterCounter("rate_limited_total", "Requests rejected by the rate limiter", "route")

	m.SessionOpsTotal = collector.RegisterCounter("session_ops_total", "Session store operations", "backend", "op", "result")
	m.SessionOpDuration = collector.RegisterHistogram("session_op_duration_seconds", "Session store operation duration", DefaultSessionOpBuckets, "backend", "op")
	m.ActiveSessions = collector.RegisterGauge("active_sessions", "Sessions held by the store", "backend")
	m.ConfigReloadsTotal = collector.RegisterCounter("config_reloads_total", "Configuration hot reloads", "result")

	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Errors by component and code", "component", "code")

	return m
}

// NewNoopAppMetrics returns AppMetrics that record nothing.
func NewNoopAppMetrics() *AppMetrics { return NewAppMetrics(NewNoopCollector()) }

// RecordHTTPRequest counts one finished request.
func (m *AppMetrics) RecordHTTPRequest(method, path string, status int, d time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}

// RecordUpload counts an upload and, when accepted, its size and molecule count.
func (m *AppMetrics) RecordUpload(outcome string, size int64, molecules int) {
	m.UploadsTotal.WithLabelValues(outcome).Inc()
	if outcome == OutcomeAccepted {
		m.UploadSize.WithLabelValues().Observe(float64(size))
		m.MoleculesIngested.WithLabelValues().Add(float64(molecules))
	}
}

func (m *AppMetrics) RecordHover(outcome string) {
	m.HoverRequestsTotal.WithLabelValues(outcome).Inc()
}

// RecordSessionOp counts a store operation and its latency.
func (m *AppMetrics) RecordSessionOp(backend, op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SessionOpsTotal.WithLabelValues(backend, op, result).Inc()
	m.SessionOpDuration.WithLabelValues(backend, op).Observe(d.Seconds())
}

func (m *AppMetrics) RecordError(component, code string) {
	m.ErrorsTotal.WithLabelValues(component, code).Inc()
}
