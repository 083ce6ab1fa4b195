package prometheus

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	c := newTestCollector(t)
	return NewAppMetrics(c), c
}

func TestNewAppMetrics_AllFamiliesRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)
	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.UploadsTotal)
	assert.NotNil(t, m.HoverRequestsTotal)
	assert.NotNil(t, m.RenderDuration)
	assert.NotNil(t, m.SessionOpsTotal)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestNewAppMetrics_TwiceOnSameCollector(t *testing.T) {
	c := newTestCollector(t)
	a := NewAppMetrics(c)
	b := NewAppMetrics(c)
	a.RecordHover(HoverRendered)
	b.RecordHover(HoverRendered)
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_hover_requests_total{outcome="rendered"} 2`)
}

func TestRecordHTTPRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)
	m.RecordHTTPRequest(http.MethodPost, "/", http.StatusFound, 30*time.Millisecond)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_http_requests_total{method="POST",path="/",status="302"} 1`)
	assert.Contains(t, out, `test_unit_http_request_duration_seconds_count{method="POST",path="/"} 1`)
}

func TestRecordUpload_Accepted(t *testing.T) {
	m, c := newTestAppMetrics(t)
	m.RecordUpload(OutcomeAccepted, 900, 12)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_uploads_total{outcome="accepted"} 1`)
	assert.Contains(t, out, "test_unit_molecules_ingested_total 12")
	assert.Contains(t, out, "test_unit_upload_size_bytes_count 1")
}

func TestRecordUpload_RejectedSkipsSize(t *testing.T) {
	m, c := newTestAppMetrics(t)
	m.RecordUpload(OutcomeInvalid, 900, 0)

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_uploads_total{outcome="invalid_line"} 1`)
	assert.NotContains(t, out, "test_unit_upload_size_bytes_count 1")
}

func TestRecordSessionOp(t *testing.T) {
	m, c := newTestAppMetrics(t)
	m.RecordSessionOp("redis", "load", time.Millisecond, nil)
	m.RecordSessionOp("redis", "load", time.Millisecond, errors.New("down"))

	out := scrapeMetrics(t, c)
	assert.Contains(t, out, `test_unit_session_ops_total{backend="redis",op="load",result="ok"} 1`)
	assert.Contains(t, out, `test_unit_session_ops_total{backend="redis",op="load",result="error"} 1`)
}

func TestRecordError(t *testing.T) {
	m, c := newTestAppMetrics(t)
	m.RecordError("ingestion", "MOL_001")
	assert.Contains(t, scrapeMetrics(t, c), `test_unit_errors_total{code="MOL_001",component="ingestion"} 1`)
}

func TestNoopAppMetrics(t *testing.T) {
	m := NewNoopAppMetrics()
	assert.NotPanics(t, func() {
		m.RecordHTTPRequest(http.MethodGet, "/", 200, time.Second)
		m.RecordUpload(OutcomeAccepted, 1, 1)
		m.ActiveSessions.WithLabelValues("memory").Set(3)
	})
}
