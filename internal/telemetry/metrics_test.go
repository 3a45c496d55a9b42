package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RecordSignIn(t *testing.T) {
	m := NewMetrics()

	m.RecordSignIn("memory", ResultSuccess)
	m.RecordSignIn("memory", ResultSuccess)
	m.RecordSignIn("memory", ResultFailure)

	assert.InDelta(t, 2, testutil.ToFloat64(m.signInAttempts.WithLabelValues("memory", ResultSuccess)), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.signInAttempts.WithLabelValues("memory", ResultFailure)), 0)
}

func TestMetrics_RecordRegistration(t *testing.T) {
	m := NewMetrics()

	m.RecordRegistration("document", ResultDuplicate)

	assert.InDelta(t, 1, testutil.ToFloat64(m.registrations.WithLabelValues("document", ResultDuplicate)), 0)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordSignIn("memory", ResultSuccess)
		m.RecordRegistration("file", ResultSuccess)
		m.ObserveRequest(http.MethodGet, http.StatusOK, time.Millisecond)
	})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.RecordSignIn("sqlite", ResultSuccess)
	m.ObserveRequest(http.MethodPost, http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `loginpanel_signin_attempts_total{backend="sqlite",result="success"} 1`)
	assert.Contains(t, string(body), "loginpanel_http_request_duration_seconds")
}
