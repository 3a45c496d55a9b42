package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/loginpanel/internal/adapter/driven/memory"
	httphandler "github.com/ericfisherdev/loginpanel/internal/adapter/driving/http"
	"github.com/ericfisherdev/loginpanel/internal/application"
	"github.com/ericfisherdev/loginpanel/internal/domain/model"
	"github.com/ericfisherdev/loginpanel/internal/telemetry"
)

// --- Mock implementations ---

type failingCounter struct{}

func (failingCounter) Count(_ context.Context) (int, error) {
	return 0, errors.New("disk I/O error")
}

// --- Test helpers ---

func setupMux(t *testing.T, backend application.Backend) (http.Handler, *telemetry.Metrics) {
	t.Helper()

	metrics := telemetry.NewMetrics()
	svc := application.NewAccountService(backend, metrics, slog.Default())
	h := httphandler.NewHandler(svc, metrics, slog.Default())

	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, h)
	mux.HandleFunc("GET /panic", func(http.ResponseWriter, *http.Request) { panic("boom") })
	mux.HandleFunc("GET /api/v1/panic", func(http.ResponseWriter, *http.Request) { panic("boom") })

	return httphandler.ApplyMiddleware(mux, slog.Default(), metrics), metrics
}

func memoryBackend() application.Backend {
	store := memory.NewStore(memory.DefaultUsers())
	return application.Backend{Name: model.BackendMemory, Verifier: store, Counter: store}
}

func doRequest(handler http.Handler, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

// --- Tests ---

func TestHealth_ReportsBackendAndCount(t *testing.T) {
	handler, _ := setupMux(t, memoryBackend())

	rec := doRequest(handler, http.MethodGet, "/api/v1/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var resp httphandler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "memory", resp.Backend)
	require.NotNil(t, resp.Credentials)
	assert.Equal(t, 3, *resp.Credentials)
	assert.NotEmpty(t, resp.Time)
}

func TestHealth_BackendWithoutCounter(t *testing.T) {
	handler, _ := setupMux(t, application.Backend{Name: model.BackendMemory})

	rec := doRequest(handler, http.MethodGet, "/api/v1/health")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "credentials")
}

func TestHealth_BackendUnavailable(t *testing.T) {
	handler, _ := setupMux(t, application.Backend{Name: model.BackendSQLite, Counter: failingCounter{}})

	rec := doRequest(handler, http.MethodGet, "/api/v1/health")

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp httphandler.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unavailable", resp.Status)
	assert.NotContains(t, rec.Body.String(), "disk I/O error", "internal errors must not leak")
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := setupMux(t, memoryBackend())

	_ = doRequest(handler, http.MethodGet, "/api/v1/health")
	rec := doRequest(handler, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `loginpanel_http_request_duration_seconds_count{method="GET",status="200"}`)
}

func TestMiddleware_RecoversPanicOnAPIAsJSON(t *testing.T) {
	handler, _ := setupMux(t, memoryBackend())

	rec := doRequest(handler, http.MethodGet, "/api/v1/panic")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}

func TestMiddleware_RecoversPanicOnGUIAsText(t *testing.T) {
	handler, _ := setupMux(t, memoryBackend())

	rec := doRequest(handler, http.MethodGet, "/panic")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "internal server error\n", rec.Body.String())
}

func TestMiddleware_GeneratesRequestID(t *testing.T) {
	handler, _ := setupMux(t, memoryBackend())

	rec := doRequest(handler, http.MethodGet, "/api/v1/health")

	assert.Len(t, rec.Header().Get("X-Request-ID"), 36)
}

func TestMiddleware_PropagatesRequestID(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = httphandler.RequestIDFromContext(r.Context())
	})
	handler := httphandler.ApplyMiddleware(inner, slog.Default(), nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}
