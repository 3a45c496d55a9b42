// Package httphandler implements the operational HTTP API: health, metrics
// and the middleware chain shared with the web GUI.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/loginpanel/internal/application"
	"github.com/ericfisherdev/loginpanel/internal/domain/port/driven"
	"github.com/ericfisherdev/loginpanel/internal/telemetry"
)

// Handler is the HTTP driving adapter that serves the operational API.
type Handler struct {
	accounts *application.AccountService
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. metrics may be nil.
func NewHandler(accounts *application.AccountService, metrics *telemetry.Metrics, logger *slog.Logger) *Handler {
	return &Handler{
		accounts: accounts,
		metrics:  metrics,
		logger:   logger,
	}
}

// RegisterAPIRoutes registers the operational routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)
	mux.Handle("GET /metrics", h.metrics.Handler())
}

// Health reports the active backend and how many credentials it holds.
// A backend that cannot be queried yields 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Backend: h.accounts.Backend().String(),
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	n, err := h.accounts.CredentialCount(r.Context())
	switch {
	case errors.Is(err, driven.ErrUnsupported):
		// Nothing to report beyond liveness.
	case err != nil:
		h.logger.Error("health check failed", "backend", resp.Backend, "error", err)
		resp.Status = "unavailable"
		resp.Error = "credential store unavailable"
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	default:
		resp.Credentials = &n
	}

	writeJSON(w, http.StatusOK, resp)
}
