package handlers

import (
	"log/slog"
	"net/http"
	"time"

	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
	"git.home.luguber.info/inful/docrefactor/internal/server/responses"
	"git.home.luguber.info/inful/docrefactor/internal/version"
)

// MonitoringHandlers serves the health endpoint.
type MonitoringHandlers struct {
	source       string
	start        time.Time
	errorAdapter *derrors.HTTPErrorAdapter
}

// NewMonitoringHandlers creates monitoring handlers for the doc tree at source.
func NewMonitoringHandlers(source string) *MonitoringHandlers {
	return &MonitoringHandlers{
		source:       source,
		start:        time.Now(),
		errorAdapter: derrors.NewHTTPErrorAdapter(slog.Default()),
	}
}

// HandleHealthCheck reports liveness.
func (h *MonitoringHandlers) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	health := &responses.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   version.String(),
		Uptime:    time.Since(h.start).Seconds(),
		Source:    h.source,
	}
	if err := writeJSON(w, r, http.StatusOK, health); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			derrors.Wrap(err, derrors.CategoryInternal, derrors.SeverityError, "failed to write health response"))
	}
}
