package handlers

import (
	"net/http"
	"time"

	"github.com/bobmcallan/finplan-portal/internal/common"
)

// healthReport is the liveness payload.
type healthReport struct {
	Status        string `json:"status"`
	Service       string `json:"service"`
	Store         string `json:"store"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// HealthHandler reports liveness and the configured store backend. It does not
// contact the store.
type HealthHandler struct {
	logger  *common.Logger
	backend string
	started time.Time
}

// NewHealthHandler creates a health handler for the named store backend.
func NewHealthHandler(logger *common.Logger, backend string) *HealthHandler {
	return &HealthHandler{logger: logger, backend: backend, started: time.Now()}
}

// ServeHTTP handles GET /api/health.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}
	WriteJSON(w, http.StatusOK, healthReport{
		Status:        "ok",
		Service:       common.ServiceName,
		Store:         h.backend,
		UptimeSeconds: int64(time.Since(h.started) / time.Second),
	})
}
