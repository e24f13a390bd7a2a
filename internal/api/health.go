package api

import (
	"net/http"

	"github.com/cortexapp/cortex-bridge/internal/api/respond"
)

// HealthHandler serves the liveness and connection-status probes.
type HealthHandler struct {
	service     string
	connections func() int
}

// NewHealthHandler creates a HealthHandler. connections reports the number of
// open extension connections; nil reports zero.
func NewHealthHandler(service string, connections func() int) *HealthHandler {
	if connections == nil {
		connections = func() int { return 0 }
	}
	return &HealthHandler{service: service, connections: connections}
}

// CheckHealth handles GET /health
func (h *HealthHandler) CheckHealth(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": h.service,
	})
}

// Status handles GET /status
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"connected_extensions": h.connections(),
		"server_status":        "running",
	})
}
