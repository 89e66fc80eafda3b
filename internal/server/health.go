package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/dekho-agent/device-bridge/internal/scheduler"
)

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string                `json:"status"`
	Identity  scheduler.ProbeStatus `json:"identity"`
	Timestamp time.Time             `json:"timestamp"`
}

// HealthRegistrar handles health check endpoints
type HealthRegistrar struct {
	status func() scheduler.ProbeStatus
}

// NewHealthRegistrar creates a health registrar reporting the latest identity probe.
func NewHealthRegistrar(status func() scheduler.ProbeStatus) *HealthRegistrar {
	return &HealthRegistrar{status: status}
}

// RegisterRoutes registers the health check endpoint
func (h *HealthRegistrar) RegisterRoutes(router Router) {
	router.Group("").HandleFunc("GET /health", h.healthHandler)
}

func (h *HealthRegistrar) healthHandler(w http.ResponseWriter, r *http.Request) {
	probe := h.status()
	response := HealthResponse{
		Status:    "degraded",
		Identity:  probe,
		Timestamp: time.Now().UTC(),
	}
	if probe.Healthy {
		response.Status = "healthy"
	}

	// Encode to buffer first to catch any encoding errors before writing headers
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if probe.Healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_, _ = w.Write(buf.Bytes())
}
