// Package handler provides HTTP handlers for the SkyDeck API.
package handler

import (
	"net/http"
	"time"

	"github.com/skydeck/skydeck/internal/api/models"
	"github.com/skydeck/skydeck/internal/api/response"
	"github.com/skydeck/skydeck/internal/provider/resilience"
	"github.com/skydeck/skydeck/internal/session"
)

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	providers *resilience.Registry
	sessions  *session.Registry
}

// NewOpsHandler creates a new OpsHandler. providers and sessions may be nil.
func NewOpsHandler(version, buildTime string, providers *resilience.Registry, sessions *session.Registry) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		providers: providers,
		sessions:  sessions,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. SkyDeck owns
// no storage, so it is ready as soon as it serves.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - provider circuit health.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	providers := []models.ProviderStatus{}
	if h.providers != nil {
		for _, ph := range h.providers.AllHealth() {
			providers = append(providers, models.NewProviderStatus(*ph))
		}
	}

	status := models.SystemStatus{
		Status:    models.Overall(providers),
		Time:      models.Timestamp(time.Now()),
		Providers: providers,
	}
	if h.sessions != nil {
		status.ActiveSessions = h.sessions.Len()
	}
	response.JSON(w, r, http.StatusOK, status)
}
