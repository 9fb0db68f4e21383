package models

import (
	"time"

	"github.com/skydeck/skydeck/internal/provider/resilience"
)

// Health represents the health status of the service.
type Health struct {
	Status  HealthStatus           `json:"status"`
	Time    Timestamp              `json:"time"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// SystemStatus represents the overall system status.
type SystemStatus struct {
	Status         HealthStatus     `json:"status"`
	Time           Timestamp        `json:"time"`
	Providers      []ProviderStatus `json:"providers"`
	ActiveSessions int              `json:"activeSessions"`
}

// ProviderStatus represents the status of an external provider.
type ProviderStatus struct {
	Provider      string       `json:"provider"`
	Status        HealthStatus `json:"status"`
	CircuitState  string       `json:"circuitState"`
	LastSuccessAt *Timestamp   `json:"lastSuccessAt,omitempty"`
	LastFailureAt *Timestamp   `json:"lastFailureAt,omitempty"`
	Message       *string      `json:"message,omitempty"`
}

// NewProviderStatus maps a breaker state onto a health status: closed is
// OK, half-open is DEGRADED and open is FAIL.
func NewProviderStatus(h resilience.ProviderHealth) ProviderStatus {
	status := HealthStatusOK
	switch {
	case h.IsUnhealthy():
		status = HealthStatusFail
	case h.IsDegraded():
		status = HealthStatusDegraded
	}

	ps := ProviderStatus{
		Provider:      h.Name,
		Status:        status,
		CircuitState:  h.CircuitState.String(),
		LastSuccessAt: optionalTimestamp(h.LastSuccessAt),
		LastFailureAt: optionalTimestamp(h.LastFailureAt),
	}
	if h.LastError != "" {
		msg := h.LastError
		ps.Message = &msg
	}
	return ps
}

// Overall is the worst status among providers.
func Overall(providers []ProviderStatus) HealthStatus {
	overall := HealthStatusOK
	for _, p := range providers {
		switch p.Status {
		case HealthStatusFail:
			return HealthStatusFail
		case HealthStatusDegraded:
			overall = HealthStatusDegraded
		}
	}
	return overall
}

func optionalTimestamp(t *time.Time) *Timestamp {
	if t == nil {
		return nil
	}
	ts := Timestamp(*t)
	return &ts
}
