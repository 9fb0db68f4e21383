package handler

import (
	"net/http"

	"github.com/skydeck/skydeck/internal/api/models"
	"github.com/skydeck/skydeck/internal/api/response"
	"github.com/skydeck/skydeck/internal/dashboard"
)

// DashboardHandler handles the weather dashboard endpoints. Lookup failures
// are part of the returned view state, not HTTP errors.
type DashboardHandler struct {
	orchestrator *dashboard.Orchestrator
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(orchestrator *dashboard.Orchestrator) *DashboardHandler {
	return &DashboardHandler{orchestrator: orchestrator}
}

// GetDashboard handles GET /v1/dashboard - current view state.
func (h *DashboardHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	response.JSON(w, r, http.StatusOK, models.NewDashboardView(s.Dashboard.Snapshot()))
}

// Search handles POST /v1/dashboard/search - look up weather by name.
func (h *DashboardHandler) Search(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req models.SearchRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	view := h.orchestrator.Search(detached(r), s.Dashboard, req.Location)
	response.JSON(w, r, http.StatusOK, models.NewDashboardView(view))
}

// Locate handles POST /v1/dashboard/locate - look up weather by coordinates.
func (h *DashboardHandler) Locate(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req models.LocateRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	var fieldErrors []models.FieldError
	if req.Lat == nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lat", Message: "required", Code: "REQUIRED"})
	}
	if req.Lon == nil {
		fieldErrors = append(fieldErrors, models.FieldError{Field: "lon", Message: "required", Code: "REQUIRED"})
	}
	if len(fieldErrors) > 0 {
		response.BadRequest(w, r, "validation error", fieldErrors)
		return
	}

	view := h.orchestrator.SearchByCoordinates(detached(r), s.Dashboard, *req.Lat, *req.Lon)
	response.JSON(w, r, http.StatusOK, models.NewDashboardView(view))
}

// GeolocationFailure handles POST /v1/dashboard/geolocation-failure - the
// browser could not provide a position.
func (h *DashboardHandler) GeolocationFailure(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req models.GeolocationFailureRequest
	if !decodeJSON(w, r, &req, true) {
		return
	}

	view := h.orchestrator.ReportGeolocationFailure(s.Dashboard, req.Reason)
	response.JSON(w, r, http.StatusOK, models.NewDashboardView(view))
}
