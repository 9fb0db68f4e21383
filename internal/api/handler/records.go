package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/skydeck/skydeck/internal/api/models"
	"github.com/skydeck/skydeck/internal/api/response"
	"github.com/skydeck/skydeck/internal/records"
)

// RecordsHandler handles the saved-records endpoints. Store failures are
// reported through the view's error slot; only export and unknown edit
// targets map to HTTP errors.
type RecordsHandler struct{}

// NewRecordsHandler creates a new RecordsHandler.
func NewRecordsHandler() *RecordsHandler {
	return &RecordsHandler{}
}

// ListRecords handles GET /v1/records - reload the collection.
func (h *RecordsHandler) ListRecords(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	_ = s.Records.Load(detached(r))
	writeRecordsView(w, r, http.StatusOK, s.Records.Snapshot())
}

// GetState handles GET /v1/records/state - view state, loading the
// collection only on first use.
func (h *RecordsHandler) GetState(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	if !s.Records.Loaded() {
		_ = s.Records.Load(detached(r))
	}
	writeRecordsView(w, r, http.StatusOK, s.Records.Snapshot())
}

// CreateRecord handles POST /v1/records - validate and submit a new entry.
func (h *RecordsHandler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req models.CreateRecordRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	created, err := s.Records.Create(detached(r), req.Draft())
	if err != nil {
		writeRecordsView(w, r, http.StatusOK, s.Records.Snapshot())
		return
	}

	location := fmt.Sprintf("/v1/records/%d", created.ID)
	response.Created(w, r, location, models.NewRecordsView(s.Records.Snapshot()))
}

// ExportRecords handles GET /v1/records/export.csv - CSV download.
func (h *RecordsHandler) ExportRecords(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}

	data, err := s.Records.Export(r.Context())
	if err != nil {
		response.BadGateway(w, r, records.MsgExportFailed)
		return
	}
	response.Attachment(w, r, records.ExportFileName, "text/csv", data)
}

// CloseOverlay handles DELETE /v1/records/overlay.
func (h *RecordsHandler) CloseOverlay(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	s.Records.CloseOverlay()
	writeRecordsView(w, r, http.StatusOK, s.Records.Snapshot())
}

// GetRecord handles GET /v1/records/{recordId} - fetch one entry with its
// weather fields and show it read-only.
func (h *RecordsHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	_, _ = s.Records.View(detached(r), id)
	writeRecordsView(w, r, http.StatusOK, s.Records.Snapshot())
}

// BeginEdit handles POST /v1/records/{recordId}/edit - open the edit form.
func (h *RecordsHandler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	if _, err := s.Records.BeginEdit(id); err != nil {
		if errors.Is(err, records.ErrNoEditableRecord) {
			response.NotFound(w, r, "record is not in the loaded list")
			return
		}
		response.InternalError(w, r, "failed to open record")
		return
	}
	writeRecordsView(w, r, http.StatusOK, s.Records.Snapshot())
}

// UpdateRecord handles PUT /v1/records/{recordId} - change the date range.
func (h *RecordsHandler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	var req models.UpdateRecordRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}

	_, _ = s.Records.UpdateDates(detached(r), id, req.DateRangeStart, req.DateRangeEnd)
	writeRecordsView(w, r, http.StatusOK, s.Records.Snapshot())
}

// DeleteRecord handles DELETE /v1/records/{recordId}.
func (h *RecordsHandler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	s, ok := currentSession(w, r)
	if !ok {
		return
	}
	id, ok := recordID(w, r)
	if !ok {
		return
	}

	_ = s.Records.Delete(detached(r), id)
	writeRecordsView(w, r, http.StatusOK, s.Records.Snapshot())
}

func recordID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "recordId")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, r, "recordId must be a positive integer", []models.FieldError{
			{Field: "recordId", Message: "must be a positive integer", Code: "INVALID"},
		})
		return 0, false
	}
	return id, true
}

func writeRecordsView(w http.ResponseWriter, r *http.Request, status int, v records.View) {
	response.JSON(w, r, status, models.NewRecordsView(v))
}
