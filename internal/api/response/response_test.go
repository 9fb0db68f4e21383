package response_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skydeck/skydeck/internal/api/middleware"
	"github.com/skydeck/skydeck/internal/api/models"
	"github.com/skydeck/skydeck/internal/api/response"
)

// requestWithContext returns a request that has passed through the RequestID
// middleware, plus a fresh recorder for the response under test.
func requestWithContext(t *testing.T, method, path string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, path, http.NoBody)

	var processedReq *http.Request
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		processedReq = r
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	return processedReq, httptest.NewRecorder()
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) models.Problem {
	t.Helper()
	var problem models.Problem
	if err := json.NewDecoder(rec.Body).Decode(&problem); err != nil {
		t.Fatalf("failed to decode Problem response: %v", err)
	}
	return problem
}

func TestJSON_IncludesRequestID(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/v1/dashboard")

	response.JSON(rec, req, http.StatusOK, map[string]string{"query": "Paris"})

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header to be set")
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", got)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["query"] != "Paris" {
		t.Errorf("expected query Paris, got %q", body["query"])
	}
}

func TestJSON_WithoutRequestID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/dashboard", http.NoBody)
	rec := httptest.NewRecorder()

	response.JSON(rec, req, http.StatusOK, nil)

	if rec.Header().Get("X-Request-Id") != "" {
		t.Errorf("expected no X-Request-Id header, got %q", rec.Header().Get("X-Request-Id"))
	}
	if rec.Body.Len() != 0 {
		t.Errorf("expected empty body for nil data, got %q", rec.Body.String())
	}
}

func TestCreated_IncludesRequestIDAndLocation(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodPost, "/v1/records")

	response.Created(rec, req, "/v1/records/7", map[string]int{"id": 7})

	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != "/v1/records/7" {
		t.Errorf("expected Location /v1/records/7, got %q", got)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header to be set")
	}
}

func TestCreated_WithoutLocation(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodPost, "/v1/sessions")

	response.Created(rec, req, "", map[string]string{"sessionId": "s1"})

	if rec.Header().Get("Location") != "" {
		t.Errorf("expected no Location header, got %q", rec.Header().Get("Location"))
	}
}

func TestProblemHelpers(t *testing.T) {
	tests := []struct {
		name       string
		write      func(http.ResponseWriter, *http.Request)
		wantStatus int
		wantType   string
	}{
		{
			name: "bad request",
			write: func(w http.ResponseWriter, r *http.Request) {
				response.BadRequest(w, r, "lat is required", []models.FieldError{{Field: "lat", Message: "is required"}})
			},
			wantStatus: http.StatusBadRequest,
			wantType:   models.ProblemTypeValidation,
		},
		{
			name:       "unauthorized",
			write:      func(w http.ResponseWriter, r *http.Request) { response.Unauthorized(w, r, "session required") },
			wantStatus: http.StatusUnauthorized,
			wantType:   models.ProblemTypeUnauthorized,
		},
		{
			name:       "not found",
			write:      func(w http.ResponseWriter, r *http.Request) { response.NotFound(w, r, "record not found") },
			wantStatus: http.StatusNotFound,
			wantType:   models.ProblemTypeNotFound,
		},
		{
			name:       "internal error",
			write:      func(w http.ResponseWriter, r *http.Request) { response.InternalError(w, r, "boom") },
			wantStatus: http.StatusInternalServerError,
			wantType:   models.ProblemTypeInternal,
		},
		{
			name:       "bad gateway",
			write:      func(w http.ResponseWriter, r *http.Request) { response.BadGateway(w, r, "export failed") },
			wantStatus: http.StatusBadGateway,
			wantType:   models.ProblemTypeBadGateway,
		},
		{
			name:       "service unavailable",
			write:      func(w http.ResponseWriter, r *http.Request) { response.ServiceUnavailable(w, r, "quote service unavailable") },
			wantStatus: http.StatusServiceUnavailable,
			wantType:   models.ProblemTypeUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := requestWithContext(t, http.MethodGet, "/v1/records/export.csv")

			tt.write(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Content-Type"); got != "application/problem+json" {
				t.Errorf("expected Content-Type application/problem+json, got %q", got)
			}

			problem := decodeProblem(t, rec)
			if problem.Type != tt.wantType {
				t.Errorf("expected type %q, got %q", tt.wantType, problem.Type)
			}
			if problem.Status != tt.wantStatus {
				t.Errorf("expected problem status %d, got %d", tt.wantStatus, problem.Status)
			}
			if problem.Instance != "/v1/records/export.csv" {
				t.Errorf("expected instance /v1/records/export.csv, got %q", problem.Instance)
			}
			if problem.TraceID == "" || problem.TraceID != rec.Header().Get("X-Request-Id") {
				t.Errorf("expected traceId to match X-Request-Id, got %q", problem.TraceID)
			}
		})
	}
}

func TestBadRequest_IncludesFieldErrors(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodPost, "/v1/dashboard/locate")

	response.BadRequest(rec, req, "coordinates required", []models.FieldError{
		{Field: "lat", Message: "is required", Code: "REQUIRED"},
		{Field: "lon", Message: "is required", Code: "REQUIRED"},
	})

	problem := decodeProblem(t, rec)
	if len(problem.Errors) != 2 {
		t.Fatalf("expected 2 field errors, got %d", len(problem.Errors))
	}
	if problem.Errors[1].Field != "lon" {
		t.Errorf("expected second field lon, got %q", problem.Errors[1].Field)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/v1/quote", http.NoBody)
	req.Header.Set("X-Request-Id", "client-request-123")

	var processedReq *http.Request
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		processedReq = r
	}))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	rec := httptest.NewRecorder()
	response.JSON(rec, processedReq, http.StatusOK, map[string]string{"status": "ok"})

	if got := rec.Header().Get("X-Request-Id"); got != "client-request-123" {
		t.Errorf("expected response X-Request-Id to match client's, got %q", got)
	}
}

func TestGetRequestID_EmptyContext(t *testing.T) {
	if requestID := middleware.GetRequestID(context.Background()); requestID != "" {
		t.Errorf("expected empty request ID for background context, got %q", requestID)
	}
}

func TestAttachment_SetsDownloadHeaders(t *testing.T) {
	req, rec := requestWithContext(t, http.MethodGet, "/v1/records/export.csv")
	body := []byte("id,location\n1,Paris\n")

	response.Attachment(rec, req, "weather_entries.csv", "text/csv", body)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename="weather_entries.csv"` {
		t.Errorf("unexpected Content-Disposition %q", got)
	}
	if got := rec.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("expected Content-Type text/csv, got %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "20" {
		t.Errorf("expected Content-Length 20, got %q", got)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("expected X-Request-Id header")
	}
	if rec.Body.String() != string(body) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}
