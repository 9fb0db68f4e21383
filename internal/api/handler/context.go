package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/skydeck/skydeck/internal/api/middleware"
	"github.com/skydeck/skydeck/internal/api/response"
	"github.com/skydeck/skydeck/internal/session"
)

// maxBodyBytes bounds every JSON request body.
const maxBodyBytes = 64 << 10

// currentSession returns the caller's session, writing a 401 when the
// route is not behind the Session middleware.
func currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s := middleware.GetSession(r.Context())
	if s == nil {
		response.Unauthorized(w, r, "session required")
		return nil, false
	}
	return s, true
}

// decodeJSON reads the request body into dst. An empty body is accepted
// only when allowEmpty is set.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return true
		}
		response.BadRequest(w, r, "invalid JSON body", nil)
		return false
	}
	return true
}

// detached keeps upstream work running after the client goes away so that
// view state is always settled by the operation that started it.
func detached(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
