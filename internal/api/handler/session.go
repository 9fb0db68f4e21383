package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/skydeck/skydeck/internal/api/models"
	"github.com/skydeck/skydeck/internal/api/response"
	"github.com/skydeck/skydeck/internal/session"
)

// SessionHandler handles session endpoints.
type SessionHandler struct {
	registry *session.Registry
	tokens   *session.TokenService
	logger   zerolog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(registry *session.Registry, tokens *session.TokenService, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		registry: registry,
		tokens:   tokens,
		logger:   logger,
	}
}

// CreateSession handles POST /v1/sessions - start a dashboard session.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s := h.registry.Create()

	token, expiresAt, err := h.tokens.Issue(s.ID)
	if err != nil {
		h.registry.Delete(s.ID)
		h.logger.Error().Err(err).Str("session_id", s.ID).Msg("failed to issue session token")
		response.InternalError(w, r, "failed to create session")
		return
	}

	h.logger.Info().Str("session_id", s.ID).Msg("session created")

	response.Created(w, r, "", models.SessionResponse{
		SessionID: s.ID,
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: models.Timestamp(expiresAt),
	})
}
