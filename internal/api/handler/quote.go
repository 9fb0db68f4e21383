package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/skydeck/skydeck/internal/api/models"
	"github.com/skydeck/skydeck/internal/api/response"
	"github.com/skydeck/skydeck/internal/quotes"
)

// QuoteSource returns one random quote.
type QuoteSource interface {
	Random(ctx context.Context) (*quotes.Quote, error)
}

// QuoteHandler handles the quotes endpoint.
type QuoteHandler struct {
	source QuoteSource
	logger zerolog.Logger
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(source QuoteSource, logger zerolog.Logger) *QuoteHandler {
	return &QuoteHandler{source: source, logger: logger}
}

// GetQuote handles GET /v1/quote - one random quote, no retry.
func (h *QuoteHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	q, err := h.source.Random(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to fetch quote")
		response.ServiceUnavailable(w, r, "quote service unavailable")
		return
	}
	response.JSON(w, r, http.StatusOK, models.Quote{Text: q.Text, Author: q.Author})
}
