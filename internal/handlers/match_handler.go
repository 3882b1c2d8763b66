package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kostmatch/backend/internal/matching"
	"github.com/kostmatch/backend/internal/middleware"
	"github.com/kostmatch/backend/internal/models"
)

// ListingSource provides the candidate pool for matching.
type ListingSource interface {
	ListVisible(ctx context.Context) ([]*models.Listing, error)
}

// MatchHandler serves /v1/requests/{id}/matches.
type MatchHandler struct {
	Requests RequestRepoForHandler
	Listings ListingSource
	Logger   *slog.Logger
}

type matchesResponse struct {
	RequestID uuid.UUID                `json:"request_id"`
	Matches   []matching.ProviderScore `json:"matches"`
}

// GetMatches handles GET /v1/requests/{id}/matches: the request's ranked
// provider list, one entry per provider, best listing wins.
func (h *MatchHandler) GetMatches(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	requestID, ok := extractRequestID(r)
	if !ok {
		http.Error(w, `{"error":"invalid request id"}`, http.StatusBadRequest)
		return
	}

	req, err := h.Requests.GetByID(r.Context(), requestID)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"housing request not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("get housing request", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if req.AccountID != acc.ID {
		http.Error(w, `{"error":"housing request not found"}`, http.StatusNotFound)
		return
	}

	listings, err := h.Listings.ListVisible(r.Context())
	if err != nil {
		h.Logger.Error("list visible listings", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	scores := matching.RankProviders(req, listings)
	if scores == nil {
		scores = []matching.ProviderScore{}
	}
	writeJSON(w, http.StatusOK, matchesResponse{RequestID: req.ID, Matches: scores})
}

// extractRequestID parses the request UUID from /v1/requests/{id}/matches.
func extractRequestID(r *http.Request) (uuid.UUID, bool) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/requests/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
