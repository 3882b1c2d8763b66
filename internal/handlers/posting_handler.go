package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/kostmatch/backend/internal/middleware"
	"github.com/kostmatch/backend/internal/models"
)

// ListingWriter persists provider listings.
type ListingWriter interface {
	Create(ctx context.Context, l *models.Listing) error
}

// RequestWriter persists seeker housing requests.
type RequestWriter interface {
	Create(ctx context.Context, req *models.HousingRequest) error
}

// PostingHandler serves the content-creation endpoints the marketplace runs
// on: provider listings and seeker housing requests.
type PostingHandler struct {
	Listings ListingWriter
	Requests RequestWriter
	Logger   *slog.Logger
}

// --- POST /v1/listings ---

type createListingRequest struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
	Units       []struct {
		Name      string   `json:"name"`
		Price     int      `json:"price"`
		Amenities []string `json:"amenities"`
	} `json:"units"`
}

// CreateListing handles POST /v1/listings. Providers only.
func (h *PostingHandler) CreateListing(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if acc.Role != models.RoleProvider {
		http.Error(w, `{"error":"only providers can create listings"}`, http.StatusForbidden)
		return
	}
	var req createListingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.Location == "" {
		http.Error(w, `{"error":"title and location are required"}`, http.StatusBadRequest)
		return
	}
	for _, u := range req.Units {
		if u.Price <= 0 {
			http.Error(w, `{"error":"unit price must be > 0"}`, http.StatusBadRequest)
			return
		}
	}

	listing := &models.Listing{
		ID:              uuid.New(),
		AccountID:       acc.ID,
		Title:           req.Title,
		Location:        req.Location,
		Description:     req.Description,
		OwnerVerified:   acc.IsVerified,
		OwnerTrustScore: acc.TrustScore,
	}
	for _, u := range req.Units {
		listing.Units = append(listing.Units, models.Unit{
			ID:        uuid.New(),
			ListingID: listing.ID,
			Name:      u.Name,
			Price:     u.Price,
			Amenities: u.Amenities,
		})
	}
	if err := h.Listings.Create(r.Context(), listing); err != nil {
		h.Logger.Error("create listing", "error", err)
		http.Error(w, `{"error":"failed to create listing"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, listing)
}

// --- POST /v1/requests ---

type createHousingRequest struct {
	Locations   []string `json:"locations"`
	MinBudget   int      `json:"min_budget"`
	MaxBudget   int      `json:"max_budget"`
	Description string   `json:"description"`
	IsUrgent    bool     `json:"is_urgent"`
}

// CreateRequest handles POST /v1/requests. Seekers only.
func (h *PostingHandler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	if acc.Role != models.RoleTenantSeeker {
		http.Error(w, `{"error":"only seekers can post housing requests"}`, http.StatusForbidden)
		return
	}
	var req createHousingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if len(req.Locations) == 0 {
		http.Error(w, `{"error":"at least one location is required"}`, http.StatusBadRequest)
		return
	}
	if req.MinBudget < 0 || req.MaxBudget < 0 || (req.MaxBudget > 0 && req.MinBudget > req.MaxBudget) {
		http.Error(w, `{"error":"invalid budget range"}`, http.StatusBadRequest)
		return
	}

	hr := &models.HousingRequest{
		ID:          uuid.New(),
		AccountID:   acc.ID,
		Locations:   req.Locations,
		MinBudget:   req.MinBudget,
		MaxBudget:   req.MaxBudget,
		Description: req.Description,
		IsUrgent:    req.IsUrgent,
	}
	if err := h.Requests.Create(r.Context(), hr); err != nil {
		h.Logger.Error("create housing request", "error", err)
		http.Error(w, `{"error":"failed to create housing request"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, hr)
}
