package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kostmatch/backend/internal/middleware"
	"github.com/kostmatch/backend/internal/models"
	"github.com/kostmatch/backend/internal/unlock"
)

// LeadRepoForHandler is the subset of the lead repository needed by the handler.
type LeadRepoForHandler interface {
	Create(ctx context.Context, l *models.Lead) error
	GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	ListByRequester(ctx context.Context, accountID uuid.UUID) ([]*models.Lead, error)
	GetUnlockRecord(ctx context.Context, requesterID, leadID uuid.UUID) (*models.UnlockRecord, error)
	OwnerContact(ctx context.Context, accountID uuid.UUID) (string, error)
}

// ListingRepoForHandler resolves listing → owning provider.
type ListingRepoForHandler interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

// RequestRepoForHandler resolves housing request → owning seeker.
type RequestRepoForHandler interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.HousingRequest, error)
}

// UnlockGateway is the paid contact-reveal entry point.
type UnlockGateway interface {
	Unlock(ctx context.Context, requesterID, leadID uuid.UUID) (*unlock.Result, error)
}

// LeadHandler serves /v1/leads endpoints.
type LeadHandler struct {
	Leads    LeadRepoForHandler
	Listings ListingRepoForHandler
	Requests RequestRepoForHandler
	Gateway  UnlockGateway
	Logger   *slog.Logger
}

// --- POST /v1/leads ---

type createLeadRequest struct {
	SubjectType string `json:"subject_type"`
	SubjectRef  string `json:"subject_ref"`
}

// CreateLead handles POST /v1/leads: registers interest in a listing's or a
// request's contact. Creating the lead is free; the contact stays hidden
// until the lead is unlocked.
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	var req createLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	subjectRef, err := uuid.Parse(req.SubjectRef)
	if err != nil {
		http.Error(w, `{"error":"invalid subject_ref"}`, http.StatusBadRequest)
		return
	}

	var ownerID uuid.UUID
	switch req.SubjectType {
	case models.LeadSubjectListingContact:
		listing, err := h.Listings.GetByID(r.Context(), subjectRef)
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"listing not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			h.Logger.Error("resolve listing", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		ownerID = listing.AccountID
	case models.LeadSubjectRequestContact:
		hr, err := h.Requests.GetByID(r.Context(), subjectRef)
		if errors.Is(err, pgx.ErrNoRows) {
			http.Error(w, `{"error":"housing request not found"}`, http.StatusNotFound)
			return
		}
		if err != nil {
			h.Logger.Error("resolve housing request", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		ownerID = hr.AccountID
	default:
		http.Error(w, `{"error":"invalid subject_type"}`, http.StatusBadRequest)
		return
	}

	if ownerID == acc.ID {
		http.Error(w, `{"error":"cannot create a lead against your own posting"}`, http.StatusBadRequest)
		return
	}

	lead := &models.Lead{
		ID:                  uuid.New(),
		SubjectType:         req.SubjectType,
		SubjectRef:          subjectRef,
		OwnerAccountID:      ownerID,
		RequestingAccountID: acc.ID,
		Status:              models.LeadStatusPending,
	}
	if err := h.Leads.Create(r.Context(), lead); err != nil {
		h.Logger.Error("create lead", "error", err)
		http.Error(w, `{"error":"failed to create lead"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

// --- GET /v1/leads/{id} ---

type leadResponse struct {
	*models.Lead
	RevealedContact *string `json:"revealed_contact,omitempty"`
}

// GetLead handles GET /v1/leads/{id}. The owner's contact appears only when
// the caller has already paid for this lead.
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	leadID, ok := extractLeadID(r)
	if !ok {
		http.Error(w, `{"error":"invalid lead id"}`, http.StatusBadRequest)
		return
	}

	lead, err := h.Leads.GetLead(r.Context(), leadID)
	if errors.Is(err, pgx.ErrNoRows) {
		http.Error(w, `{"error":"lead not found"}`, http.StatusNotFound)
		return
	}
	if err != nil {
		h.Logger.Error("get lead", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if lead.RequestingAccountID != acc.ID && lead.OwnerAccountID != acc.ID {
		http.Error(w, `{"error":"lead not found"}`, http.StatusNotFound)
		return
	}

	resp := leadResponse{Lead: lead}
	if lead.RequestingAccountID == acc.ID {
		rec, err := h.Leads.GetUnlockRecord(r.Context(), acc.ID, lead.ID)
		if err != nil {
			h.Logger.Error("get unlock record", "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		if rec != nil {
			contact, err := h.Leads.OwnerContact(r.Context(), lead.OwnerAccountID)
			if err != nil {
				h.Logger.Error("read owner contact", "error", err)
				http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
				return
			}
			resp.RevealedContact = &contact
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- GET /v1/leads ---

// ListLeads handles GET /v1/leads: the caller's leads, newest first.
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	leads, err := h.Leads.ListByRequester(r.Context(), acc.ID)
	if err != nil {
		h.Logger.Error("list leads", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if leads == nil {
		leads = []*models.Lead{}
	}
	writeJSON(w, http.StatusOK, leads)
}

// --- POST /v1/leads/{id}/unlock ---

// UnlockLead handles POST /v1/leads/{id}/unlock: charge the wallet and reveal
// the owner's contact. Repeat calls return the cached contact with no charge.
func (h *LeadHandler) UnlockLead(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	leadID, ok := extractLeadID(r)
	if !ok {
		http.Error(w, `{"error":"invalid lead id"}`, http.StatusBadRequest)
		return
	}

	res, err := h.Gateway.Unlock(r.Context(), acc.ID, leadID)
	if err != nil {
		if errors.Is(err, unlock.ErrConflict) {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "unlock is busy, retry shortly"})
			return
		}
		h.Logger.Error("unlock lead", "lead_id", leadID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	switch res.Status {
	case unlock.StatusUnlocked, unlock.StatusAlreadyUnlocked:
		writeJSON(w, http.StatusOK, res)
	case unlock.StatusInsufficientCredits:
		writeJSON(w, http.StatusPaymentRequired, res)
	case unlock.StatusNotFound:
		writeJSON(w, http.StatusNotFound, res)
	default:
		h.Logger.Error("unexpected unlock status", "status", res.Status)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
	}
}

// --- helpers ---

// extractLeadID parses the lead UUID from the URL path.
// Supports paths like /v1/leads/{id} and /v1/leads/{id}/unlock.
func extractLeadID(r *http.Request) (uuid.UUID, bool) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/leads/")
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

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
