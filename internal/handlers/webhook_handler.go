package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kostmatch/backend/internal/trust"
	"github.com/kostmatch/backend/internal/wallet"
)

// TopupApplier credits wallets from confirmed gateway payments.
type TopupApplier interface {
	ApplyTopup(ctx context.Context, accountID uuid.UUID, credits int, externalRef string) (int, error)
}

// TrustApplier feeds external trust events into the score model.
type TrustApplier interface {
	ApplyEvent(ctx context.Context, accountID uuid.UUID, delta int, reason string) (int, error)
}

// AccountVerifier stamps identity verification on an account.
type AccountVerifier interface {
	SetVerified(ctx context.Context, id uuid.UUID, verifiedAt time.Time) error
}

// WebhookHandler serves the internal surfaces: the payment-gateway callback
// and the trust event feed. Both are guarded by a shared secret header, not
// by account auth.
type WebhookHandler struct {
	Topups   TopupApplier
	Trust    TrustApplier
	Accounts AccountVerifier
	Secret   string
	Logger   *slog.Logger
}

func (h *WebhookHandler) authorized(r *http.Request) bool {
	got := r.Header.Get("X-Webhook-Secret")
	return h.Secret != "" && subtle.ConstantTimeCompare([]byte(got), []byte(h.Secret)) == 1
}

// --- POST /v1/topups/webhook ---

type topupWebhookRequest struct {
	AccountID   string `json:"account_id"`
	Credits     int    `json:"credits"`
	ExternalRef string `json:"external_ref"`
}

type topupWebhookResponse struct {
	Balance int `json:"balance"`
}

// TopupWebhook handles the payment gateway's confirmation callback.
// Idempotent per external_ref: redeliveries return 200 without crediting again.
func (h *WebhookHandler) TopupWebhook(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req topupWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		http.Error(w, `{"error":"invalid account_id"}`, http.StatusBadRequest)
		return
	}

	balance, err := h.Topups.ApplyTopup(r.Context(), accountID, req.Credits, req.ExternalRef)
	if err != nil {
		if errors.Is(err, wallet.ErrInvalidTopup) {
			http.Error(w, `{"error":"credits must be positive and external_ref set"}`, http.StatusBadRequest)
			return
		}
		if errors.Is(err, wallet.ErrAccountNotFound) {
			http.Error(w, `{"error":"account not found"}`, http.StatusNotFound)
			return
		}
		h.Logger.Error("apply top-up", "external_ref", req.ExternalRef, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, topupWebhookResponse{Balance: balance})
}

// --- POST /v1/trust/events ---

type trustEventRequest struct {
	AccountID string `json:"account_id"`
	Delta     int    `json:"delta"`
	Reason    string `json:"reason"`
	Verified  bool   `json:"verified"` // set on identity verification approval
}

type trustEventResponse struct {
	TrustScore int `json:"trust_score"`
}

// TrustEvent handles an internal trust score adjustment (verification
// approved, report upheld, and so on).
func (h *WebhookHandler) TrustEvent(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req trustEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		http.Error(w, `{"error":"invalid account_id"}`, http.StatusBadRequest)
		return
	}

	score, err := h.Trust.ApplyEvent(r.Context(), accountID, req.Delta, req.Reason)
	if err != nil {
		if errors.Is(err, trust.ErrEmptyReason) {
			http.Error(w, `{"error":"reason is required"}`, http.StatusBadRequest)
			return
		}
		h.Logger.Error("apply trust event", "account_id", req.AccountID, "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if req.Verified {
		if err := h.Accounts.SetVerified(r.Context(), accountID, time.Now()); err != nil {
			h.Logger.Error("mark account verified", "account_id", req.AccountID, "error", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
	}
	writeJSON(w, http.StatusOK, trustEventResponse{TrustScore: score})
}
