package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/kostmatch/backend/internal/middleware"
)

// ContactUpdater persists the protected contact phone.
type ContactUpdater interface {
	UpdateContactPhone(ctx context.Context, id uuid.UUID, phone string) error
}

// AccountHandler serves account self-service endpoints.
type AccountHandler struct {
	Accounts ContactUpdater
	Logger   *slog.Logger
}

type updateContactRequest struct {
	ContactPhone string `json:"contact_phone"`
}

// UpdateContact handles PATCH /v1/account/contact. The new phone is only ever
// revealed through paid unlocks, same as the old one.
func (h *AccountHandler) UpdateContact(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	var req updateContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid JSON"}`, http.StatusBadRequest)
		return
	}
	if req.ContactPhone == "" {
		http.Error(w, `{"error":"contact_phone is required"}`, http.StatusBadRequest)
		return
	}
	if err := h.Accounts.UpdateContactPhone(r.Context(), acc.ID, req.ContactPhone); err != nil {
		h.Logger.Error("update contact phone", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
