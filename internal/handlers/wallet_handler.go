package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/kostmatch/backend/internal/middleware"
	"github.com/kostmatch/backend/internal/models"
	"github.com/kostmatch/backend/internal/wallet"
)

// WalletService is the subset of the wallet the handler reads.
type WalletService interface {
	Stats(ctx context.Context, accountID uuid.UUID) (*wallet.Stats, error)
	Transactions(ctx context.Context, accountID uuid.UUID) ([]*models.CreditTransaction, error)
}

// WalletHandler serves /v1/wallet endpoints.
type WalletHandler struct {
	Wallet WalletService
	Logger *slog.Logger
}

// GetWallet handles GET /v1/wallet: balance, trust score, verification state.
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	stats, err := h.Wallet.Stats(r.Context(), acc.ID)
	if err != nil {
		h.Logger.Error("wallet stats", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ListTransactions handles GET /v1/wallet/transactions: the caller's ledger
// rows, newest first.
func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	acc := middleware.AccountFromCtx(r.Context())
	if acc == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return
	}
	txns, err := h.Wallet.Transactions(r.Context(), acc.ID)
	if err != nil {
		h.Logger.Error("list transactions", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	if txns == nil {
		txns = []*models.CreditTransaction{}
	}
	writeJSON(w, http.StatusOK, txns)
}
