package main

import (
	"log/slog"
	"net/http"

	"github.com/kostmatch/backend/internal/auth"
	"github.com/kostmatch/backend/internal/handlers"
	"github.com/kostmatch/backend/internal/middleware"
	"github.com/kostmatch/backend/internal/repository"
	"github.com/kostmatch/backend/internal/trust"
	"github.com/kostmatch/backend/internal/unlock"
	"github.com/kostmatch/backend/internal/wallet"
)

// RegisterV1Routes adds the /v1/ marketplace endpoints to the given mux.
// Middleware chain: TokenAuth -> handler; webhook surfaces skip account auth
// and are guarded by the shared secret instead.
func RegisterV1Routes(
	mux *http.ServeMux,
	authSvc auth.Service,
	accountRepo *repository.AccountRepo,
	leadRepo *repository.LeadRepo,
	listingRepo *repository.ListingRepo,
	requestRepo *repository.RequestRepo,
	walletSvc *wallet.Service,
	trustSvc *trust.Service,
	unlockSvc *unlock.Service,
	webhookSecret string,
	logger *slog.Logger,
) {
	lh := &handlers.LeadHandler{
		Leads:    leadRepo,
		Listings: listingRepo,
		Requests: requestRepo,
		Gateway:  unlockSvc,
		Logger:   logger,
	}
	mh := &handlers.MatchHandler{
		Requests: requestRepo,
		Listings: listingRepo,
		Logger:   logger,
	}
	wh := &handlers.WalletHandler{Wallet: walletSvc, Logger: logger}
	ph := &handlers.PostingHandler{Listings: listingRepo, Requests: requestRepo, Logger: logger}
	ah := &handlers.AccountHandler{Accounts: accountRepo, Logger: logger}
	hooks := &handlers.WebhookHandler{Topups: walletSvc, Trust: trustSvc, Accounts: accountRepo, Secret: webhookSecret, Logger: logger}

	withAuth := middleware.TokenAuth(authSvc, accountRepo)

	mux.Handle("POST /v1/leads", withAuth(http.HandlerFunc(lh.CreateLead)))
	mux.Handle("GET /v1/leads", withAuth(http.HandlerFunc(lh.ListLeads)))
	mux.Handle("GET /v1/leads/{id}", withAuth(http.HandlerFunc(lh.GetLead)))
	mux.Handle("POST /v1/leads/{id}/unlock", withAuth(http.HandlerFunc(lh.UnlockLead)))

	mux.Handle("POST /v1/listings", withAuth(http.HandlerFunc(ph.CreateListing)))
	mux.Handle("POST /v1/requests", withAuth(http.HandlerFunc(ph.CreateRequest)))
	mux.Handle("GET /v1/requests/{id}/matches", withAuth(http.HandlerFunc(mh.GetMatches)))

	mux.Handle("PATCH /v1/account/contact", withAuth(http.HandlerFunc(ah.UpdateContact)))

	mux.Handle("GET /v1/wallet", withAuth(http.HandlerFunc(wh.GetWallet)))
	mux.Handle("GET /v1/wallet/transactions", withAuth(http.HandlerFunc(wh.ListTransactions)))

	mux.HandleFunc("POST /v1/topups/webhook", hooks.TopupWebhook)
	mux.HandleFunc("POST /v1/trust/events", hooks.TrustEvent)
}
