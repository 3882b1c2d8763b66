// Package wallet is the credit ledger: an append-only transaction log plus a
// derived running balance per account. RecordTransaction is the only mutation
// entry point; no other component writes credit_transactions.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/kostmatch/backend/internal/models"
	"github.com/kostmatch/backend/internal/notify"
)

// ErrInsufficientFunds is returned when a debit would drive the balance
// negative. The debit is rejected entirely, never clamped.
var ErrInsufficientFunds = errors.New("insufficient funds")

// ErrAccountNotFound is returned when the wallet's account does not exist.
var ErrAccountNotFound = errors.New("account not found")

// ErrInvalidTopup rejects non-positive or unreferenced top-up events.
var ErrInvalidTopup = errors.New("invalid top-up event")

// Stats is the wallet summary surfaced to the account owner.
type Stats struct {
	Balance    int        `json:"balance"`
	TrustScore int        `json:"trust_score"`
	IsVerified bool       `json:"is_verified"`
	VerifiedAt *time.Time `json:"verified_at"`
}

// Store is the persistence contract for the ledger.
type Store interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	RecordTransaction(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int, kind, description string) (int, error)
	Balance(ctx context.Context, accountID uuid.UUID) (int, error)
	SumTransactions(ctx context.Context, accountID uuid.UUID) (int, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*models.CreditTransaction, error)
	InsertTopupEvent(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, credits int, externalRef string) (bool, error)
	Stats(ctx context.Context, accountID uuid.UUID) (*Stats, error)
}

type Service struct {
	store   Store
	enqueue notify.EnqueueTxFunc
	log     *slog.Logger
}

// NewService returns a wallet service. enqueue may be nil to disable
// notification events.
func NewService(store Store, enqueue notify.EnqueueTxFunc, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, enqueue: enqueue, log: log}
}

func (s *Service) Balance(ctx context.Context, accountID uuid.UUID) (int, error) {
	return s.store.Balance(ctx, accountID)
}

func (s *Service) Stats(ctx context.Context, accountID uuid.UUID) (*Stats, error) {
	return s.store.Stats(ctx, accountID)
}

func (s *Service) Transactions(ctx context.Context, accountID uuid.UUID) ([]*models.CreditTransaction, error) {
	return s.store.ListTransactions(ctx, accountID)
}

// RecordTransaction appends a ledger row within the caller's transaction and
// returns the new balance. Debits that would overdraw the wallet fail with
// ErrInsufficientFunds and write nothing.
func (s *Service) RecordTransaction(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int, kind, description string) (int, error) {
	switch kind {
	case models.TxKindPurchase, models.TxKindDebitUnlock, models.TxKindAdminAdjustment:
	default:
		return 0, fmt.Errorf("unknown transaction kind %q", kind)
	}
	return s.store.RecordTransaction(ctx, tx, accountID, amount, kind, description)
}

// ApplyTopup credits the account for a verified payment-gateway event.
// Idempotent per external reference: a redelivered event credits nothing and
// returns the current balance.
func (s *Service) ApplyTopup(ctx context.Context, accountID uuid.UUID, credits int, externalRef string) (int, error) {
	if credits <= 0 || externalRef == "" {
		return 0, ErrInvalidTopup
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	inserted, err := s.store.InsertTopupEvent(ctx, tx, accountID, credits, externalRef)
	if err != nil {
		return 0, err
	}
	if !inserted {
		s.log.Info("duplicate top-up delivery ignored", "account_id", accountID, "external_ref", externalRef)
		return s.store.Balance(ctx, accountID)
	}

	newBalance, err := s.store.RecordTransaction(ctx, tx, accountID, credits, models.TxKindPurchase,
		fmt.Sprintf("top-up %s", externalRef))
	if err != nil {
		return 0, err
	}

	if s.enqueue != nil {
		if err := s.enqueue(ctx, tx, notify.EventArgs{
			Event:     notify.EventTopupApplied,
			AccountID: accountID,
			Credits:   credits,
		}); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	s.log.Info("top-up applied", "account_id", accountID, "credits", credits, "external_ref", externalRef)
	return newBalance, nil
}

// Reconcile re-derives the balance from the transaction log and reports both
// values. Used by audit tooling; the two must always agree.
func (s *Service) Reconcile(ctx context.Context, accountID uuid.UUID) (balance, ledgerSum int, err error) {
	balance, err = s.store.Balance(ctx, accountID)
	if err != nil {
		return 0, 0, err
	}
	ledgerSum, err = s.store.SumTransactions(ctx, accountID)
	if err != nil {
		return 0, 0, err
	}
	if balance != ledgerSum {
		s.log.Error("wallet balance diverged from ledger", "account_id", accountID, "balance", balance, "ledger_sum", ledgerSum)
	}
	return balance, ledgerSum, nil
}
