// Package unlock orchestrates the paid contact reveal: price the lead, debit
// the wallet, and record the unlock in one atomic transaction. The unique
// (requesting_account_id, lead_id) constraint on unlock_records is the
// concurrency guard that makes the operation exactly-once per account+lead.
package unlock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kostmatch/backend/internal/models"
	"github.com/kostmatch/backend/internal/notify"
	"github.com/kostmatch/backend/internal/pricing"
	"github.com/kostmatch/backend/internal/wallet"
)

// Result statuses. Callers branch on Status, never on Message.
const (
	StatusUnlocked            = "unlocked"
	StatusAlreadyUnlocked     = "already_unlocked"
	StatusInsufficientCredits = "insufficient_credits"
	StatusNotFound            = "not_found"
)

// ErrConflict is returned when the transaction keeps losing serialization
// conflicts. Transient: retrying the whole call is safe and never
// double-charges, because state is re-validated inside the transaction.
var ErrConflict = errors.New("concurrent unlock conflict")

const maxConflictRetries = 3

// Result is the structured outcome of an unlock attempt.
type Result struct {
	Status           string  `json:"status"`
	RemainingBalance int     `json:"remaining_balance"`
	RevealedContact  *string `json:"revealed_contact"`
	CostCharged      int     `json:"cost_charged"`
	Message          string  `json:"message"`
}

// LeadStore is the persistence contract the gateway needs around leads.
// Missing rows surface as pgx.ErrNoRows; absent unlock records as (nil, nil).
type LeadStore interface {
	GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error)
	GetUnlockRecord(ctx context.Context, requesterID, leadID uuid.UUID) (*models.UnlockRecord, error)
	GetUnlockRecordTx(ctx context.Context, tx pgx.Tx, requesterID, leadID uuid.UUID) (*models.UnlockRecord, error)
	CreateUnlockRecordTx(ctx context.Context, tx pgx.Tx, rec *models.UnlockRecord) error
	MarkLeadUnlockedTx(ctx context.Context, tx pgx.Tx, leadID uuid.UUID) error
	OwnerContact(ctx context.Context, accountID uuid.UUID) (string, error)
	SubjectReferenceAmount(ctx context.Context, lead *models.Lead) (int, error)
}

// Wallet is the subset of the ledger the gateway uses.
type Wallet interface {
	Balance(ctx context.Context, accountID uuid.UUID) (int, error)
	RecordTransaction(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int, kind, description string) (int, error)
}

// TxBeginner abstracts transaction creation so tests don't need a pgxpool.Pool.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type Service struct {
	pool    TxBeginner
	leads   LeadStore
	wallet  Wallet
	enqueue notify.EnqueueTxFunc
	log     *slog.Logger
}

// NewService returns an unlock gateway. enqueue may be nil to disable
// notification events.
func NewService(pool TxBeginner, leads LeadStore, w Wallet, enqueue notify.EnqueueTxFunc, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{pool: pool, leads: leads, wallet: w, enqueue: enqueue, log: log}
}

// Unlock reveals the lead owner's contact to the requesting account, charging
// the priced cost exactly once. Idempotent: a repeat call returns the cached
// contact with no new charge. Serialization conflicts are retried here; every
// retry re-validates inside the transaction.
func (s *Service) Unlock(ctx context.Context, requesterID, leadID uuid.UUID) (*Result, error) {
	var lastErr error
	for attempt := 0; attempt < maxConflictRetries; attempt++ {
		res, err := s.unlockOnce(ctx, requesterID, leadID)
		if err != nil && isRetryableTxError(err) {
			lastErr = err
			s.log.Warn("unlock transaction conflict, retrying", "lead_id", leadID, "attempt", attempt+1)
			continue
		}
		return res, err
	}
	return nil, fmt.Errorf("%w: %v", ErrConflict, lastErr)
}

func (s *Service) unlockOnce(ctx context.Context, requesterID, leadID uuid.UUID) (*Result, error) {
	lead, err := s.leads.GetLead(ctx, leadID)
	if errors.Is(err, pgx.ErrNoRows) {
		return &Result{Status: StatusNotFound, Message: "lead not found"}, nil
	}
	if err != nil {
		return nil, err
	}
	// Only the account that created the lead may pay for it. Foreign leads
	// are hidden the same way missing ones are.
	if lead.RequestingAccountID != requesterID {
		return &Result{Status: StatusNotFound, Message: "lead not found"}, nil
	}

	if rec, err := s.leads.GetUnlockRecord(ctx, requesterID, leadID); err != nil {
		return nil, err
	} else if rec != nil {
		return s.alreadyUnlocked(ctx, requesterID, lead, rec)
	}

	refAmount, err := s.leads.SubjectReferenceAmount(ctx, lead)
	if err != nil {
		return nil, err
	}
	cost := pricing.CostFor(refAmount)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// Re-check inside the transaction: guards the race where two calls pass
	// the pre-check concurrently.
	rec, err := s.leads.GetUnlockRecordTx(ctx, tx, requesterID, leadID)
	if err != nil {
		return nil, err
	}
	if rec != nil {
		return s.alreadyUnlocked(ctx, requesterID, lead, rec)
	}

	newBalance, err := s.wallet.RecordTransaction(ctx, tx, requesterID, -cost, models.TxKindDebitUnlock,
		fmt.Sprintf("unlock lead %s", lead.ID))
	if errors.Is(err, wallet.ErrInsufficientFunds) {
		balance, balErr := s.wallet.Balance(ctx, requesterID)
		if balErr != nil {
			return nil, balErr
		}
		return &Result{
			Status:           StatusInsufficientCredits,
			RemainingBalance: balance,
			CostCharged:      cost,
			Message:          fmt.Sprintf("unlock costs %d credits, balance is %d", cost, balance),
		}, nil
	}
	if err != nil {
		return nil, err
	}

	rec = &models.UnlockRecord{
		ID:                  uuid.New(),
		RequestingAccountID: requesterID,
		LeadID:              lead.ID,
		Status:              models.UnlockStatusUnlocked,
		CostCharged:         cost,
	}
	if err := s.leads.CreateUnlockRecordTx(ctx, tx, rec); err != nil {
		if isUniqueViolation(err) {
			// Lost the insert race; the transaction rolls back, undoing the
			// debit, and the competing unlock serves the idempotent path.
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				return nil, rbErr
			}
			existing, recErr := s.leads.GetUnlockRecord(ctx, requesterID, leadID)
			if recErr != nil {
				return nil, recErr
			}
			if existing == nil {
				return nil, err
			}
			return s.alreadyUnlocked(ctx, requesterID, lead, existing)
		}
		return nil, err
	}

	if err := s.leads.MarkLeadUnlockedTx(ctx, tx, lead.ID); err != nil {
		return nil, err
	}

	if s.enqueue != nil {
		id := lead.ID
		if err := s.enqueue(ctx, tx, notify.EventArgs{
			Event:     notify.EventLeadUnlocked,
			AccountID: lead.OwnerAccountID,
			LeadID:    &id,
			Credits:   cost,
		}); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	contact, err := s.leads.OwnerContact(ctx, lead.OwnerAccountID)
	if err != nil {
		return nil, err
	}
	s.log.Info("lead unlocked", "lead_id", lead.ID, "account_id", requesterID, "cost", cost)
	return &Result{
		Status:           StatusUnlocked,
		RemainingBalance: newBalance,
		RevealedContact:  &contact,
		CostCharged:      cost,
		Message:          "lead unlocked",
	}, nil
}

// alreadyUnlocked is the idempotent success path: previously revealed contact,
// current balance, no new charge.
func (s *Service) alreadyUnlocked(ctx context.Context, requesterID uuid.UUID, lead *models.Lead, rec *models.UnlockRecord) (*Result, error) {
	contact, err := s.leads.OwnerContact(ctx, lead.OwnerAccountID)
	if err != nil {
		return nil, err
	}
	balance, err := s.wallet.Balance(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	return &Result{
		Status:           StatusAlreadyUnlocked,
		RemainingBalance: balance,
		RevealedContact:  &contact,
		CostCharged:      rec.CostCharged,
		Message:          "lead already unlocked, no charge",
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && (pgErr.Code == "40001" || pgErr.Code == "40P01")
}
