package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kostmatch/backend/internal/models"
)

// Repository persists the credit ledger. The running total on
// accounts.balance is an optimization; credit_transactions is the source of
// truth and SumTransactions re-derives the balance for audit.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

// RecordTransaction appends a ledger row and moves the running balance in one
// atomic step. The conditional UPDATE both locks the wallet row and rejects
// any debit that would drive the balance negative.
func (r *Repository) RecordTransaction(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, amount int, kind, description string) (int, error) {
	var newBalance int
	err := tx.QueryRow(ctx, `
		UPDATE accounts SET balance = balance + $1, updated_at = now()
		WHERE id = $2 AND balance + $1 >= 0
		RETURNING balance
	`, amount, accountID).Scan(&newBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if checkErr := tx.QueryRow(ctx, `
			SELECT EXISTS (SELECT 1 FROM accounts WHERE id = $1)
		`, accountID).Scan(&exists); checkErr != nil {
			return 0, checkErr
		}
		if !exists {
			return 0, ErrAccountNotFound
		}
		return 0, ErrInsufficientFunds
	}
	if err != nil {
		return 0, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO credit_transactions (id, account_id, amount, kind, description)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), accountID, amount, kind, description)
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

func (r *Repository) Balance(ctx context.Context, accountID uuid.UUID) (int, error) {
	var balance int
	err := r.pool.QueryRow(ctx, `
		SELECT balance FROM accounts WHERE id = $1
	`, accountID).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrAccountNotFound
	}
	return balance, err
}

// SumTransactions derives the balance from the append-only log.
func (r *Repository) SumTransactions(ctx context.Context, accountID uuid.UUID) (int, error) {
	var sum int
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(amount), 0) FROM credit_transactions WHERE account_id = $1
	`, accountID).Scan(&sum)
	return sum, err
}

func (r *Repository) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*models.CreditTransaction, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, account_id, amount, kind, description, created_at
		FROM credit_transactions WHERE account_id = $1 ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.CreditTransaction
	for rows.Next() {
		var t models.CreditTransaction
		if err := rows.Scan(&t.ID, &t.AccountID, &t.Amount, &t.Kind, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &t)
	}
	return list, rows.Err()
}

// InsertTopupEvent records an external payment confirmation. Returns false
// when the external reference was already recorded (duplicate delivery).
func (r *Repository) InsertTopupEvent(ctx context.Context, tx pgx.Tx, accountID uuid.UUID, credits int, externalRef string) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO topup_events (id, account_id, credits, external_ref)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (external_ref) DO NOTHING
	`, uuid.New(), accountID, credits, externalRef)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *Repository) Stats(ctx context.Context, accountID uuid.UUID) (*Stats, error) {
	var s Stats
	var verifiedAt *time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT balance, trust_score, is_verified, verified_at
		FROM accounts WHERE id = $1
	`, accountID).Scan(&s.Balance, &s.TrustScore, &s.IsVerified, &verifiedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	s.VerifiedAt = verifiedAt
	return &s, nil
}
