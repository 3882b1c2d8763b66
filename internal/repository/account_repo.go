package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kostmatch/backend/internal/models"
)

type AccountRepo struct {
	pool *pgxpool.Pool
}

func NewAccountRepo(pool *pgxpool.Pool) *AccountRepo {
	return &AccountRepo{pool: pool}
}

func (r *AccountRepo) Create(ctx context.Context, a *models.Account) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, email, display_name, password_hash, role, contact_phone, balance, trust_score, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at
	`, a.ID, a.Email, a.DisplayName, a.PasswordHash, a.Role, a.ContactPhone, a.Balance, a.TrustScore, a.IsVerified).Scan(&a.CreatedAt, &a.UpdatedAt)
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, role, contact_phone, balance, trust_score, is_verified, verified_at, created_at, updated_at
		FROM accounts WHERE id = $1
	`, id).Scan(&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &a.Role, &a.ContactPhone, &a.Balance, &a.TrustScore, &a.IsVerified, &a.VerifiedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, role, contact_phone, balance, trust_score, is_verified, verified_at, created_at, updated_at
		FROM accounts WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &a.Role, &a.ContactPhone, &a.Balance, &a.TrustScore, &a.IsVerified, &a.VerifiedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) UpdateContactPhone(ctx context.Context, id uuid.UUID, phone string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE accounts SET contact_phone = $2, updated_at = now() WHERE id = $1
	`, id, phone)
	return err
}

// ContactPhone reads only the protected contact column. The unlock gateway
// calls this after payment has committed.
func (r *AccountRepo) ContactPhone(ctx context.Context, id uuid.UUID) (string, error) {
	var phone string
	err := r.pool.QueryRow(ctx, `SELECT contact_phone FROM accounts WHERE id = $1`, id).Scan(&phone)
	return phone, err
}

// SetVerified marks the account identity-verified and stamps the time.
func (r *AccountRepo) SetVerified(ctx context.Context, id uuid.UUID, verifiedAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE accounts SET is_verified = TRUE, verified_at = $2, updated_at = now() WHERE id = $1
	`, id, verifiedAt)
	return err
}

// ApplyDelta moves the trust score by delta, clamped to [0, 100] in SQL, and
// writes the audit row in the same transaction. Returns the clamped score.
func (r *AccountRepo) ApplyDelta(ctx context.Context, accountID uuid.UUID, delta int, reason string) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)
	var newScore int
	err = tx.QueryRow(ctx, `
		UPDATE accounts SET trust_score = LEAST(100, GREATEST(0, trust_score + $1)), updated_at = now()
		WHERE id = $2
		RETURNING trust_score
	`, delta, accountID).Scan(&newScore)
	if err != nil {
		return 0, err
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO trust_events (id, account_id, delta, reason)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), accountID, delta, reason)
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newScore, nil
}

func (r *AccountRepo) TrustScore(ctx context.Context, accountID uuid.UUID) (int, error) {
	var score int
	err := r.pool.QueryRow(ctx, `SELECT trust_score FROM accounts WHERE id = $1`, accountID).Scan(&score)
	return score, err
}
