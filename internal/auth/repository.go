package auth

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kostmatch/backend/internal/models"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new account. Balance starts at zero and the trust score at
// the registration default.
func (r *Repository) Create(ctx context.Context, a *models.Account) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO accounts (id, email, display_name, password_hash, role, contact_phone, balance, trust_score, is_verified)
		VALUES ($1, $2, $3, $4, $5, $6, 0, $7, FALSE)
		RETURNING created_at, updated_at
	`, a.ID, a.Email, a.DisplayName, a.PasswordHash, a.Role, a.ContactPhone, models.DefaultTrustScore).Scan(&a.CreatedAt, &a.UpdatedAt)
}

// GetByEmail returns the account for login, or nil when the email is unknown.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	var a models.Account
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, display_name, password_hash, role, contact_phone, balance, trust_score, is_verified, verified_at, created_at, updated_at
		FROM accounts WHERE email = $1
	`, email).Scan(&a.ID, &a.Email, &a.DisplayName, &a.PasswordHash, &a.Role, &a.ContactPhone, &a.Balance, &a.TrustScore, &a.IsVerified, &a.VerifiedAt, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}
