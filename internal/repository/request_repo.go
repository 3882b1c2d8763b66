package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kostmatch/backend/internal/models"
)

type RequestRepo struct {
	pool *pgxpool.Pool
}

func NewRequestRepo(pool *pgxpool.Pool) *RequestRepo {
	return &RequestRepo{pool: pool}
}

const requestColumns = `id, account_id, locations, min_budget, max_budget, description, is_urgent, created_at`

func (r *RequestRepo) Create(ctx context.Context, req *models.HousingRequest) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO housing_requests (id, account_id, locations, min_budget, max_budget, description, is_urgent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, req.ID, req.AccountID, req.Locations, req.MinBudget, req.MaxBudget, req.Description, req.IsUrgent).Scan(&req.CreatedAt)
}

func (r *RequestRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.HousingRequest, error) {
	var req models.HousingRequest
	err := r.pool.QueryRow(ctx, `
		SELECT `+requestColumns+` FROM housing_requests WHERE id = $1
	`, id).Scan(&req.ID, &req.AccountID, &req.Locations, &req.MinBudget, &req.MaxBudget, &req.Description, &req.IsUrgent, &req.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepo) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*models.HousingRequest, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+requestColumns+` FROM housing_requests WHERE account_id = $1 ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.HousingRequest
	for rows.Next() {
		var req models.HousingRequest
		if err := rows.Scan(&req.ID, &req.AccountID, &req.Locations, &req.MinBudget, &req.MaxBudget, &req.Description, &req.IsUrgent, &req.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &req)
	}
	return list, rows.Err()
}
