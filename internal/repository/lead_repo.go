package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kostmatch/backend/internal/models"
)

type LeadRepo struct {
	pool *pgxpool.Pool
}

func NewLeadRepo(pool *pgxpool.Pool) *LeadRepo {
	return &LeadRepo{pool: pool}
}

func (r *LeadRepo) Create(ctx context.Context, l *models.Lead) error {
	return r.pool.QueryRow(ctx, `
		INSERT INTO leads (id, subject_type, subject_ref, owner_account_id, requesting_account_id, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, l.ID, l.SubjectType, l.SubjectRef, l.OwnerAccountID, l.RequestingAccountID, l.Status).Scan(&l.CreatedAt)
}

func (r *LeadRepo) GetLead(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	var l models.Lead
	err := r.pool.QueryRow(ctx, `
		SELECT id, subject_type, subject_ref, owner_account_id, requesting_account_id, status, created_at
		FROM leads WHERE id = $1
	`, id).Scan(&l.ID, &l.SubjectType, &l.SubjectRef, &l.OwnerAccountID, &l.RequestingAccountID, &l.Status, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListByRequester returns the account's leads, newest first.
func (r *LeadRepo) ListByRequester(ctx context.Context, accountID uuid.UUID) ([]*models.Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, subject_type, subject_ref, owner_account_id, requesting_account_id, status, created_at
		FROM leads WHERE requesting_account_id = $1 ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Lead
	for rows.Next() {
		var l models.Lead
		if err := rows.Scan(&l.ID, &l.SubjectType, &l.SubjectRef, &l.OwnerAccountID, &l.RequestingAccountID, &l.Status, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &l)
	}
	return list, rows.Err()
}

const unlockRecordColumns = `id, requesting_account_id, lead_id, status, cost_charged, unlocked_at`

// GetUnlockRecord returns (nil, nil) when the account has not paid for the
// lead. pgx.ErrNoRows never escapes this method.
func (r *LeadRepo) GetUnlockRecord(ctx context.Context, requesterID, leadID uuid.UUID) (*models.UnlockRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+unlockRecordColumns+`
		FROM unlock_records WHERE requesting_account_id = $1 AND lead_id = $2
	`, requesterID, leadID)
	return scanUnlockRecord(row)
}

func (r *LeadRepo) GetUnlockRecordTx(ctx context.Context, tx pgx.Tx, requesterID, leadID uuid.UUID) (*models.UnlockRecord, error) {
	row := tx.QueryRow(ctx, `
		SELECT `+unlockRecordColumns+`
		FROM unlock_records WHERE requesting_account_id = $1 AND lead_id = $2
	`, requesterID, leadID)
	return scanUnlockRecord(row)
}

func scanUnlockRecord(row pgx.Row) (*models.UnlockRecord, error) {
	var rec models.UnlockRecord
	err := row.Scan(&rec.ID, &rec.RequestingAccountID, &rec.LeadID, &rec.Status, &rec.CostCharged, &rec.UnlockedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateUnlockRecordTx inserts the paid-unlock row. A unique violation on
// (requesting_account_id, lead_id) surfaces as *pgconn.PgError code 23505,
// which the unlock gateway treats as "someone else paid first".
func (r *LeadRepo) CreateUnlockRecordTx(ctx context.Context, tx pgx.Tx, rec *models.UnlockRecord) error {
	return tx.QueryRow(ctx, `
		INSERT INTO unlock_records (id, requesting_account_id, lead_id, status, cost_charged)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING unlocked_at
	`, rec.ID, rec.RequestingAccountID, rec.LeadID, rec.Status, rec.CostCharged).Scan(&rec.UnlockedAt)
}

func (r *LeadRepo) MarkLeadUnlockedTx(ctx context.Context, tx pgx.Tx, leadID uuid.UUID) error {
	_, err := tx.Exec(ctx, `UPDATE leads SET status = $2 WHERE id = $1`, leadID, models.LeadStatusUnlocked)
	return err
}

func (r *LeadRepo) OwnerContact(ctx context.Context, accountID uuid.UUID) (string, error) {
	var phone string
	err := r.pool.QueryRow(ctx, `SELECT contact_phone FROM accounts WHERE id = $1`, accountID).Scan(&phone)
	return phone, err
}

// SubjectReferenceAmount resolves the rupiah amount the pricing tiers run on:
// the cheapest unit price for a listing lead, the stated budget for a
// housing-request lead. Missing prices resolve to 0 (basic tier).
func (r *LeadRepo) SubjectReferenceAmount(ctx context.Context, lead *models.Lead) (int, error) {
	switch lead.SubjectType {
	case models.LeadSubjectListingContact:
		var price *int
		err := r.pool.QueryRow(ctx, `
			SELECT MIN(price) FROM listing_units WHERE listing_id = $1
		`, lead.SubjectRef).Scan(&price)
		if err != nil {
			return 0, err
		}
		if price == nil {
			return 0, nil
		}
		return *price, nil
	case models.LeadSubjectRequestContact:
		var minBudget, maxBudget int
		err := r.pool.QueryRow(ctx, `
			SELECT min_budget, max_budget FROM housing_requests WHERE id = $1
		`, lead.SubjectRef).Scan(&minBudget, &maxBudget)
		if err != nil {
			return 0, err
		}
		req := models.HousingRequest{MinBudget: minBudget, MaxBudget: maxBudget}
		return req.Budget(), nil
	default:
		return 0, fmt.Errorf("unknown lead subject type %q", lead.SubjectType)
	}
}
