package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kostmatch/backend/internal/models"
	"github.com/kostmatch/backend/internal/trust"
)

type ListingRepo struct {
	pool *pgxpool.Pool
}

func NewListingRepo(pool *pgxpool.Pool) *ListingRepo {
	return &ListingRepo{pool: pool}
}

const listingColumns = `l.id, l.account_id, l.title, l.location, l.description, ac.is_verified, ac.trust_score, l.created_at`

func (r *ListingRepo) Create(ctx context.Context, l *models.Listing) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)
	err = tx.QueryRow(ctx, `
		INSERT INTO listings (id, account_id, title, location, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, l.ID, l.AccountID, l.Title, l.Location, l.Description).Scan(&l.CreatedAt)
	if err != nil {
		return err
	}
	for i := range l.Units {
		u := &l.Units[i]
		u.ListingID = l.ID
		_, err = tx.Exec(ctx, `
			INSERT INTO listing_units (id, listing_id, name, price, amenities)
			VALUES ($1, $2, $3, $4, $5)
		`, u.ID, u.ListingID, u.Name, u.Price, u.Amenities)
		if err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *ListingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var l models.Listing
	err := r.pool.QueryRow(ctx, `
		SELECT `+listingColumns+`
		FROM listings l INNER JOIN accounts ac ON ac.id = l.account_id
		WHERE l.id = $1
	`, id).Scan(&l.ID, &l.AccountID, &l.Title, &l.Location, &l.Description, &l.OwnerVerified, &l.OwnerTrustScore, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := r.loadUnits(ctx, []*models.Listing{&l}); err != nil {
		return nil, err
	}
	return &l, nil
}

// ListVisible returns listings eligible for matching: owners at or above the
// public-visibility trust floor, newest first.
func (r *ListingRepo) ListVisible(ctx context.Context) ([]*models.Listing, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+listingColumns+`
		FROM listings l INNER JOIN accounts ac ON ac.id = l.account_id
		WHERE ac.trust_score >= $1
		ORDER BY l.created_at DESC
	`, trust.MinVisibleScore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []*models.Listing
	for rows.Next() {
		var l models.Listing
		if err := rows.Scan(&l.ID, &l.AccountID, &l.Title, &l.Location, &l.Description, &l.OwnerVerified, &l.OwnerTrustScore, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadUnits(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *ListingRepo) loadUnits(ctx context.Context, listings []*models.Listing) error {
	if len(listings) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.Listing, len(listings))
	ids := make([]uuid.UUID, 0, len(listings))
	for _, l := range listings {
		byID[l.ID] = l
		ids = append(ids, l.ID)
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, listing_id, name, price, amenities
		FROM listing_units WHERE listing_id = ANY($1)
		ORDER BY price ASC
	`, ids)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var u models.Unit
		if err := rows.Scan(&u.ID, &u.ListingID, &u.Name, &u.Price, &u.Amenities); err != nil {
			return err
		}
		l := byID[u.ListingID]
		l.Units = append(l.Units, u)
	}
	return rows.Err()
}
