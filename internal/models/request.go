package models

import (
	"time"

	"github.com/google/uuid"
)

// HousingRequest is a seeker's posted want. Room-type and amenity wishes are
// mined from the free-text description by the matching package.
type HousingRequest struct {
	ID          uuid.UUID `json:"id"`
	AccountID   uuid.UUID `json:"account_id"`
	Locations   []string  `json:"locations"`
	MinBudget   int       `json:"min_budget"`
	MaxBudget   int       `json:"max_budget"`
	Description string    `json:"description"`
	IsUrgent    bool      `json:"is_urgent"`
	CreatedAt   time.Time `json:"created_at"`
}

// Budget returns the budget used for compatibility scoring: max_budget,
// falling back to min_budget, else 0 (unspecified).
func (r *HousingRequest) Budget() int {
	if r.MaxBudget > 0 {
		return r.MaxBudget
	}
	if r.MinBudget > 0 {
		return r.MinBudget
	}
	return 0
}
