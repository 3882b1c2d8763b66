// Package trust owns the per-account reputation score. Scores move only in
// response to external events (verification approval, report outcomes); the
// event feed supplies the magnitude, this package enforces the range.
package trust

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

const (
	MinScore = 0
	MaxScore = 100

	// MinVisibleScore is the floor below which an account's listings are
	// dropped from public surfaces.
	MinVisibleScore = 25
)

// ErrEmptyReason rejects score events without an auditable reason.
var ErrEmptyReason = errors.New("trust event reason is required")

// Store persists trust scores and the event trail behind them.
type Store interface {
	ApplyDelta(ctx context.Context, accountID uuid.UUID, delta int, reason string) (newScore int, err error)
	TrustScore(ctx context.Context, accountID uuid.UUID) (int, error)
}

// Service applies external trust events to accounts.
type Service struct {
	store Store
	log   *slog.Logger
}

func NewService(store Store, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, log: log}
}

// ApplyEvent applies a signed delta to the account's trust score, clamped to
// [MinScore, MaxScore], and returns the new score.
func (s *Service) ApplyEvent(ctx context.Context, accountID uuid.UUID, delta int, reason string) (int, error) {
	if reason == "" {
		return 0, ErrEmptyReason
	}
	newScore, err := s.store.ApplyDelta(ctx, accountID, delta, reason)
	if err != nil {
		return 0, err
	}
	s.log.Info("trust score updated", "account_id", accountID, "delta", delta, "reason", reason, "score", newScore)
	return newScore, nil
}

// Score returns the account's current trust score.
func (s *Service) Score(ctx context.Context, accountID uuid.UUID) (int, error) {
	return s.store.TrustScore(ctx, accountID)
}
