package trust

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainTrust "neighbornet/internal/domain/trust"
	"neighbornet/internal/locks"
	"neighbornet/internal/logger"
	appErrors "neighbornet/pkg/errors"
)

// Service is the trust score ledger. Adjustments are read-modify-write, so
// they are serialized per user; reads and unrelated users stay concurrent.
type Service struct {
	trustRepo domainTrust.Repository
	userLocks *locks.KeyedMutex
}

// NewService creates a new trust service.
func NewService(trustRepo domainTrust.Repository) *Service {
	return &Service{
		trustRepo: trustRepo,
		userLocks: locks.NewKeyedMutex(),
	}
}

// Get returns the user's current score. Users that have never been adjusted
// get trust.DefaultScore.
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (int, error) {
	score, err := s.trustRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domainTrust.ErrScoreNotFound) {
			return domainTrust.DefaultScore, nil
		}
		return 0, appErrors.Internal(err)
	}
	return score.Score, nil
}

// Adjust applies a delta to the user's score and clamps the result into
// [0,100]. The read-modify-write is atomic per user.
func (s *Service) Adjust(ctx context.Context, userID uuid.UUID, delta int) (int, error) {
	s.userLocks.Lock(userID.String())
	defer s.userLocks.Unlock(userID.String())

	current := domainTrust.DefaultScore
	stored, err := s.trustRepo.Get(ctx, userID)
	if err != nil && !errors.Is(err, domainTrust.ErrScoreNotFound) {
		return 0, appErrors.Internal(err)
	}
	if stored != nil {
		current = stored.Score
	}

	updated := domainTrust.Clamp(current + delta)

	if err := s.trustRepo.Save(ctx, &domainTrust.Score{
		UserID:    userID,
		Score:     updated,
		UpdatedAt: time.Now(),
	}); err != nil {
		return 0, appErrors.Internal(err)
	}

	logger.Info("Trust score adjusted",
		zap.String("user_id", userID.String()),
		zap.Int("delta", delta),
		zap.Int("score", updated),
		zap.String("event", "trust_adjusted"),
	)

	return updated, nil
}
