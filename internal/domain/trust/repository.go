package trust

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for trust score persistence.
type Repository interface {
	// Get returns the stored score or ErrScoreNotFound for unseen users.
	Get(ctx context.Context, userID uuid.UUID) (*Score, error)
	// Save upserts the score for a user.
	Save(ctx context.Context, score *Score) error
}
