package trust

import (
	"time"

	"github.com/google/uuid"
)

const (
	// MinScore and MaxScore bound every stored trust score.
	MinScore = 0
	MaxScore = 100

	// DefaultScore is returned for users that have never been adjusted.
	// Neutral midpoint of the [0,100] range.
	DefaultScore = 50
)

// Score is the bounded reputation value for one user identity.
type Score struct {
	UserID    uuid.UUID
	Score     int
	UpdatedAt time.Time
}

// Clamp bounds a raw score into [MinScore, MaxScore].
func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
