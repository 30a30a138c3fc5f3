package session

import (
	"time"

	"github.com/google/uuid"
)

// State is the lifecycle state of a sharing session.
type State string

const (
	StateActive State = "active"
	StateEnded  State = "ended"
)

// Session tracks one provider-requester pairing from start to end, with byte
// accounting. A session is mutated exactly once after creation, by End.
type Session struct {
	ID                uuid.UUID
	ProviderDeviceID  uuid.UUID
	RequesterDeviceID uuid.UUID
	ProviderUserID    uuid.UUID
	RequesterUserID   uuid.UUID
	StartTime         time.Time
	EndTime           *time.Time
	TotalBytesShared  int64
	State             State
}

// IsActive reports whether the session has not been ended yet.
func (s *Session) IsActive() bool {
	return s.State == StateActive
}
