package session

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for session persistence.
type Repository interface {
	Create(ctx context.Context, session *Session) error
	GetByID(ctx context.Context, sessionID uuid.UUID) (*Session, error)
	// End transitions a session to ended with the final byte count. The
	// coordinator guarantees the session is active before calling.
	End(ctx context.Context, session *Session) error
	// ListByUser returns sessions where the user held either role, newest
	// start time first.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Session, error)
	ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*Session, error)
	ListByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*Session, error)
	// HasActiveForDevice reports whether the device holds an active session
	// in either role.
	HasActiveForDevice(ctx context.Context, deviceID uuid.UUID) (bool, error)
	// SumBytesByUser totals bytes shared across all sessions where the user
	// held either role.
	SumBytesByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
