package speedtest

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for speed sample persistence.
type Repository interface {
	Create(ctx context.Context, sample *Sample) error
	// RecentByDevice returns up to limit samples for one device, newest first
	// by timestamp.
	RecentByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*Sample, error)
	// Recent returns up to limit samples across all devices, newest first.
	Recent(ctx context.Context, limit int) ([]*Sample, error)
}
