package provider

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for availability repository operations.
type Repository interface {
	Upsert(ctx context.Context, availability *Availability) error
	GetByDevice(ctx context.Context, deviceID uuid.UUID) (*Availability, error)
	// Disable forces is_available and hotspot_enabled off in one write.
	Disable(ctx context.Context, deviceID uuid.UUID) error
	// ListAvailable returns a consistent point-in-time copy of every record
	// with is_available = true, joined with device position/battery and owner
	// trust score. Records mid-write are never visible.
	ListAvailable(ctx context.Context) ([]*Candidate, error)
}
