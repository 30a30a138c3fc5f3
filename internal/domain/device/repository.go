package device

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for device repository operations
type Repository interface {
	Create(ctx context.Context, device *Device) error
	GetByID(ctx context.Context, deviceID uuid.UUID) (*Device, error)
	GetByUser(ctx context.Context, userID uuid.UUID) ([]*Device, error)
	UpdatePosition(ctx context.Context, deviceID uuid.UUID, latitude, longitude float64) error
	UpdateBattery(ctx context.Context, deviceID uuid.UUID, batteryLevel int) error
	UpdateBandwidthEstimate(ctx context.Context, deviceID uuid.UUID, estimateMbps float64) error
	UpdateLastSeen(ctx context.Context, deviceID uuid.UUID) error
}
