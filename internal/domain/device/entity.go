package device

import (
	"time"

	"github.com/google/uuid"
)

// Device is the externally-verified identity anchor for a phone or hotspot.
// Registration and ownership checks happen in the identity service; the
// engine reads position and battery from it for ranking and keeps telemetry
// fields fresh.
type Device struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Fingerprint       string
	BatteryLevel      int
	Latitude          *float64
	Longitude         *float64
	BandwidthEstimate float64
	LastSeenAt        *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasPosition reports whether the device has ever reported coordinates.
// Devices without a position are invisible to ranking.
func (d *Device) HasPosition() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// IsOnline checks if the device reported telemetry within 5 minutes.
func (d *Device) IsOnline() bool {
	if d.LastSeenAt == nil {
		return false
	}
	return time.Since(*d.LastSeenAt) < 5*time.Minute
}
