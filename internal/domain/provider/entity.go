package provider

import (
	"time"

	"github.com/google/uuid"
)

// Availability is the single record per device describing whether it
// currently offers sharing and its last-reported capability. Created on the
// first report, updated thereafter, never deleted.
type Availability struct {
	DeviceID           uuid.UUID
	UserID             uuid.UUID
	IsAvailable        bool
	HotspotEnabled     bool
	EstimatedSpeedMbps float64
	MaxShareMbps       float64
	UpdatedAt          time.Time
}

// Candidate is one available provider as seen by the ranking engine: the
// availability record joined with the owning device's position and battery
// and the owner's trust score. It is a point-in-time copy; mutating it never
// touches stored state.
type Candidate struct {
	DeviceID           uuid.UUID
	UserID             uuid.UUID
	EstimatedSpeedMbps float64
	BatteryLevel       int
	Latitude           *float64
	Longitude          *float64
	TrustScore         int
}

// HasPosition reports whether the candidate carries coordinates.
func (c *Candidate) HasPosition() bool {
	return c.Latitude != nil && c.Longitude != nil
}
