package speedtest

import (
	"time"

	"github.com/google/uuid"
)

// Sample is one reported speed measurement. Samples are append-only and
// retained indefinitely.
type Sample struct {
	ID           uuid.UUID
	DeviceID     uuid.UUID
	UploadMbps   float64
	DownloadMbps float64
	LatencyMs    float64
	Timestamp    time.Time
}

// Stats aggregates samples over a most-recent-first bounded window.
type Stats struct {
	Count           int
	AvgUploadMbps   float64
	AvgDownloadMbps float64
	AvgLatencyMs    float64
	MaxDownloadMbps float64
	MinLatencyMs    float64
	LastSampleAt    *time.Time
}
