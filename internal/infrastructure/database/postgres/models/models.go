package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceModel is the database model for registered devices.
type DeviceModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID            uuid.UUID  `gorm:"type:uuid;not null;index"`
	Fingerprint       string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	BatteryLevel      int        `gorm:"not null;default:100"`
	Latitude          *float64   `gorm:"type:double precision"`
	Longitude         *float64   `gorm:"type:double precision"`
	BandwidthEstimate float64    `gorm:"not null;default:0"`
	LastSeenAt        *time.Time `gorm:"index"`
	CreatedAt         time.Time  `gorm:"not null"`
	UpdatedAt         time.Time  `gorm:"not null"`
}

func (DeviceModel) TableName() string {
	return "devices"
}

// AvailabilityModel is the database model for provider availability, one row
// per device.
type AvailabilityModel struct {
	DeviceID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID             uuid.UUID `gorm:"type:uuid;not null;index"`
	IsAvailable        bool      `gorm:"not null;default:false;index"`
	HotspotEnabled     bool      `gorm:"not null;default:false"`
	EstimatedSpeedMbps float64   `gorm:"not null;default:0"`
	MaxShareMbps       float64   `gorm:"not null;default:0"`
	UpdatedAt          time.Time `gorm:"not null"`
}

func (AvailabilityModel) TableName() string {
	return "provider_availabilities"
}

// SpeedSampleModel is the append-only database model for speed samples.
type SpeedSampleModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	DeviceID     uuid.UUID `gorm:"type:uuid;not null;index:idx_speed_samples_device_ts,priority:1"`
	UploadMbps   float64   `gorm:"not null"`
	DownloadMbps float64   `gorm:"not null"`
	LatencyMs    float64   `gorm:"not null"`
	Timestamp    time.Time `gorm:"not null;index:idx_speed_samples_device_ts,priority:2,sort:desc;index"`
}

func (SpeedSampleModel) TableName() string {
	return "speed_samples"
}

// TrustScoreModel is the database model for per-user trust scores.
type TrustScoreModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	Score     int       `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (TrustScoreModel) TableName() string {
	return "trust_scores"
}

// SessionModel is the database model for sharing sessions.
type SessionModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ProviderDeviceID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	RequesterDeviceID uuid.UUID  `gorm:"type:uuid;not null;index"`
	ProviderUserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	RequesterUserID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	StartTime         time.Time  `gorm:"not null;index"`
	EndTime           *time.Time `gorm:"index"`
	TotalBytesShared  int64      `gorm:"not null;default:0"`
	State             string     `gorm:"type:varchar(20);not null;index"`
}

func (SessionModel) TableName() string {
	return "provider_sessions"
}
