package ingestion

import (
	"fmt"

	"github.com/google/uuid"
)

// SpeedSampleMessage is a speed measurement published by a device.
type SpeedSampleMessage struct {
	DeviceID     string  `json:"device_id"`
	UploadMbps   float64 `json:"upload_mbps"`
	DownloadMbps float64 `json:"download_mbps"`
	LatencyMs    float64 `json:"latency_ms"`
}

func (m *SpeedSampleMessage) Validate() (uuid.UUID, error) {
	deviceID, err := uuid.Parse(m.DeviceID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid device_id: %w", err)
	}
	if m.UploadMbps < 0 || m.DownloadMbps < 0 || m.LatencyMs < 0 {
		return uuid.Nil, fmt.Errorf("speed values must be non-negative")
	}
	return deviceID, nil
}

// AvailabilityMessage is an availability report published by a device.
type AvailabilityMessage struct {
	DeviceID           string   `json:"device_id"`
	IsAvailable        bool     `json:"is_available"`
	HotspotEnabled     *bool    `json:"hotspot_enabled"`
	EstimatedSpeedMbps *float64 `json:"estimated_speed_mbps"`
	MaxShareMbps       *float64 `json:"max_share_mbps"`
}

func (m *AvailabilityMessage) Validate() (uuid.UUID, error) {
	deviceID, err := uuid.Parse(m.DeviceID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid device_id: %w", err)
	}
	if m.EstimatedSpeedMbps != nil && *m.EstimatedSpeedMbps < 0 {
		return uuid.Nil, fmt.Errorf("estimated_speed_mbps must be non-negative")
	}
	if m.MaxShareMbps != nil && *m.MaxShareMbps < 0 {
		return uuid.Nil, fmt.Errorf("max_share_mbps must be non-negative")
	}
	return deviceID, nil
}

// BatteryMessage is a battery/position heartbeat published by a device.
type BatteryMessage struct {
	DeviceID     string   `json:"device_id"`
	BatteryLevel int      `json:"battery_level"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
}

func (m *BatteryMessage) Validate() (uuid.UUID, error) {
	deviceID, err := uuid.Parse(m.DeviceID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid device_id: %w", err)
	}
	if m.BatteryLevel < 0 || m.BatteryLevel > 100 {
		return uuid.Nil, fmt.Errorf("battery_level must be between 0 and 100")
	}
	if (m.Latitude == nil) != (m.Longitude == nil) {
		return uuid.Nil, fmt.Errorf("latitude and longitude must be reported together")
	}
	if m.Latitude != nil {
		if *m.Latitude < -90 || *m.Latitude > 90 || *m.Longitude < -180 || *m.Longitude > 180 {
			return uuid.Nil, fmt.Errorf("coordinates out of range")
		}
	}
	return deviceID, nil
}
