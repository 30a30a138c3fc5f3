package provider

import (
	"time"

	"github.com/google/uuid"

	domainProvider "neighbornet/internal/domain/provider"
)

type SetAvailabilityRequest struct {
	IsAvailable        bool     `json:"is_available"`
	HotspotEnabled     *bool    `json:"hotspot_enabled"`
	EstimatedSpeedMbps *float64 `json:"estimated_speed_mbps" validate:"omitempty,gte=0"`
	MaxShareMbps       *float64 `json:"max_share_mbps" validate:"omitempty,gte=0"`
}

type NearbyRequest struct {
	Latitude  float64 `form:"latitude" validate:"latitude"`
	Longitude float64 `form:"longitude" validate:"longitude"`
	RadiusKm  float64 `form:"radius_km" validate:"omitempty,gt=0,lte=100"`
}

type AvailabilityResponse struct {
	DeviceID           uuid.UUID `json:"device_id"`
	UserID             uuid.UUID `json:"user_id"`
	IsAvailable        bool      `json:"is_available"`
	HotspotEnabled     bool      `json:"hotspot_enabled"`
	EstimatedSpeedMbps float64   `json:"estimated_speed_mbps"`
	MaxShareMbps       float64   `json:"max_share_mbps"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type ProviderStatusResponse struct {
	AvailabilityResponse
	TrustScore int `json:"trust_score"`
}

// RankingResult is one ranked candidate. CompositeScore is always in [0,1]
// and deterministic given identical inputs and weights.
type RankingResult struct {
	DeviceID           uuid.UUID `json:"device_id"`
	UserID             uuid.UUID `json:"user_id"`
	DistanceKm         float64   `json:"distance_km"`
	EstimatedSpeedMbps float64   `json:"estimated_speed_mbps"`
	BatteryLevel       int       `json:"battery_level"`
	TrustScore         int       `json:"trust_score"`
	CompositeScore     float64   `json:"composite_score"`
}

func ToAvailabilityResponse(a *domainProvider.Availability) *AvailabilityResponse {
	if a == nil {
		return nil
	}
	return &AvailabilityResponse{
		DeviceID:           a.DeviceID,
		UserID:             a.UserID,
		IsAvailable:        a.IsAvailable,
		HotspotEnabled:     a.HotspotEnabled,
		EstimatedSpeedMbps: a.EstimatedSpeedMbps,
		MaxShareMbps:       a.MaxShareMbps,
		UpdatedAt:          a.UpdatedAt,
	}
}
