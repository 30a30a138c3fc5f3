package provider

import (
	"context"
	"math"
	"sort"

	"go.uber.org/zap"

	"neighbornet/internal/logger"
	appErrors "neighbornet/pkg/errors"
)

// earthRadiusKm is the mean Earth radius used by the haversine formula.
const earthRadiusKm = 6371.0

// maxSpeedMbps normalizes the speed factor; estimates at or above this cap
// score 1.
const maxSpeedMbps = 100.0

// Haversine returns the great-circle distance in kilometers between two
// latitude/longitude points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// compositeScore combines the normalized factors with the configured weight
// set. All factors are in [0,1], so with weights summing to 1 the result is
// in [0,1].
func (s *Service) compositeScore(estimatedSpeedMbps float64, batteryLevel, trustScore int, distanceKm, radiusKm float64) float64 {
	speedScore := math.Min(estimatedSpeedMbps/maxSpeedMbps, 1)
	batteryScore := float64(batteryLevel) / 100
	trust := float64(trustScore) / 100
	proximityScore := math.Max(0, 1-distanceKm/radiusKm)

	return speedScore*s.weights.Speed +
		batteryScore*s.weights.Battery +
		trust*s.weights.Trust +
		proximityScore*s.weights.Proximity
}

// RankProviders takes a point-in-time snapshot of available providers,
// discards candidates without a position or outside the radius, and returns
// the rest sorted by composite score descending. Ties break by ascending
// device id so the ordering is deterministic.
func (s *Service) RankProviders(ctx context.Context, latitude, longitude, radiusKm float64) ([]RankingResult, error) {
	if radiusKm <= 0 {
		radiusKm = s.defaultRadiusKm
	}

	candidates, err := s.availabilityRepo.ListAvailable(ctx)
	if err != nil {
		return nil, appErrors.Internal(err)
	}

	rankings := make([]RankingResult, 0, len(candidates))
	for _, candidate := range candidates {
		if !candidate.HasPosition() {
			continue
		}

		distance := Haversine(latitude, longitude, *candidate.Latitude, *candidate.Longitude)
		if distance > radiusKm {
			continue
		}

		rankings = append(rankings, RankingResult{
			DeviceID:           candidate.DeviceID,
			UserID:             candidate.UserID,
			DistanceKm:         distance,
			EstimatedSpeedMbps: candidate.EstimatedSpeedMbps,
			BatteryLevel:       candidate.BatteryLevel,
			TrustScore:         candidate.TrustScore,
			CompositeScore:     s.compositeScore(candidate.EstimatedSpeedMbps, candidate.BatteryLevel, candidate.TrustScore, distance, radiusKm),
		})
	}

	sort.Slice(rankings, func(i, j int) bool {
		if rankings[i].CompositeScore != rankings[j].CompositeScore {
			return rankings[i].CompositeScore > rankings[j].CompositeScore
		}
		return rankings[i].DeviceID.String() < rankings[j].DeviceID.String()
	})

	logger.Debug("Providers ranked",
		zap.Int("candidates", len(candidates)),
		zap.Int("in_radius", len(rankings)),
		zap.Float64("radius_km", radiusKm),
	)

	return rankings, nil
}

// BestProvider returns the top-ranked provider or NotFound when no provider
// is available within the radius.
func (s *Service) BestProvider(ctx context.Context, latitude, longitude, radiusKm float64) (*RankingResult, error) {
	rankings, err := s.RankProviders(ctx, latitude, longitude, radiusKm)
	if err != nil {
		return nil, err
	}
	if len(rankings) == 0 {
		return nil, appErrors.NotFound("No providers available in radius", nil)
	}
	return &rankings[0], nil
}
