package provider

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainDevice "neighbornet/internal/domain/device"
	domainProvider "neighbornet/internal/domain/provider"
	"neighbornet/internal/logger"
	appErrors "neighbornet/pkg/errors"
	"neighbornet/pkg/utils"
)

// TrustReader exposes the trust ledger reads the registry needs.
type TrustReader interface {
	Get(ctx context.Context, userID uuid.UUID) (int, error)
}

// Notifier pushes availability changes to connected clients. A nil notifier
// disables fanout.
type Notifier interface {
	BroadcastEvent(eventType string, data interface{})
}

// Service is the availability registry and ranking engine for providers.
type Service struct {
	availabilityRepo domainProvider.Repository
	deviceRepo       domainDevice.Repository
	trust            TrustReader
	notifier         Notifier

	weights         Weights
	defaultRadiusKm float64
}

// Weights is the composite-score weight set. Callers validate that the four
// weights sum to 1 before construction.
type Weights struct {
	Speed     float64
	Battery   float64
	Trust     float64
	Proximity float64
}

// NewService creates a new provider service.
func NewService(
	availabilityRepo domainProvider.Repository,
	deviceRepo domainDevice.Repository,
	trust TrustReader,
	notifier Notifier,
	weights Weights,
	defaultRadiusKm float64,
) *Service {
	return &Service{
		availabilityRepo: availabilityRepo,
		deviceRepo:       deviceRepo,
		trust:            trust,
		notifier:         notifier,
		weights:          weights,
		defaultRadiusKm:  defaultRadiusKm,
	}
}

// SetAvailability upserts the device's availability record. Optional fields
// keep their previous value when omitted.
func (s *Service) SetAvailability(ctx context.Context, deviceID uuid.UUID, req *SetAvailabilityRequest) (*AvailabilityResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, appErrors.NewAppError(appErrors.CodeValidation, "Invalid input", err)
	}

	dev, err := s.deviceRepo.GetByID(ctx, deviceID)
	if err != nil {
		if errors.Is(err, domainDevice.ErrDeviceNotFound) {
			return nil, appErrors.NotFound("Device not found", err)
		}
		return nil, appErrors.Internal(err)
	}

	availability, err := s.availabilityRepo.GetByDevice(ctx, deviceID)
	if err != nil && !errors.Is(err, domainProvider.ErrAvailabilityNotFound) {
		return nil, appErrors.Internal(err)
	}
	if availability == nil {
		availability = &domainProvider.Availability{
			DeviceID: deviceID,
			UserID:   dev.UserID,
		}
	}

	availability.IsAvailable = req.IsAvailable
	if req.HotspotEnabled != nil {
		availability.HotspotEnabled = *req.HotspotEnabled
	}
	if req.EstimatedSpeedMbps != nil {
		availability.EstimatedSpeedMbps = *req.EstimatedSpeedMbps
	}
	if req.MaxShareMbps != nil {
		availability.MaxShareMbps = *req.MaxShareMbps
	}
	availability.UpdatedAt = time.Now()

	if err := s.availabilityRepo.Upsert(ctx, availability); err != nil {
		return nil, appErrors.Internal(err)
	}

	logger.Info("Provider availability updated",
		zap.String("device_id", deviceID.String()),
		zap.Bool("is_available", availability.IsAvailable),
		zap.String("event", "availability_updated"),
	)

	resp := ToAvailabilityResponse(availability)
	if s.notifier != nil {
		s.notifier.BroadcastEvent("availability-update", resp)
	}

	return resp, nil
}

// StopSharing forces is_available and hotspot_enabled off.
func (s *Service) StopSharing(ctx context.Context, deviceID uuid.UUID) (*AvailabilityResponse, error) {
	if err := s.availabilityRepo.Disable(ctx, deviceID); err != nil {
		if errors.Is(err, domainProvider.ErrAvailabilityNotFound) {
			return nil, appErrors.NotFound("Provider availability not found", err)
		}
		return nil, appErrors.Internal(err)
	}

	availability, err := s.availabilityRepo.GetByDevice(ctx, deviceID)
	if err != nil {
		return nil, appErrors.Internal(err)
	}

	logger.Info("Provider stopped sharing",
		zap.String("device_id", deviceID.String()),
		zap.String("event", "sharing_stopped"),
	)

	resp := ToAvailabilityResponse(availability)
	if s.notifier != nil {
		s.notifier.BroadcastEvent("availability-update", resp)
	}

	return resp, nil
}

// ProviderStatus returns the availability record joined with the owner's
// trust score.
func (s *Service) ProviderStatus(ctx context.Context, deviceID uuid.UUID) (*ProviderStatusResponse, error) {
	availability, err := s.availabilityRepo.GetByDevice(ctx, deviceID)
	if err != nil {
		if errors.Is(err, domainProvider.ErrAvailabilityNotFound) {
			return nil, appErrors.NotFound("Provider not found", err)
		}
		return nil, appErrors.Internal(err)
	}

	score, err := s.trust.Get(ctx, availability.UserID)
	if err != nil {
		return nil, appErrors.Internal(err)
	}

	return &ProviderStatusResponse{
		AvailabilityResponse: *ToAvailabilityResponse(availability),
		TrustScore:           score,
	}, nil
}
