package speedtest

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainDevice "neighbornet/internal/domain/device"
	domainSpeedtest "neighbornet/internal/domain/speedtest"
	"neighbornet/internal/locks"
	"neighbornet/internal/logger"
	appErrors "neighbornet/pkg/errors"
)

// Service is the bandwidth estimator: it appends speed samples and keeps a
// bounded moving-average throughput estimate per device.
type Service struct {
	sampleRepo domainSpeedtest.Repository
	deviceRepo domainDevice.Repository

	// deviceLocks serializes record/recompute per device; different devices
	// stay concurrent.
	deviceLocks *locks.KeyedMutex

	windowSize int
	maxSamples int
}

// NewService creates a new speedtest service. windowSize is the moving-average
// window (newest sample plus windowSize-1 prior); maxSamples caps stats
// queries.
func NewService(sampleRepo domainSpeedtest.Repository, deviceRepo domainDevice.Repository, windowSize, maxSamples int) *Service {
	return &Service{
		sampleRepo:  sampleRepo,
		deviceRepo:  deviceRepo,
		deviceLocks: locks.NewKeyedMutex(),
		windowSize:  windowSize,
		maxSamples:  maxSamples,
	}
}

// RecordSample validates and appends a speed sample, then recomputes the
// device's moving-average estimate. No writes happen on rejected input.
func (s *Service) RecordSample(ctx context.Context, deviceID uuid.UUID, req *ReportSampleRequest) (*ReportSampleResponse, error) {
	if req.UploadMbps < 0 || req.DownloadMbps < 0 || req.LatencyMs < 0 {
		return nil, appErrors.InvalidInput("Speed sample values must be non-negative", domainSpeedtest.ErrInvalidSample)
	}

	if _, err := s.deviceRepo.GetByID(ctx, deviceID); err != nil {
		if errors.Is(err, domainDevice.ErrDeviceNotFound) {
			return nil, appErrors.NotFound("Device not found", err)
		}
		return nil, appErrors.Internal(err)
	}

	s.deviceLocks.Lock(deviceID.String())
	defer s.deviceLocks.Unlock(deviceID.String())

	sample := &domainSpeedtest.Sample{
		ID:           uuid.New(),
		DeviceID:     deviceID,
		UploadMbps:   req.UploadMbps,
		DownloadMbps: req.DownloadMbps,
		LatencyMs:    req.LatencyMs,
		Timestamp:    time.Now(),
	}

	if err := s.sampleRepo.Create(ctx, sample); err != nil {
		return nil, appErrors.Internal(err)
	}

	average, err := s.recomputeEstimate(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if err := s.deviceRepo.UpdateLastSeen(ctx, deviceID); err != nil {
		return nil, appErrors.Internal(err)
	}

	logger.Info("Speed sample recorded",
		zap.String("device_id", deviceID.String()),
		zap.Float64("upload_mbps", req.UploadMbps),
		zap.Float64("download_mbps", req.DownloadMbps),
		zap.Float64("latency_ms", req.LatencyMs),
		zap.Float64("moving_average_mbps", average),
		zap.String("event", "speed_sample_recorded"),
	)

	return &ReportSampleResponse{
		Sample:            ToSampleResponse(sample),
		MovingAverageMbps: average,
	}, nil
}

// UpdateEstimate recomputes the device's moving-average estimate from stored
// samples, serialized against concurrent sample writes for the same device.
func (s *Service) UpdateEstimate(ctx context.Context, deviceID uuid.UUID) (float64, error) {
	s.deviceLocks.Lock(deviceID.String())
	defer s.deviceLocks.Unlock(deviceID.String())

	return s.recomputeEstimate(ctx, deviceID)
}

// recomputeEstimate takes the window of most recent samples (strictly
// descending by timestamp) and stores their mean download speed as the
// device's bandwidth estimate. Callers hold the device lock.
func (s *Service) recomputeEstimate(ctx context.Context, deviceID uuid.UUID) (float64, error) {
	window, err := s.sampleRepo.RecentByDevice(ctx, deviceID, s.windowSize)
	if err != nil {
		return 0, appErrors.Internal(err)
	}
	if len(window) == 0 {
		return 0, appErrors.NotFound("No speed samples recorded for device", domainSpeedtest.ErrNoSamples)
	}

	var sum float64
	for _, sample := range window {
		sum += sample.DownloadMbps
	}
	average := sum / float64(len(window))

	if err := s.deviceRepo.UpdateBandwidthEstimate(ctx, deviceID, average); err != nil {
		return 0, appErrors.Internal(err)
	}

	return average, nil
}

// DeviceSamples returns up to limit recent raw samples for a device.
func (s *Service) DeviceSamples(ctx context.Context, deviceID uuid.UUID, limit int) ([]SampleResponse, error) {
	if limit <= 0 || limit > s.maxSamples {
		limit = s.maxSamples
	}

	samples, err := s.sampleRepo.RecentByDevice(ctx, deviceID, limit)
	if err != nil {
		return nil, appErrors.Internal(err)
	}

	responses := make([]SampleResponse, len(samples))
	for i, sample := range samples {
		responses[i] = ToSampleResponse(sample)
	}
	return responses, nil
}

// DeviceStats aggregates the device's most recent samples.
func (s *Service) DeviceStats(ctx context.Context, deviceID uuid.UUID) (*StatsResponse, error) {
	samples, err := s.sampleRepo.RecentByDevice(ctx, deviceID, s.maxSamples)
	if err != nil {
		return nil, appErrors.Internal(err)
	}
	return ToStatsResponse(computeStats(samples)), nil
}

// GlobalStats aggregates the most recent samples across all devices, capped
// at the configured sample count.
func (s *Service) GlobalStats(ctx context.Context) (*StatsResponse, error) {
	samples, err := s.sampleRepo.Recent(ctx, s.maxSamples)
	if err != nil {
		return nil, appErrors.Internal(err)
	}
	return ToStatsResponse(computeStats(samples)), nil
}

func computeStats(samples []*domainSpeedtest.Sample) *domainSpeedtest.Stats {
	stats := &domainSpeedtest.Stats{}
	if len(samples) == 0 {
		return stats
	}

	stats.Count = len(samples)
	stats.MaxDownloadMbps = samples[0].DownloadMbps
	stats.MinLatencyMs = samples[0].LatencyMs

	var sumUpload, sumDownload, sumLatency float64
	for _, sample := range samples {
		sumUpload += sample.UploadMbps
		sumDownload += sample.DownloadMbps
		sumLatency += sample.LatencyMs
		if sample.DownloadMbps > stats.MaxDownloadMbps {
			stats.MaxDownloadMbps = sample.DownloadMbps
		}
		if sample.LatencyMs < stats.MinLatencyMs {
			stats.MinLatencyMs = sample.LatencyMs
		}
	}

	n := float64(len(samples))
	stats.AvgUploadMbps = sumUpload / n
	stats.AvgDownloadMbps = sumDownload / n
	stats.AvgLatencyMs = sumLatency / n

	// Samples are newest first.
	last := samples[0].Timestamp
	stats.LastSampleAt = &last

	return stats
}
