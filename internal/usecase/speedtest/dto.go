package speedtest

import (
	"time"

	"github.com/google/uuid"

	domainSpeedtest "neighbornet/internal/domain/speedtest"
)

type ReportSampleRequest struct {
	UploadMbps   float64 `json:"upload_mbps" validate:"gte=0"`
	DownloadMbps float64 `json:"download_mbps" validate:"gte=0"`
	LatencyMs    float64 `json:"latency_ms" validate:"gte=0"`
}

type SampleResponse struct {
	ID           uuid.UUID `json:"id"`
	DeviceID     uuid.UUID `json:"device_id"`
	UploadMbps   float64   `json:"upload_mbps"`
	DownloadMbps float64   `json:"download_mbps"`
	LatencyMs    float64   `json:"latency_ms"`
	Timestamp    time.Time `json:"timestamp"`
}

type ReportSampleResponse struct {
	Sample            SampleResponse `json:"sample"`
	MovingAverageMbps float64        `json:"moving_average_mbps"`
}

type StatsResponse struct {
	Count           int        `json:"count"`
	AvgUploadMbps   float64    `json:"avg_upload_mbps"`
	AvgDownloadMbps float64    `json:"avg_download_mbps"`
	AvgLatencyMs    float64    `json:"avg_latency_ms"`
	MaxDownloadMbps float64    `json:"max_download_mbps"`
	MinLatencyMs    float64    `json:"min_latency_ms"`
	LastSampleAt    *time.Time `json:"last_sample_at,omitempty"`
}

func ToSampleResponse(sample *domainSpeedtest.Sample) SampleResponse {
	return SampleResponse{
		ID:           sample.ID,
		DeviceID:     sample.DeviceID,
		UploadMbps:   sample.UploadMbps,
		DownloadMbps: sample.DownloadMbps,
		LatencyMs:    sample.LatencyMs,
		Timestamp:    sample.Timestamp,
	}
}

func ToStatsResponse(stats *domainSpeedtest.Stats) *StatsResponse {
	if stats == nil {
		return nil
	}
	return &StatsResponse{
		Count:           stats.Count,
		AvgUploadMbps:   stats.AvgUploadMbps,
		AvgDownloadMbps: stats.AvgDownloadMbps,
		AvgLatencyMs:    stats.AvgLatencyMs,
		MaxDownloadMbps: stats.MaxDownloadMbps,
		MinLatencyMs:    stats.MinLatencyMs,
		LastSampleAt:    stats.LastSampleAt,
	}
}
