package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	domainSpeedtest "neighbornet/internal/domain/speedtest"
	"neighbornet/internal/infrastructure/database/postgres/models"
)

// SpeedtestRepository implements the speedtest domain repository.
type SpeedtestRepository struct {
	db *DB
}

func NewSpeedtestRepository(db *DB) domainSpeedtest.Repository {
	return &SpeedtestRepository{db: db}
}

func (r *SpeedtestRepository) Create(ctx context.Context, sample *domainSpeedtest.Sample) error {
	if sample.ID == uuid.Nil {
		sample.ID = uuid.New()
	}

	dbModel := &models.SpeedSampleModel{
		ID:           sample.ID,
		DeviceID:     sample.DeviceID,
		UploadMbps:   sample.UploadMbps,
		DownloadMbps: sample.DownloadMbps,
		LatencyMs:    sample.LatencyMs,
		Timestamp:    sample.Timestamp,
	}

	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		return fmt.Errorf("failed to create speed sample: %w", err)
	}

	return nil
}

func (r *SpeedtestRepository) RecentByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*domainSpeedtest.Sample, error) {
	var dbModels []models.SpeedSampleModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list speed samples: %w", err)
	}

	return toSampleEntities(dbModels), nil
}

func (r *SpeedtestRepository) Recent(ctx context.Context, limit int) ([]*domainSpeedtest.Sample, error) {
	var dbModels []models.SpeedSampleModel
	err := r.db.DB.WithContext(ctx).
		Order("timestamp DESC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list speed samples: %w", err)
	}

	return toSampleEntities(dbModels), nil
}

func toSampleEntities(dbModels []models.SpeedSampleModel) []*domainSpeedtest.Sample {
	samples := make([]*domainSpeedtest.Sample, len(dbModels))
	for i, m := range dbModels {
		samples[i] = &domainSpeedtest.Sample{
			ID:           m.ID,
			DeviceID:     m.DeviceID,
			UploadMbps:   m.UploadMbps,
			DownloadMbps: m.DownloadMbps,
			LatencyMs:    m.LatencyMs,
			Timestamp:    m.Timestamp,
		}
	}
	return samples
}
