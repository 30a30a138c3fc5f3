package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainProvider "neighbornet/internal/domain/provider"
	domainTrust "neighbornet/internal/domain/trust"
	"neighbornet/internal/infrastructure/database/postgres/models"
)

// AvailabilityRepository implements the provider domain repository.
type AvailabilityRepository struct {
	db *DB
}

func NewAvailabilityRepository(db *DB) domainProvider.Repository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) Upsert(ctx context.Context, a *domainProvider.Availability) error {
	dbModel := &models.AvailabilityModel{
		DeviceID:           a.DeviceID,
		UserID:             a.UserID,
		IsAvailable:        a.IsAvailable,
		HotspotEnabled:     a.HotspotEnabled,
		EstimatedSpeedMbps: a.EstimatedSpeedMbps,
		MaxShareMbps:       a.MaxShareMbps,
		UpdatedAt:          a.UpdatedAt,
	}

	err := r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_id"}},
			UpdateAll: true,
		}).
		Create(dbModel).Error
	if err != nil {
		return fmt.Errorf("failed to upsert availability: %w", err)
	}

	return nil
}

func (r *AvailabilityRepository) GetByDevice(ctx context.Context, deviceID uuid.UUID) (*domainProvider.Availability, error) {
	var dbModel models.AvailabilityModel
	err := r.db.DB.WithContext(ctx).
		Where("device_id = ?", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainProvider.ErrAvailabilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get availability: %w", err)
	}

	return &domainProvider.Availability{
		DeviceID:           dbModel.DeviceID,
		UserID:             dbModel.UserID,
		IsAvailable:        dbModel.IsAvailable,
		HotspotEnabled:     dbModel.HotspotEnabled,
		EstimatedSpeedMbps: dbModel.EstimatedSpeedMbps,
		MaxShareMbps:       dbModel.MaxShareMbps,
		UpdatedAt:          dbModel.UpdatedAt,
	}, nil
}

func (r *AvailabilityRepository) Disable(ctx context.Context, deviceID uuid.UUID) error {
	result := r.db.DB.WithContext(ctx).
		Model(&models.AvailabilityModel{}).
		Where("device_id = ?", deviceID).
		Updates(map[string]interface{}{
			"is_available":    false,
			"hotspot_enabled": false,
			"updated_at":      time.Now(),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to disable availability: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainProvider.ErrAvailabilityNotFound
	}

	return nil
}

type candidateRow struct {
	DeviceID           uuid.UUID
	UserID             uuid.UUID
	EstimatedSpeedMbps float64
	BatteryLevel       int
	Latitude           *float64
	Longitude          *float64
	TrustScore         int
}

func (r *AvailabilityRepository) ListAvailable(ctx context.Context) ([]*domainProvider.Candidate, error) {
	var rows []candidateRow
	err := r.db.DB.WithContext(ctx).
		Table("provider_availabilities AS a").
		Select("a.device_id, a.user_id, a.estimated_speed_mbps, d.battery_level, d.latitude, d.longitude, COALESCE(t.score, ?) AS trust_score", domainTrust.DefaultScore).
		Joins("JOIN devices d ON d.id = a.device_id").
		Joins("LEFT JOIN trust_scores t ON t.user_id = a.user_id").
		Where("a.is_available = ?", true).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list available providers: %w", err)
	}

	candidates := make([]*domainProvider.Candidate, len(rows))
	for i, row := range rows {
		candidates[i] = &domainProvider.Candidate{
			DeviceID:           row.DeviceID,
			UserID:             row.UserID,
			EstimatedSpeedMbps: row.EstimatedSpeedMbps,
			BatteryLevel:       row.BatteryLevel,
			Latitude:           row.Latitude,
			Longitude:          row.Longitude,
			TrustScore:         row.TrustScore,
		}
	}
	return candidates, nil
}
