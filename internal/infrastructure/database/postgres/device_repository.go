package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainDevice "neighbornet/internal/domain/device"
	"neighbornet/internal/infrastructure/database/postgres/models"
)

// DeviceRepository implements the device domain repository.
type DeviceRepository struct {
	db *DB
}

func NewDeviceRepository(db *DB) domainDevice.Repository {
	return &DeviceRepository{db: db}
}

func (r *DeviceRepository) Create(ctx context.Context, d *domainDevice.Device) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt

	dbModel := toDeviceModel(d)
	if err := r.db.DB.WithContext(ctx).Create(dbModel).Error; err != nil {
		if strings.Contains(err.Error(), "duplicate key value") {
			return domainDevice.ErrDeviceAlreadyExists
		}
		return fmt.Errorf("failed to create device: %w", err)
	}

	return nil
}

func (r *DeviceRepository) GetByID(ctx context.Context, deviceID uuid.UUID) (*domainDevice.Device, error) {
	var dbModel models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", deviceID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainDevice.ErrDeviceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	return toDeviceEntity(&dbModel), nil
}

func (r *DeviceRepository) GetByUser(ctx context.Context, userID uuid.UUID) ([]*domainDevice.Device, error) {
	var dbModels []models.DeviceModel
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]*domainDevice.Device, len(dbModels))
	for i := range dbModels {
		devices[i] = toDeviceEntity(&dbModels[i])
	}
	return devices, nil
}

func (r *DeviceRepository) UpdatePosition(ctx context.Context, deviceID uuid.UUID, latitude, longitude float64) error {
	return r.updateFields(ctx, deviceID, map[string]interface{}{
		"latitude":  latitude,
		"longitude": longitude,
	})
}

func (r *DeviceRepository) UpdateBattery(ctx context.Context, deviceID uuid.UUID, batteryLevel int) error {
	if batteryLevel < 0 || batteryLevel > 100 {
		return domainDevice.ErrInvalidBatteryLevel
	}
	return r.updateFields(ctx, deviceID, map[string]interface{}{
		"battery_level": batteryLevel,
	})
}

func (r *DeviceRepository) UpdateBandwidthEstimate(ctx context.Context, deviceID uuid.UUID, estimateMbps float64) error {
	return r.updateFields(ctx, deviceID, map[string]interface{}{
		"bandwidth_estimate": estimateMbps,
	})
}

func (r *DeviceRepository) UpdateLastSeen(ctx context.Context, deviceID uuid.UUID) error {
	return r.updateFields(ctx, deviceID, map[string]interface{}{
		"last_seen_at": time.Now(),
	})
}

func (r *DeviceRepository) updateFields(ctx context.Context, deviceID uuid.UUID, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()

	result := r.db.DB.WithContext(ctx).
		Model(&models.DeviceModel{}).
		Where("id = ?", deviceID).
		Updates(fields)

	if result.Error != nil {
		return fmt.Errorf("failed to update device: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainDevice.ErrDeviceNotFound
	}

	return nil
}

func toDeviceModel(d *domainDevice.Device) *models.DeviceModel {
	return &models.DeviceModel{
		ID:                d.ID,
		UserID:            d.UserID,
		Fingerprint:       d.Fingerprint,
		BatteryLevel:      d.BatteryLevel,
		Latitude:          d.Latitude,
		Longitude:         d.Longitude,
		BandwidthEstimate: d.BandwidthEstimate,
		LastSeenAt:        d.LastSeenAt,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func toDeviceEntity(m *models.DeviceModel) *domainDevice.Device {
	return &domainDevice.Device{
		ID:                m.ID,
		UserID:            m.UserID,
		Fingerprint:       m.Fingerprint,
		BatteryLevel:      m.BatteryLevel,
		Latitude:          m.Latitude,
		Longitude:         m.Longitude,
		BandwidthEstimate: m.BandwidthEstimate,
		LastSeenAt:        m.LastSeenAt,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}
}
