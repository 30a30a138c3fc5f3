package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	domainSession "neighbornet/internal/domain/session"
	"neighbornet/internal/infrastructure/database/postgres/models"
)

// SessionRepository implements the session domain repository.
type SessionRepository struct {
	db *DB
}

func NewSessionRepository(db *DB) domainSession.Repository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *domainSession.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	if err := r.db.DB.WithContext(ctx).Create(toSessionModel(s)).Error; err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, sessionID uuid.UUID) (*domainSession.Session, error) {
	var dbModel models.SessionModel
	err := r.db.DB.WithContext(ctx).
		Where("id = ?", sessionID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainSession.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return toSessionEntity(&dbModel), nil
}

func (r *SessionRepository) End(ctx context.Context, s *domainSession.Session) error {
	// The state guard keeps a concurrent end from double-writing even if the
	// coordinator's per-session lock is bypassed.
	result := r.db.DB.WithContext(ctx).
		Model(&models.SessionModel{}).
		Where("id = ? AND state = ?", s.ID, string(domainSession.StateActive)).
		Updates(map[string]interface{}{
			"end_time":           s.EndTime,
			"total_bytes_shared": s.TotalBytesShared,
			"state":              string(domainSession.StateEnded),
		})

	if result.Error != nil {
		return fmt.Errorf("failed to end session: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domainSession.ErrSessionAlreadyEnded
	}

	return nil
}

func (r *SessionRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*domainSession.Session, error) {
	var dbModels []models.SessionModel
	err := r.db.DB.WithContext(ctx).
		Where("provider_user_id = ? OR requester_user_id = ?", userID, userID).
		Order("start_time DESC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return toSessionEntities(dbModels), nil
}

func (r *SessionRepository) ListActiveByUser(ctx context.Context, userID uuid.UUID) ([]*domainSession.Session, error) {
	var dbModels []models.SessionModel
	err := r.db.DB.WithContext(ctx).
		Where("(provider_user_id = ? OR requester_user_id = ?) AND end_time IS NULL", userID, userID).
		Order("start_time DESC").
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}

	return toSessionEntities(dbModels), nil
}

func (r *SessionRepository) ListByDevice(ctx context.Context, deviceID uuid.UUID, limit int) ([]*domainSession.Session, error) {
	var dbModels []models.SessionModel
	err := r.db.DB.WithContext(ctx).
		Where("provider_device_id = ? OR requester_device_id = ?", deviceID, deviceID).
		Order("start_time DESC").
		Limit(limit).
		Find(&dbModels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list device sessions: %w", err)
	}

	return toSessionEntities(dbModels), nil
}

func (r *SessionRepository) HasActiveForDevice(ctx context.Context, deviceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.SessionModel{}).
		Where("(provider_device_id = ? OR requester_device_id = ?) AND end_time IS NULL", deviceID, deviceID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to count active sessions: %w", err)
	}

	return count > 0, nil
}

func (r *SessionRepository) SumBytesByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var total *int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.SessionModel{}).
		Select("SUM(total_bytes_shared)").
		Where("provider_user_id = ? OR requester_user_id = ?", userID, userID).
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to sum session bytes: %w", err)
	}

	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func toSessionModel(s *domainSession.Session) *models.SessionModel {
	return &models.SessionModel{
		ID:                s.ID,
		ProviderDeviceID:  s.ProviderDeviceID,
		RequesterDeviceID: s.RequesterDeviceID,
		ProviderUserID:    s.ProviderUserID,
		RequesterUserID:   s.RequesterUserID,
		StartTime:         s.StartTime,
		EndTime:           s.EndTime,
		TotalBytesShared:  s.TotalBytesShared,
		State:             string(s.State),
	}
}

func toSessionEntity(m *models.SessionModel) *domainSession.Session {
	return &domainSession.Session{
		ID:                m.ID,
		ProviderDeviceID:  m.ProviderDeviceID,
		RequesterDeviceID: m.RequesterDeviceID,
		ProviderUserID:    m.ProviderUserID,
		RequesterUserID:   m.RequesterUserID,
		StartTime:         m.StartTime,
		EndTime:           m.EndTime,
		TotalBytesShared:  m.TotalBytesShared,
		State:             domainSession.State(m.State),
	}
}

func toSessionEntities(dbModels []models.SessionModel) []*domainSession.Session {
	sessions := make([]*domainSession.Session, len(dbModels))
	for i := range dbModels {
		sessions[i] = toSessionEntity(&dbModels[i])
	}
	return sessions
}
