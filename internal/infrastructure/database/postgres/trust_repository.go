package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainTrust "neighbornet/internal/domain/trust"
	"neighbornet/internal/infrastructure/database/postgres/models"
)

// TrustRepository implements the trust domain repository.
type TrustRepository struct {
	db *DB
}

func NewTrustRepository(db *DB) domainTrust.Repository {
	return &TrustRepository{db: db}
}

func (r *TrustRepository) Get(ctx context.Context, userID uuid.UUID) (*domainTrust.Score, error) {
	var dbModel models.TrustScoreModel
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&dbModel).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domainTrust.ErrScoreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trust score: %w", err)
	}

	return &domainTrust.Score{
		UserID:    dbModel.UserID,
		Score:     dbModel.Score,
		UpdatedAt: dbModel.UpdatedAt,
	}, nil
}

func (r *TrustRepository) Save(ctx context.Context, score *domainTrust.Score) error {
	dbModel := &models.TrustScoreModel{
		UserID:    score.UserID,
		Score:     score.Score,
		UpdatedAt: score.UpdatedAt,
	}

	err := r.db.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(dbModel).Error
	if err != nil {
		return fmt.Errorf("failed to save trust score: %w", err)
	}

	return nil
}
