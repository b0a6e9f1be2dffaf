package repository

import (
	"context"
	"errors"

	"github.com/kylewspence/FinSight/internal/models"
	"gorm.io/gorm"
)

// InsightRepository handles saved insight data access
type InsightRepository struct {
	db *gorm.DB
}

// NewInsightRepository creates a new InsightRepository
func NewInsightRepository(db *gorm.DB) *InsightRepository {
	return &InsightRepository{db: db}
}

// Create inserts a new insight
func (r *InsightRepository) Create(ctx context.Context, insight *models.Insight) error {
	return r.db.WithContext(ctx).Create(insight).Error
}

// GetByUserID retrieves all insights for a user in insertion order
func (r *InsightRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Insight, error) {
	insights := make([]models.Insight, 0)
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&insights)
	if result.Error != nil {
		return nil, result.Error
	}
	return insights, nil
}

// GetLatestByUserID retrieves the most recently inserted insight
func (r *InsightRepository) GetLatestByUserID(ctx context.Context, userID uint) (*models.Insight, error) {
	var insight models.Insight
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id DESC").First(&insight)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInsightNotFound
		}
		return nil, result.Error
	}
	return &insight, nil
}
