package repository

import (
	"context"
	"errors"

	"github.com/kylewspence/FinSight/internal/models"
	"gorm.io/gorm"
)

// PropertyRepository handles property data access
type PropertyRepository struct {
	db *gorm.DB
}

// NewPropertyRepository creates a new PropertyRepository
func NewPropertyRepository(db *gorm.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Create creates a new property
func (r *PropertyRepository) Create(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Create(property).Error
}

// GetByID retrieves a property by ID regardless of owner
func (r *PropertyRepository) GetByID(ctx context.Context, id uint) (*models.Property, error) {
	var property models.Property
	result := r.db.WithContext(ctx).First(&property, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, result.Error
	}
	return &property, nil
}

// GetByIDAndUserID retrieves a property by ID and user ID
func (r *PropertyRepository) GetByIDAndUserID(ctx context.Context, id, userID uint) (*models.Property, error) {
	var property models.Property
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&property)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrPropertyNotFound
		}
		return nil, result.Error
	}
	return &property, nil
}

// GetByUserID retrieves all properties for a user, oldest first
func (r *PropertyRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Property, error) {
	properties := make([]models.Property, 0)
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id ASC").Find(&properties)
	if result.Error != nil {
		return nil, result.Error
	}
	return properties, nil
}

// Update saves every column of the property
func (r *PropertyRepository) Update(ctx context.Context, property *models.Property) error {
	return r.db.WithContext(ctx).Save(property).Error
}

// Delete hard deletes a property
func (r *PropertyRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Property{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrPropertyNotFound
	}
	return nil
}
