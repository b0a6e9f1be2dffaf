package repository

import (
	"context"
	"errors"

	"github.com/kylewspence/FinSight/internal/models"
	"gorm.io/gorm"
)

// TransactionRepository handles budget transaction data access
type TransactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create creates a new transaction
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// GetByID retrieves a transaction by ID regardless of owner
func (r *TransactionRepository) GetByID(ctx context.Context, id uint) (*models.Transaction, error) {
	var tx models.Transaction
	result := r.db.WithContext(ctx).First(&tx, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, result.Error
	}
	return &tx, nil
}

// GetByIDAndUserID retrieves a transaction by ID and user ID
func (r *TransactionRepository) GetByIDAndUserID(ctx context.Context, id, userID uint) (*models.Transaction, error) {
	var tx models.Transaction
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&tx)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, result.Error
	}
	return &tx, nil
}

// GetByUserID retrieves all transactions for a user, newest first
func (r *TransactionRepository) GetByUserID(ctx context.Context, userID uint) ([]models.Transaction, error) {
	txs := make([]models.Transaction, 0)
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Order("id DESC").
		Find(&txs)
	if result.Error != nil {
		return nil, result.Error
	}
	return txs, nil
}

// Update saves every column of the transaction
func (r *TransactionRepository) Update(ctx context.Context, tx *models.Transaction) error {
	return r.db.WithContext(ctx).Save(tx).Error
}

// Delete hard deletes a transaction
func (r *TransactionRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&models.Transaction{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}
