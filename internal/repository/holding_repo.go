package repository

import (
	"context"

	"github.com/kylewspence/FinSight/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HoldingRepository handles brokerage holdings and investment transactions
type HoldingRepository struct {
	db *gorm.DB
}

// NewHoldingRepository creates a new HoldingRepository
func NewHoldingRepository(db *gorm.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// Upsert inserts a holding or overwrites the existing row for the
// same (user, symbol, account). Share price and description are only
// overwritten when the incoming row carries them.
func (r *HoldingRepository) Upsert(ctx context.Context, holding *models.Holding) error {
	updates := []string{"shares", "updated_at"}
	if holding.SharePrice != 0 {
		updates = append(updates, "share_price")
	}
	if holding.Description != "" {
		updates = append(updates, "description")
	}
	if holding.AccountNumber != "" {
		updates = append(updates, "account_number")
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "symbol"},
			{Name: "account_name"},
		},
		DoUpdates: clause.AssignmentColumns(updates),
	}).Create(holding).Error
}

// GetHoldingsByUserID lists holdings ordered by account then symbol
func (r *HoldingRepository) GetHoldingsByUserID(ctx context.Context, userID uint) ([]models.Holding, error) {
	holdings := make([]models.Holding, 0)
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("account_name ASC").
		Order("symbol ASC").
		Find(&holdings)
	if result.Error != nil {
		return nil, result.Error
	}
	return holdings, nil
}

// CreateTransaction inserts an investment transaction
func (r *HoldingRepository) CreateTransaction(ctx context.Context, tx *models.InvestmentTransaction) error {
	return r.db.WithContext(ctx).Create(tx).Error
}

// GetTransactionsByUserID lists investment transactions, newest first
func (r *HoldingRepository) GetTransactionsByUserID(ctx context.Context, userID uint) ([]models.InvestmentTransaction, error) {
	txs := make([]models.InvestmentTransaction, 0)
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
