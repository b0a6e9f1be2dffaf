package models

import "time"

// Holding is a brokerage position imported from CSV.
// One row per (user, symbol, account).
type Holding struct {
	ID            uint      `gorm:"primaryKey" json:"holdingId"`
	UserID        uint      `gorm:"uniqueIndex:idx_holdings_user_symbol_account;not null" json:"userId"`
	AccountName   string    `gorm:"uniqueIndex:idx_holdings_user_symbol_account;size:100;not null" json:"accountName"`
	AccountNumber string    `gorm:"size:50" json:"accountNumber"`
	Symbol        string    `gorm:"uniqueIndex:idx_holdings_user_symbol_account;size:20;not null" json:"symbol"`
	Description   string    `gorm:"size:255" json:"description"`
	Shares        float64   `gorm:"type:decimal(18,6);not null" json:"shares"`
	SharePrice    float64   `gorm:"type:decimal(14,4);not null;default:0" json:"sharePrice"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Holding model
func (Holding) TableName() string {
	return "holdings"
}

// InvestmentTransaction is a brokerage activity row imported from CSV
type InvestmentTransaction struct {
	ID          uint      `gorm:"primaryKey" json:"investmentTransactionId"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	AccountName string    `gorm:"size:100;not null" json:"accountName"`
	Date        time.Time `gorm:"type:date;not null" json:"date"`
	Action      string    `gorm:"size:100" json:"action"`
	Symbol      string    `gorm:"size:20" json:"symbol"`
	Description string    `gorm:"size:255" json:"description"`
	Shares      float64   `gorm:"type:decimal(18,6);not null;default:0" json:"shares"`
	SharePrice  float64   `gorm:"type:decimal(14,4);not null;default:0" json:"sharePrice"`
	Amount      float64   `gorm:"type:decimal(14,2);not null" json:"amount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name for InvestmentTransaction model
func (InvestmentTransaction) TableName() string {
	return "investment_transactions"
}
