package models

import "time"

// Transaction is a single budget ledger entry
type Transaction struct {
	ID          uint      `gorm:"primaryKey" json:"transactionId"`
	UserID      uint      `gorm:"index;not null" json:"userId"`
	Date        time.Time `gorm:"type:date;index;not null" json:"date"`
	Amount      float64   `gorm:"type:decimal(14,2);not null" json:"amount"`
	Category    string    `gorm:"size:100;not null" json:"category"`
	Description string    `gorm:"size:500;not null" json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// TableName specifies the table name for Transaction model
func (Transaction) TableName() string {
	return "transactions"
}
