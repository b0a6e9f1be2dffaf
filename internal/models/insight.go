package models

import "time"

// Insight is a saved AI analysis. Rows are never updated.
type Insight struct {
	ID                 uint      `gorm:"primaryKey" json:"insightId"`
	UserID             uint      `gorm:"index;not null" json:"userId"`
	Overview           string    `gorm:"type:text;not null" json:"overview"`
	TimelineToPurchase string    `gorm:"type:text;not null" json:"timelineToPurchase"`
	MarketTrends       string    `gorm:"type:text;not null" json:"marketTrends"`
	PeerStrategies     string    `gorm:"type:text;not null" json:"peerStrategies"`
	CreatedAt          time.Time `json:"createdAt"`
}

// TableName specifies the table name for Insight model
func (Insight) TableName() string {
	return "insights"
}
