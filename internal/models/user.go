package models

import (
	"time"
)

// User represents a registered user
type User struct {
	ID             uint      `gorm:"primaryKey" json:"userId"`
	UserName       string    `gorm:"uniqueIndex;size:100;not null" json:"userName"`
	HashedPassword string    `gorm:"size:255;not null" json:"-"`
	CreatedAt      time.Time `json:"createdAt"`

	// Relations
	Properties []Property `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
