package models

import (
	"time"
)

// User represents an onboarded wallet user
type User struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	WalletAddress string    `gorm:"uniqueIndex;not null" json:"walletAddress"`
	Nickname      string    `gorm:"size:100" json:"nickname"`
	ReferrerID    *uint     `gorm:"index" json:"referrerId,omitempty"`
	Referrer      *User     `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
