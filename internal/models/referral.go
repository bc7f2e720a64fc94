package models

import (
	"time"
)

// Referral represents a referral relationship between users. Referral counts
// feed the referred user's referrer's tier progress.
type Referral struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ReferrerID     uint      `gorm:"not null;index" json:"referrerId"`
	Referrer       *User     `gorm:"foreignKey:ReferrerID" json:"referrer,omitempty"`
	ReferredUserID uint      `gorm:"not null;uniqueIndex" json:"referredUserId"`
	ReferredUser   *User     `gorm:"foreignKey:ReferredUserID" json:"referredUser,omitempty"`
	Status         string    `gorm:"size:20;default:ACTIVE" json:"status"` // ACTIVE, INACTIVE
	ReferredAt     time.Time `gorm:"autoCreateTime" json:"referredAt"`
}

func (Referral) TableName() string {
	return "referrals"
}
