package models

import (
	"time"
)

// InviteCode is a single-use code handed to new users; redeeming one links
// the redeemer to the code's owner as a referral.
type InviteCode struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"userId"`
	User         User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Code         string     `gorm:"uniqueIndex;not null;size:50" json:"code"`
	UsedByUserID *uint      `json:"usedByUserId,omitempty"`
	UsedByUser   *User      `gorm:"foreignKey:UsedByUserID" json:"usedByUser,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UsedAt       *time.Time `json:"usedAt,omitempty"`
}

// TableName specifies the table name for InviteCode model
func (InviteCode) TableName() string {
	return "invite_codes"
}
