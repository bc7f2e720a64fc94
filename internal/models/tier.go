package models

import (
	"time"
)

// TierProgress holds the cumulative counters tier levels are computed from.
type TierProgress struct {
	MissionsCompleted int64 `json:"missionsCompleted"`
	TokensEarned      int64 `json:"tokensEarned"`
	Referrals         int64 `json:"referrals"`
}

// UserTierState stores a user's tier progression. Level only ever moves up:
// tiers are permanent achievements, progress counters dropping never demotes.
type UserTierState struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            string    `gorm:"size:255;not null;uniqueIndex" json:"userId"`
	Tier              string    `gorm:"size:50;not null" json:"tier"`
	Level             int       `gorm:"not null;default:1" json:"level"`
	MissionsCompleted int64     `gorm:"not null;default:0" json:"missionsCompleted"`
	TokensEarned      int64     `gorm:"not null;default:0" json:"tokensEarned"`
	Referrals         int64     `gorm:"not null;default:0" json:"referrals"`
	LastUpdate        time.Time `json:"lastUpdate"`
}

// TableName specifies the table name for UserTierState model
func (UserTierState) TableName() string {
	return "user_tier_states"
}

// Progress returns the stored counters as a TierProgress value.
func (s *UserTierState) Progress() TierProgress {
	return TierProgress{
		MissionsCompleted: s.MissionsCompleted,
		TokensEarned:      s.TokensEarned,
		Referrals:         s.Referrals,
	}
}
