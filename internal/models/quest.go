package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type RewardType string

const (
	RewardTypeToken RewardType = "token"
	RewardTypeBadge RewardType = "badge"
)

// Quest is a task users can complete exactly once for a token or badge reward.
type Quest struct {
	QuestID          uint            `gorm:"primaryKey" json:"questId"`
	Name             string          `gorm:"size:255;not null" json:"name"`
	Description      string          `gorm:"type:text;not null" json:"description"`
	RewardAmount     decimal.Decimal `gorm:"type:decimal(30,8);not null" json:"rewardAmount"`
	RewardType       RewardType      `gorm:"size:20;not null" json:"rewardType"`
	BadgeName        *string         `gorm:"size:255" json:"badgeName,omitempty"`
	BadgeDescription *string         `gorm:"type:text" json:"badgeDescription,omitempty"`
	BadgeTokenURI    *string         `gorm:"size:500" json:"badgeTokenURI,omitempty"`
	IsActive         bool            `gorm:"not null;default:true" json:"isActive"`
	Completions      int64           `gorm:"not null;default:0" json:"completions"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for Quest model
func (Quest) TableName() string {
	return "quests"
}

// QuestCompletion records that a user has claimed a quest's reward.
// The unique (user_address, quest_id) index is what makes completion
// exactly-once even under concurrent requests.
type QuestCompletion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserAddress string    `gorm:"size:255;not null;uniqueIndex:idx_completion_user_quest" json:"userAddress"`
	QuestID     uint      `gorm:"not null;uniqueIndex:idx_completion_user_quest;index" json:"questId"`
	TxHash      *string   `gorm:"size:255" json:"txHash,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// TableName specifies the table name for QuestCompletion model
func (QuestCompletion) TableName() string {
	return "quest_completions"
}
