package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type EarningStatus string

const (
	EarningStatusPending   EarningStatus = "pending"
	EarningStatusCompleted EarningStatus = "completed"
	EarningStatusFailed    EarningStatus = "failed"
)

// EarningRecord is one entry in a user's earning history. Records are
// append-only: once written, only the status may change.
type EarningRecord struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	ReferenceID uuid.UUID       `gorm:"type:uuid;uniqueIndex" json:"referenceId"`
	UserID      string          `gorm:"size:255;not null;index" json:"userId"`
	Date        time.Time       `gorm:"not null;index" json:"date"`
	Activity    string          `gorm:"type:text;not null" json:"activity"`
	Amount      decimal.Decimal `gorm:"type:decimal(30,8);not null" json:"amount"`
	Token       string          `gorm:"size:20;not null" json:"token"`
	Status      EarningStatus   `gorm:"size:20;not null;default:completed;index" json:"status"`
	TxHash      *string         `gorm:"size:255" json:"txHash,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// TableName specifies the table name for EarningRecord model
func (EarningRecord) TableName() string {
	return "earning_records"
}

// UserBalance holds the current balance for one (user, token) pair.
// Amount must never go negative; all mutations go through the repository's
// atomic increment/decrement helpers.
type UserBalance struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	UserID    string          `gorm:"size:255;not null;uniqueIndex:idx_user_token" json:"userId"`
	Token     string          `gorm:"size:20;not null;uniqueIndex:idx_user_token" json:"token"`
	Amount    decimal.Decimal `gorm:"type:decimal(30,8);not null;default:0" json:"amount"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// TableName specifies the table name for UserBalance model
func (UserBalance) TableName() string {
	return "user_balances"
}
