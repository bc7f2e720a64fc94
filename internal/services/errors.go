package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Validation errors mapped to stable API error codes at the handler boundary.
var (
	ErrMissingUserID         = errors.New("userId is required")
	ErrMissingFields         = errors.New("userId, walletAddress, token and amount are required")
	ErrInvalidAmount         = errors.New("amount must be a positive decimal number")
	ErrInvalidStatus         = errors.New("status must be one of pending, completed, failed")
	ErrInvalidTier           = errors.New("unknown tier name")
	ErrQuestNotFound         = errors.New("quest not found")
	ErrQuestInactive         = errors.New("quest is not active")
	ErrQuestAlreadyCompleted = errors.New("Quest already completed")
)

// InsufficientBalanceError carries the available balance so the API can
// include it in the rejection message.
type InsufficientBalanceError struct {
	Token     string
	Available decimal.Decimal
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: available %s %s", e.Available, e.Token)
}
