package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"meechain/internal/blockchain"
	"meechain/internal/models"
	"meechain/internal/repository"
)

// TransferService moves earned balance out to an external wallet. The
// balance check and decrement happen in one conditional UPDATE, so a
// transfer can never overdraw even under concurrent requests.
type TransferService struct {
	repo *repository.Repository
}

func NewTransferService(repo *repository.Repository) *TransferService {
	return &TransferService{repo: repo}
}

// TransferResult is the successful transfer response payload
type TransferResult struct {
	Status     string `json:"status"`
	TxHash     string `json:"txHash"`
	NewBalance string `json:"newBalance"`
}

// Transfer validates and executes a withdrawal to an external wallet address
func (s *TransferService) Transfer(ctx context.Context, userID, walletAddress, token, amountStr string) (*TransferResult, error) {
	if userID == "" || walletAddress == "" || token == "" || amountStr == "" {
		return nil, ErrMissingFields
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil || !amount.IsPositive() {
		return nil, ErrInvalidAmount
	}

	ok, err := s.repo.DecrementBalanceIfAvailable(ctx, userID, token, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to debit balance: %w", err)
	}

	if !ok {
		available, err := s.repo.GetBalance(ctx, userID, token)
		if err != nil {
			return nil, fmt.Errorf("failed to load balance: %w", err)
		}
		return nil, &InsufficientBalanceError{Token: token, Available: available}
	}

	txHash := blockchain.MockSignature()

	// History entries are signed: the outgoing transfer is recorded as a
	// negative amount so per-day sums stay consistent with the balance.
	record := &models.EarningRecord{
		UserID:   userID,
		Date:     time.Now(),
		Activity: fmt.Sprintf("Transfer to %s", walletAddress),
		Amount:   amount.Neg(),
		Token:    token,
		Status:   models.EarningStatusCompleted,
		TxHash:   &txHash,
	}

	if err := s.repo.CreateEarning(ctx, record); err != nil {
		// The debit already happened; surface the error instead of
		// attempting a compensating credit that could double-apply.
		return nil, fmt.Errorf("transfer debited but history append failed: %w", err)
	}

	newBalance, err := s.repo.GetBalance(ctx, userID, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load new balance: %w", err)
	}

	log.Printf("Transfer executed: user=%s wallet=%s amount=%s %s tx=%s",
		userID, walletAddress, amount, token, txHash)

	return &TransferResult{
		Status:     "success",
		TxHash:     txHash,
		NewBalance: newBalance.String(),
	}, nil
}
