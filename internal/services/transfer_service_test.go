package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"meechain/internal/repository"
)

func TestTransferValidation(t *testing.T) {
	db := setupTestDB(t, "transfer_validation")
	service := NewTransferService(repository.NewRepository(db))
	ctx := context.Background()

	if _, err := service.Transfer(ctx, "", "wallet-1", "MEE", "5"); !errors.Is(err, ErrMissingFields) {
		t.Errorf("expected ErrMissingFields for empty user, got %v", err)
	}
	if _, err := service.Transfer(ctx, "user-1", "", "MEE", "5"); !errors.Is(err, ErrMissingFields) {
		t.Errorf("expected ErrMissingFields for empty wallet, got %v", err)
	}
	if _, err := service.Transfer(ctx, "user-1", "wallet-1", "MEE", "0"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for zero amount, got %v", err)
	}
	if _, err := service.Transfer(ctx, "user-1", "wallet-1", "MEE", "-3"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount for negative amount, got %v", err)
	}
}

func TestTransferInsufficientBalanceLeavesBalanceUntouched(t *testing.T) {
	db := setupTestDB(t, "transfer_insufficient")
	repo := repository.NewRepository(db)
	service := NewTransferService(repo)
	ctx := context.Background()

	if err := repo.AddToBalance(ctx, "user-1", "MEE", decimal.RequireFromString("5.0")); err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}

	_, err := service.Transfer(ctx, "user-1", "wallet-1", "MEE", "10.0")
	var insufficientErr *InsufficientBalanceError
	if !errors.As(err, &insufficientErr) {
		t.Fatalf("expected InsufficientBalanceError, got %v", err)
	}
	if !insufficientErr.Available.Equal(decimal.RequireFromString("5.0")) {
		t.Errorf("expected available 5.0, got %s", insufficientErr.Available)
	}

	balance, err := repo.GetBalance(ctx, "user-1", "MEE")
	if err != nil {
		t.Fatalf("failed to reload balance: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("5.0")) {
		t.Errorf("failed transfer moved the balance: got %s, want 5.0", balance)
	}

	// Nothing should be appended to history for a rejected transfer
	count, err := repo.CountEarnings(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to count history: %v", err)
	}
	if count != 0 {
		t.Errorf("rejected transfer wrote %d history entries", count)
	}
}

func TestTransferSuccess(t *testing.T) {
	db := setupTestDB(t, "transfer_success")
	repo := repository.NewRepository(db)
	service := NewTransferService(repo)
	ctx := context.Background()

	if err := repo.AddToBalance(ctx, "user-1", "MEE", decimal.RequireFromString("20")); err != nil {
		t.Fatalf("failed to seed balance: %v", err)
	}

	result, err := service.Transfer(ctx, "user-1", "wallet-1", "MEE", "7.5")
	if err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	if result.Status != "success" {
		t.Errorf("expected status success, got %s", result.Status)
	}
	if result.TxHash == "" {
		t.Error("expected a transaction hash")
	}
	if result.NewBalance != "12.5" {
		t.Errorf("expected new balance 12.5, got %s", result.NewBalance)
	}

	// The transfer lands in history as a signed (negative) entry
	records, err := repo.ListEarnings(ctx, "user-1", 10, 0)
	if err != nil {
		t.Fatalf("failed to load history: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(records))
	}
	if !records[0].Amount.Equal(decimal.RequireFromString("-7.5")) {
		t.Errorf("expected history amount -7.5, got %s", records[0].Amount)
	}
	if records[0].TxHash == nil || *records[0].TxHash != result.TxHash {
		t.Error("history entry missing the transfer tx hash")
	}
}
