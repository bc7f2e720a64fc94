package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"

	"meechain/internal/models"
	"meechain/internal/repository"
)

// EarningService records token-earning activity and serves balances and
// history. History is append-only; balances only move through the
// repository's atomic increment.
type EarningService struct {
	repo         *repository.Repository
	defaultToken string
}

func NewEarningService(repo *repository.Repository, defaultToken string) *EarningService {
	return &EarningService{
		repo:         repo,
		defaultToken: defaultToken,
	}
}

// EarningSummary holds per-token totals plus sums for the current reporting day
type EarningSummary struct {
	Total map[string]string `json:"total"`
	Today map[string]string `json:"today"`
}

// Pagination describes a history page
type Pagination struct {
	Total   int64 `json:"total"`
	Offset  int   `json:"offset"`
	Limit   int   `json:"limit"`
	HasMore bool  `json:"hasMore"`
}

// RecordEarning validates and appends an earning event. The history entry is
// written regardless of status; the balance is credited only for completed
// events.
func (s *EarningService) RecordEarning(
	ctx context.Context,
	userID, activity, amountStr, token string,
	status models.EarningStatus,
) (*models.EarningRecord, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	amount, err := decimal.NewFromString(amountStr)
	if err != nil || amount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	if token == "" {
		token = s.defaultToken
	}

	if status == "" {
		status = models.EarningStatusCompleted
	}

	switch status {
	case models.EarningStatusPending, models.EarningStatusCompleted, models.EarningStatusFailed:
	default:
		return nil, ErrInvalidStatus
	}

	record := &models.EarningRecord{
		UserID:   userID,
		Date:     time.Now(),
		Activity: activity,
		Amount:   amount,
		Token:    token,
		Status:   status,
	}

	if err := s.repo.CreateEarning(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record earning: %w", err)
	}

	if status == models.EarningStatusCompleted {
		if err := s.repo.AddToBalance(ctx, userID, token, amount); err != nil {
			return nil, fmt.Errorf("failed to credit balance: %w", err)
		}
	}

	log.Printf("Earning recorded: user=%s activity=%q amount=%s %s status=%s",
		userID, activity, amount, token, status)
	return record, nil
}

// RecordQuestReward appends a completed reward entry for a finished quest
func (s *EarningService) RecordQuestReward(
	ctx context.Context,
	userID, questName string,
	amount decimal.Decimal,
	txHash string,
) (*models.EarningRecord, error) {
	record := &models.EarningRecord{
		UserID:   userID,
		Date:     time.Now(),
		Activity: fmt.Sprintf("Quest: %s", questName),
		Amount:   amount,
		Token:    s.defaultToken,
		Status:   models.EarningStatusCompleted,
		TxHash:   &txHash,
	}

	if err := s.repo.CreateEarning(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record quest reward: %w", err)
	}

	if err := s.repo.AddToBalance(ctx, userID, s.defaultToken, amount); err != nil {
		return nil, fmt.Errorf("failed to credit quest reward: %w", err)
	}

	return record, nil
}

// GetSummary returns total balances and completed earnings for the current
// calendar day. The day boundary is the server's reporting day, not a rolling
// 24h window. Pure read, no side effects.
func (s *EarningService) GetSummary(ctx context.Context, userID string) (*EarningSummary, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	balances, err := s.repo.GetBalances(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}

	total := make(map[string]string, len(balances))
	for _, b := range balances {
		total[b.Token] = b.Amount.String()
	}

	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	records, err := s.repo.ListEarningsBetween(ctx, userID, startOfDay, startOfDay.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("failed to load today's earnings: %w", err)
	}

	todaySums := make(map[string]decimal.Decimal)
	for _, r := range records {
		if r.Status != models.EarningStatusCompleted {
			continue
		}
		todaySums[r.Token] = todaySums[r.Token].Add(r.Amount)
	}

	today := make(map[string]string, len(todaySums))
	for token, sum := range todaySums {
		today[token] = sum.String()
	}

	return &EarningSummary{Total: total, Today: today}, nil
}

// GetHistory returns a page of the user's earning history, newest first
func (s *EarningService) GetHistory(ctx context.Context, userID string, limit, offset int) ([]*models.EarningRecord, *Pagination, error) {
	if userID == "" {
		return nil, nil, ErrMissingUserID
	}

	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	total, err := s.repo.CountEarnings(ctx, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to count history: %w", err)
	}

	records, err := s.repo.ListEarnings(ctx, userID, limit, offset)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load history: %w", err)
	}

	pagination := &Pagination{
		Total:   total,
		Offset:  offset,
		Limit:   limit,
		HasMore: int64(offset+limit) < total,
	}

	return records, pagination, nil
}
