package repository

import (
	"context"
	"time"

	"meechain/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateEarning appends a new earning record to a user's history, assigning
// an external reference id if the caller did not set one
func (r *Repository) CreateEarning(ctx context.Context, record *models.EarningRecord) error {
	if record.ReferenceID == uuid.Nil {
		record.ReferenceID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// ListEarnings retrieves a page of a user's earning history, newest first.
// Ties within a day are broken by insertion order (sequence id).
func (r *Repository) ListEarnings(ctx context.Context, userID string, limit, offset int) ([]*models.EarningRecord, error) {
	var records []*models.EarningRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

// CountEarnings returns the total number of history entries for a user
func (r *Repository) CountEarnings(ctx context.Context, userID string) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&models.EarningRecord{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListEarningsBetween retrieves a user's records with date in [from, to)
func (r *Repository) ListEarningsBetween(ctx context.Context, userID string, from, to time.Time) ([]*models.EarningRecord, error) {
	var records []*models.EarningRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("id DESC").
		Find(&records).Error

	if err != nil {
		return nil, err
	}

	return records, nil
}

// GetBalances returns all token balances for a user
func (r *Repository) GetBalances(ctx context.Context, userID string) ([]models.UserBalance, error) {
	var balances []models.UserBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("token ASC").
		Find(&balances).Error

	if err != nil {
		return nil, err
	}

	return balances, nil
}

// GetBalance returns the current amount for one (user, token) pair, zero if absent
func (r *Repository) GetBalance(ctx context.Context, userID, token string) (decimal.Decimal, error) {
	var balance models.UserBalance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND token = ?", userID, token).
		First(&balance).Error

	if err == gorm.ErrRecordNotFound {
		return decimal.Zero, nil
	}

	if err != nil {
		return decimal.Zero, err
	}

	return balance.Amount, nil
}

// AddToBalance atomically increments a (user, token) balance, creating the
// row on first credit.
func (r *Repository) AddToBalance(ctx context.Context, userID, token string, amount decimal.Decimal) error {
	result := r.db.WithContext(ctx).Model(&models.UserBalance{}).
		Where("user_id = ? AND token = ?", userID, token).
		Update("amount", gorm.Expr("amount + ?", amount))

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		return nil
	}

	balance := models.UserBalance{
		UserID: userID,
		Token:  token,
		Amount: amount,
	}

	if err := r.db.WithContext(ctx).Create(&balance).Error; err != nil {
		// Row was created concurrently, the unique index rejected ours.
		// Fall back to the increment path.
		return r.db.WithContext(ctx).Model(&models.UserBalance{}).
			Where("user_id = ? AND token = ?", userID, token).
			Update("amount", gorm.Expr("amount + ?", amount)).Error
	}

	return nil
}

// DecrementBalanceIfAvailable decrements a balance only if it covers the
// amount. Check and decrement are a single conditional UPDATE, so two
// concurrent transfers can never both pass the check on the same funds.
// Returns false when the balance was insufficient.
func (r *Repository) DecrementBalanceIfAvailable(ctx context.Context, userID, token string, amount decimal.Decimal) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.UserBalance{}).
		Where("user_id = ? AND token = ? AND amount >= ?", userID, token, amount).
		Update("amount", gorm.Expr("amount - ?", amount))

	if result.Error != nil {
		return false, result.Error
	}

	return result.RowsAffected > 0, nil
}

// SumCompletedQuestEarnings sums a user's completed quest-reward earnings,
// the ground truth behind the tokensEarned tier counter.
func (r *Repository) SumCompletedQuestEarnings(ctx context.Context, userID string) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := r.db.WithContext(ctx).Model(&models.EarningRecord{}).
		Where("user_id = ? AND status = ? AND activity LIKE ?", userID, models.EarningStatusCompleted, "Quest:%").
		Select("COALESCE(SUM(amount), 0)").Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
