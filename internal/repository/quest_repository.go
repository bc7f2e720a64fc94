package repository

import (
	"context"

	"meechain/internal/models"

	"gorm.io/gorm"
)

// CreateQuest creates a new quest definition
func (r *Repository) CreateQuest(ctx context.Context, quest *models.Quest) error {
	return r.db.WithContext(ctx).Create(quest).Error
}

// GetQuestByID retrieves a quest by its id
func (r *Repository) GetQuestByID(ctx context.Context, questID uint) (*models.Quest, error) {
	var quest models.Quest
	err := r.db.WithContext(ctx).Where("quest_id = ?", questID).First(&quest).Error
	if err != nil {
		return nil, err
	}
	return &quest, nil
}

// ListQuests retrieves all quests in creation order
func (r *Repository) ListQuests(ctx context.Context) ([]*models.Quest, error) {
	var quests []*models.Quest
	err := r.db.WithContext(ctx).
		Order("quest_id ASC").
		Find(&quests).Error

	if err != nil {
		return nil, err
	}

	return quests, nil
}

// SetQuestActive toggles a quest's active flag
func (r *Repository) SetQuestActive(ctx context.Context, questID uint, active bool) error {
	result := r.db.WithContext(ctx).Model(&models.Quest{}).
		Where("quest_id = ?", questID).
		Update("is_active", active)

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// HasCompleted reports whether a user already completed a quest
func (r *Repository) HasCompleted(ctx context.Context, userAddress string, questID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QuestCompletion{}).
		Where("user_address = ? AND quest_id = ?", userAddress, questID).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// CreateCompletion records a quest completion. The unique
// (user_address, quest_id) index makes a duplicate insert fail.
func (r *Repository) CreateCompletion(ctx context.Context, completion *models.QuestCompletion) error {
	return r.db.WithContext(ctx).Create(completion).Error
}

// ListCompletionsByUser returns a user's completions keyed by quest id
func (r *Repository) ListCompletionsByUser(ctx context.Context, userAddress string) (map[uint]bool, error) {
	var completions []models.QuestCompletion
	err := r.db.WithContext(ctx).
		Where("user_address = ?", userAddress).
		Find(&completions).Error

	if err != nil {
		return nil, err
	}

	completed := make(map[uint]bool, len(completions))
	for _, c := range completions {
		completed[c.QuestID] = true
	}

	return completed, nil
}

// CountCompletionsByUser returns how many quests a user has completed
func (r *Repository) CountCompletionsByUser(ctx context.Context, userAddress string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.QuestCompletion{}).
		Where("user_address = ?", userAddress).
		Count(&count).Error
	return count, err
}

// IncrementCompletions bumps a quest's global completion counter
func (r *Repository) IncrementCompletions(ctx context.Context, questID uint) error {
	return r.db.WithContext(ctx).Model(&models.Quest{}).
		Where("quest_id = ?", questID).
		Update("completions", gorm.Expr("completions + 1")).Error
}

// GetTierState retrieves a user's stored tier state
func (r *Repository) GetTierState(ctx context.Context, userID string) (*models.UserTierState, error) {
	var state models.UserTierState
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&state).Error
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// SaveTierState creates or updates a user's tier state
func (r *Repository) SaveTierState(ctx context.Context, state *models.UserTierState) error {
	return r.db.WithContext(ctx).Save(state).Error
}

// ListTierStates returns every stored tier state, for reconciliation
func (r *Repository) ListTierStates(ctx context.Context) ([]*models.UserTierState, error) {
	var states []*models.UserTierState
	err := r.db.WithContext(ctx).Find(&states).Error
	if err != nil {
		return nil, err
	}
	return states, nil
}

// CountReferralsByWallet counts referrals credited to the user owning the
// given wallet. Returns found=false when no such user exists.
func (r *Repository) CountReferralsByWallet(ctx context.Context, walletAddress string) (int64, bool, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("wallet_address = ?", walletAddress).First(&user).Error
	if err == gorm.ErrRecordNotFound {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	var count int64
	err = r.db.WithContext(ctx).Model(&models.Referral{}).
		Where("referrer_id = ?", user.ID).
		Count(&count).Error
	if err != nil {
		return 0, false, err
	}

	return count, true, nil
}
