package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"meechain/internal/blockchain"
	"meechain/internal/models"
	"meechain/internal/repository"
)

// QuestService defines quests and records one-time completions that mint
// rewards. Completion is exactly-once per (user, quest): a mutex serializes
// the check-then-complete path in-process, and the unique completion index
// is the backstop.
type QuestService struct {
	repo     *repository.Repository
	contract *blockchain.RewardContract
	earnings *EarningService
	tiers    *TierService
	mu       sync.Mutex
}

func NewQuestService(
	repo *repository.Repository,
	contract *blockchain.RewardContract,
	earnings *EarningService,
	tiers *TierService,
) *QuestService {
	return &QuestService{
		repo:     repo,
		contract: contract,
		earnings: earnings,
		tiers:    tiers,
	}
}

// CreateQuestInput carries the owner-supplied quest definition
type CreateQuestInput struct {
	Name             string
	Description      string
	RewardAmount     string
	RewardType       string
	BadgeName        string
	BadgeDescription string
	BadgeTokenURI    string
}

// CreateQuestResult is the creation response payload
type CreateQuestResult struct {
	QuestID     uint   `json:"questId"`
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
}

// CompletionResult is the completion response payload
type CompletionResult struct {
	QuestID     uint   `json:"questId"`
	TxHash      string `json:"txHash"`
	BlockNumber uint64 `json:"blockNumber"`
	Message     string `json:"message"`
}

// QuestWithStatus is a quest annotated with one user's completion state
type QuestWithStatus struct {
	models.Quest
	UserCompleted bool   `json:"userCompleted"`
	UserStatus    string `json:"userStatus"` // completed, available or inactive
}

// CreateQuest validates and registers a new quest definition
func (s *QuestService) CreateQuest(ctx context.Context, input CreateQuestInput) (*CreateQuestResult, error) {
	if input.Name == "" || input.Description == "" || input.RewardAmount == "" || input.RewardType == "" {
		return nil, ErrMissingFields
	}

	rewardType := models.RewardType(input.RewardType)
	if rewardType != models.RewardTypeToken && rewardType != models.RewardTypeBadge {
		return nil, fmt.Errorf("rewardType must be %q or %q", models.RewardTypeToken, models.RewardTypeBadge)
	}

	if rewardType == models.RewardTypeBadge && input.BadgeName == "" {
		return nil, fmt.Errorf("badgeName is required for badge quests")
	}

	rewardAmount, err := decimal.NewFromString(input.RewardAmount)
	if err != nil || rewardAmount.IsNegative() {
		return nil, ErrInvalidAmount
	}

	quest := &models.Quest{
		Name:         input.Name,
		Description:  input.Description,
		RewardAmount: rewardAmount,
		RewardType:   rewardType,
		IsActive:     true,
	}

	if input.BadgeName != "" {
		quest.BadgeName = &input.BadgeName
	}
	if input.BadgeDescription != "" {
		quest.BadgeDescription = &input.BadgeDescription
	}
	if input.BadgeTokenURI != "" {
		quest.BadgeTokenURI = &input.BadgeTokenURI
	}

	if err := s.repo.CreateQuest(ctx, quest); err != nil {
		return nil, fmt.Errorf("failed to create quest: %w", err)
	}

	txHash, slot, err := s.contract.RegisterQuest(ctx, quest.QuestID, rewardAmount)
	if err != nil {
		// The quest row is the source of truth; on-chain registration
		// failure is logged and surfaced, not rolled back.
		log.Printf("Warning: on-chain quest registration failed for quest %d: %v", quest.QuestID, err)
		return nil, fmt.Errorf("failed to register quest on-chain: %w", err)
	}

	log.Printf("Quest created: id=%d name=%q reward=%s %s", quest.QuestID, quest.Name, rewardAmount, rewardType)
	return &CreateQuestResult{
		QuestID:     quest.QuestID,
		TxHash:      txHash,
		BlockNumber: slot,
	}, nil
}

// SetQuestActive toggles a quest's active flag
func (s *QuestService) SetQuestActive(ctx context.Context, questID uint, active bool) error {
	err := s.repo.SetQuestActive(ctx, questID, active)
	if err == gorm.ErrRecordNotFound {
		return ErrQuestNotFound
	}
	return err
}

// CompleteQuest transitions (userAddress, questId) from not-completed to
// completed, mints the reward and credits the earning ledger. The transition
// is terminal; a second attempt fails without re-minting or re-counting.
func (s *QuestService) CompleteQuest(ctx context.Context, userAddress string, questID uint) (*CompletionResult, error) {
	if userAddress == "" {
		return nil, ErrMissingFields
	}

	quest, err := s.repo.GetQuestByID(ctx, questID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrQuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quest: %w", err)
	}

	if !quest.IsActive {
		return nil, ErrQuestInactive
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	completed, err := s.repo.HasCompleted(ctx, userAddress, questID)
	if err != nil {
		return nil, fmt.Errorf("failed to check completion: %w", err)
	}
	if completed {
		return nil, ErrQuestAlreadyCompleted
	}

	var txHash string
	var slot uint64
	switch quest.RewardType {
	case models.RewardTypeBadge:
		badgeName := quest.Name
		if quest.BadgeName != nil {
			badgeName = *quest.BadgeName
		}
		tokenURI := ""
		if quest.BadgeTokenURI != nil {
			tokenURI = *quest.BadgeTokenURI
		}
		txHash, slot, err = s.contract.MintBadge(ctx, userAddress, badgeName, tokenURI)
	default:
		txHash, slot, err = s.contract.MintTokenReward(ctx, userAddress, quest.RewardAmount)
	}
	if err != nil {
		return nil, fmt.Errorf("reward mint failed: %w", err)
	}

	completion := &models.QuestCompletion{
		UserAddress: userAddress,
		QuestID:     questID,
		TxHash:      &txHash,
	}

	if err := s.repo.CreateCompletion(ctx, completion); err != nil {
		// Unique (user, quest) index: a concurrent completion won the race.
		if strings.Contains(strings.ToLower(err.Error()), "unique") ||
			strings.Contains(strings.ToLower(err.Error()), "duplicate") {
			return nil, ErrQuestAlreadyCompleted
		}
		return nil, fmt.Errorf("failed to record completion: %w", err)
	}

	if err := s.repo.IncrementCompletions(ctx, questID); err != nil {
		log.Printf("Warning: failed to increment completions for quest %d: %v", questID, err)
	}

	tokensEarned := int64(0)
	if quest.RewardType == models.RewardTypeToken {
		if _, err := s.earnings.RecordQuestReward(ctx, userAddress, quest.Name, quest.RewardAmount, txHash); err != nil {
			log.Printf("Warning: failed to credit quest reward for user %s: %v", userAddress, err)
		}
		tokensEarned = quest.RewardAmount.IntPart()
	}

	if err := s.tiers.AddQuestProgress(ctx, userAddress, tokensEarned); err != nil {
		log.Printf("Warning: failed to advance tier progress for user %s: %v", userAddress, err)
	}

	log.Printf("Quest completed: quest=%d user=%s tx=%s", questID, userAddress, txHash)
	return &CompletionResult{
		QuestID:     questID,
		TxHash:      txHash,
		BlockNumber: slot,
		Message:     "Quest completed successfully",
	}, nil
}

func deriveUserStatus(quest *models.Quest, userCompleted bool) string {
	if userCompleted {
		return "completed"
	}
	if quest.IsActive {
		return "available"
	}
	return "inactive"
}

// GetQuestWithStatus returns one quest annotated with a user's status
func (s *QuestService) GetQuestWithStatus(ctx context.Context, questID uint, userAddress string) (*QuestWithStatus, error) {
	quest, err := s.repo.GetQuestByID(ctx, questID)
	if err == gorm.ErrRecordNotFound {
		return nil, ErrQuestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quest: %w", err)
	}

	completed := false
	if userAddress != "" {
		completed, err = s.repo.HasCompleted(ctx, userAddress, questID)
		if err != nil {
			return nil, fmt.Errorf("failed to check completion: %w", err)
		}
	}

	return &QuestWithStatus{
		Quest:         *quest,
		UserCompleted: completed,
		UserStatus:    deriveUserStatus(quest, completed),
	}, nil
}

// ListQuestsWithStatus returns all quests annotated with a user's status.
// With no user the per-user fields read as not-completed.
func (s *QuestService) ListQuestsWithStatus(ctx context.Context, userAddress string) ([]QuestWithStatus, error) {
	quests, err := s.repo.ListQuests(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list quests: %w", err)
	}

	completedByQuest := map[uint]bool{}
	if userAddress != "" {
		completedByQuest, err = s.repo.ListCompletionsByUser(ctx, userAddress)
		if err != nil {
			return nil, fmt.Errorf("failed to load completions: %w", err)
		}
	}

	result := make([]QuestWithStatus, 0, len(quests))
	for _, quest := range quests {
		completed := completedByQuest[quest.QuestID]
		result = append(result, QuestWithStatus{
			Quest:         *quest,
			UserCompleted: completed,
			UserStatus:    deriveUserStatus(quest, completed),
		})
	}

	return result, nil
}
