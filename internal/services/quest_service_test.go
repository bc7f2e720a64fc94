package services

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"meechain/internal/blockchain"
	"meechain/internal/repository"
)

// newQuestTestStack wires a quest service against an in-memory database and
// a reward contract in demo mode (no signer, generated signatures).
func newQuestTestStack(t *testing.T, name string) (*QuestService, *repository.Repository) {
	db := setupTestDB(t, name)
	repo := repository.NewRepository(db)
	contract := blockchain.NewRewardContract(nil, "")
	earnings := NewEarningService(repo, "MEE")
	tiers := NewTierService(repo)
	return NewQuestService(repo, contract, earnings, tiers), repo
}

func TestCreateQuestValidation(t *testing.T) {
	service, _ := newQuestTestStack(t, "quest_create_validation")
	ctx := context.Background()

	_, err := service.CreateQuest(ctx, CreateQuestInput{Name: "First Steps"})
	if !errors.Is(err, ErrMissingFields) {
		t.Errorf("expected ErrMissingFields, got %v", err)
	}

	_, err = service.CreateQuest(ctx, CreateQuestInput{
		Name: "First Steps", Description: "d", RewardAmount: "10", RewardType: "lootbox",
	})
	if err == nil {
		t.Error("expected error for unknown reward type")
	}

	_, err = service.CreateQuest(ctx, CreateQuestInput{
		Name: "First Steps", Description: "d", RewardAmount: "0", RewardType: "badge",
	})
	if err == nil {
		t.Error("expected error for badge quest without badge name")
	}

	_, err = service.CreateQuest(ctx, CreateQuestInput{
		Name: "First Steps", Description: "d", RewardAmount: "-1", RewardType: "token",
	})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestCompleteQuestExactlyOnce(t *testing.T) {
	service, repo := newQuestTestStack(t, "quest_complete_once")
	ctx := context.Background()

	created, err := service.CreateQuest(ctx, CreateQuestInput{
		Name:         "First Steps",
		Description:  "Connect your wallet",
		RewardAmount: "10",
		RewardType:   "token",
	})
	if err != nil {
		t.Fatalf("CreateQuest failed: %v", err)
	}
	if created.TxHash == "" {
		t.Error("expected a registration tx hash")
	}

	result, err := service.CompleteQuest(ctx, "user-wallet-1", created.QuestID)
	if err != nil {
		t.Fatalf("first completion failed: %v", err)
	}
	if result.TxHash == "" {
		t.Error("expected a mint tx hash")
	}

	// Second attempt is rejected and nothing re-counts
	_, err = service.CompleteQuest(ctx, "user-wallet-1", created.QuestID)
	if !errors.Is(err, ErrQuestAlreadyCompleted) {
		t.Fatalf("expected ErrQuestAlreadyCompleted, got %v", err)
	}

	quest, err := repo.GetQuestByID(ctx, created.QuestID)
	if err != nil {
		t.Fatalf("failed to reload quest: %v", err)
	}
	if quest.Completions != 1 {
		t.Errorf("expected completions=1 after a retry, got %d", quest.Completions)
	}

	// The reward landed in the ledger once
	balance, err := repo.GetBalance(ctx, "user-wallet-1", "MEE")
	if err != nil {
		t.Fatalf("failed to load balance: %v", err)
	}
	if !balance.Equal(decimal.RequireFromString("10")) {
		t.Errorf("expected balance 10, got %s", balance)
	}

	// Tier progress advanced by one mission and the reward tokens
	state, err := repo.GetTierState(ctx, "user-wallet-1")
	if err != nil {
		t.Fatalf("failed to load tier state: %v", err)
	}
	if state.MissionsCompleted != 1 || state.TokensEarned != 10 {
		t.Errorf("expected missions=1 tokens=10, got missions=%d tokens=%d",
			state.MissionsCompleted, state.TokensEarned)
	}
}

func TestCompleteQuestErrors(t *testing.T) {
	service, _ := newQuestTestStack(t, "quest_complete_errors")
	ctx := context.Background()

	if _, err := service.CompleteQuest(ctx, "user-1", 9999); !errors.Is(err, ErrQuestNotFound) {
		t.Errorf("expected ErrQuestNotFound, got %v", err)
	}

	created, err := service.CreateQuest(ctx, CreateQuestInput{
		Name: "Paused", Description: "d", RewardAmount: "5", RewardType: "token",
	})
	if err != nil {
		t.Fatalf("CreateQuest failed: %v", err)
	}

	if err := service.SetQuestActive(ctx, created.QuestID, false); err != nil {
		t.Fatalf("SetQuestActive failed: %v", err)
	}
	if _, err := service.CompleteQuest(ctx, "user-1", created.QuestID); !errors.Is(err, ErrQuestInactive) {
		t.Errorf("expected ErrQuestInactive, got %v", err)
	}

	if err := service.SetQuestActive(ctx, 9999, false); !errors.Is(err, ErrQuestNotFound) {
		t.Errorf("expected ErrQuestNotFound toggling missing quest, got %v", err)
	}

	if _, err := service.CompleteQuest(ctx, "", created.QuestID); !errors.Is(err, ErrMissingFields) {
		t.Errorf("expected ErrMissingFields for empty user, got %v", err)
	}
}

func TestQuestUserStatusDerivation(t *testing.T) {
	service, _ := newQuestTestStack(t, "quest_status")
	ctx := context.Background()

	active, err := service.CreateQuest(ctx, CreateQuestInput{
		Name: "Active Quest", Description: "d", RewardAmount: "5", RewardType: "token",
	})
	if err != nil {
		t.Fatalf("CreateQuest failed: %v", err)
	}
	paused, err := service.CreateQuest(ctx, CreateQuestInput{
		Name: "Paused Quest", Description: "d", RewardAmount: "5", RewardType: "token",
	})
	if err != nil {
		t.Fatalf("CreateQuest failed: %v", err)
	}
	if err := service.SetQuestActive(ctx, paused.QuestID, false); err != nil {
		t.Fatalf("SetQuestActive failed: %v", err)
	}
	done, err := service.CreateQuest(ctx, CreateQuestInput{
		Name: "Done Quest", Description: "d", RewardAmount: "5", RewardType: "token",
	})
	if err != nil {
		t.Fatalf("CreateQuest failed: %v", err)
	}
	if _, err := service.CompleteQuest(ctx, "user-1", done.QuestID); err != nil {
		t.Fatalf("CompleteQuest failed: %v", err)
	}

	quests, err := service.ListQuestsWithStatus(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListQuestsWithStatus failed: %v", err)
	}

	statuses := map[uint]string{}
	for _, q := range quests {
		statuses[q.QuestID] = q.UserStatus
	}

	if statuses[active.QuestID] != "available" {
		t.Errorf("expected available, got %s", statuses[active.QuestID])
	}
	if statuses[paused.QuestID] != "inactive" {
		t.Errorf("expected inactive, got %s", statuses[paused.QuestID])
	}
	if statuses[done.QuestID] != "completed" {
		t.Errorf("expected completed, got %s", statuses[done.QuestID])
	}

	// Completed-but-paused still reads completed
	if err := service.SetQuestActive(ctx, done.QuestID, false); err != nil {
		t.Fatalf("SetQuestActive failed: %v", err)
	}
	single, err := service.GetQuestWithStatus(ctx, done.QuestID, "user-1")
	if err != nil {
		t.Fatalf("GetQuestWithStatus failed: %v", err)
	}
	if single.UserStatus != "completed" {
		t.Errorf("expected completed to win over inactive, got %s", single.UserStatus)
	}
}

func TestBadgeQuestSkipsLedgerCredit(t *testing.T) {
	service, repo := newQuestTestStack(t, "quest_badge")
	ctx := context.Background()

	created, err := service.CreateQuest(ctx, CreateQuestInput{
		Name:         "Badge Collector",
		Description:  "Claim your first badge",
		RewardAmount: "0",
		RewardType:   "badge",
		BadgeName:    "Collector",
	})
	if err != nil {
		t.Fatalf("CreateQuest failed: %v", err)
	}

	if _, err := service.CompleteQuest(ctx, "user-1", created.QuestID); err != nil {
		t.Fatalf("CompleteQuest failed: %v", err)
	}

	balance, err := repo.GetBalance(ctx, "user-1", "MEE")
	if err != nil {
		t.Fatalf("failed to load balance: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("badge quest credited tokens: %s", balance)
	}

	// Badge completions still count as missions
	state, err := repo.GetTierState(ctx, "user-1")
	if err != nil {
		t.Fatalf("failed to load tier state: %v", err)
	}
	if state.MissionsCompleted != 1 {
		t.Errorf("expected missions=1, got %d", state.MissionsCompleted)
	}
}
