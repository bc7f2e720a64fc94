package services

import (
	"context"
	"errors"
	"testing"

	"meechain/internal/models"
	"meechain/internal/repository"
)

func TestProgressPercentageTakesMaxRatio(t *testing.T) {
	// 7/10 missions, 20/100 tokens, 1/5 referrals: missions dominate at 70
	custom := &TierDefinition{
		Name:         "Test",
		Level:        99,
		Requirements: models.TierProgress{MissionsCompleted: 10, TokensEarned: 100, Referrals: 5},
	}
	progress := models.TierProgress{MissionsCompleted: 7, TokensEarned: 20, Referrals: 1}
	if got := ProgressPercentage(progress, custom); got != 70 {
		t.Errorf("expected 70, got %d", got)
	}

	// Over-fulfilled dimensions cap at 100
	progress = models.TierProgress{MissionsCompleted: 50, TokensEarned: 0, Referrals: 0}
	if got := ProgressPercentage(progress, custom); got != 100 {
		t.Errorf("expected cap at 100, got %d", got)
	}

	// No next tier means the ladder is finished
	if got := ProgressPercentage(progress, nil); got != 100 {
		t.Errorf("expected 100 at top tier, got %d", got)
	}
}

func TestCalculateTierNeverSkips(t *testing.T) {
	// Meets Explorer and Adventurer in one jump
	tier := CalculateTier(models.TierProgress{MissionsCompleted: 15, TokensEarned: 500, Referrals: 3})
	if tier.Name != "Adventurer" {
		t.Errorf("expected Adventurer, got %s", tier.Name)
	}

	// Huge tokens and referrals but zero missions: stuck at Beginner
	tier = CalculateTier(models.TierProgress{MissionsCompleted: 0, TokensEarned: 10000, Referrals: 10})
	if tier.Name != "Beginner" {
		t.Errorf("expected Beginner when missions block the chain, got %s", tier.Name)
	}

	// Explorer satisfied, Adventurer missions missing
	tier = CalculateTier(models.TierProgress{MissionsCompleted: 5, TokensEarned: 500, Referrals: 3})
	if tier.Name != "Explorer" {
		t.Errorf("expected Explorer, got %s", tier.Name)
	}
}

func int64p(v int64) *int64 { return &v }

func TestUpdateProgressUpgradesToExplorer(t *testing.T) {
	db := setupTestDB(t, "tier_upgrade")
	service := NewTierService(repository.NewRepository(db))
	ctx := context.Background()

	result, err := service.UpdateProgress(ctx, "user-1", int64p(5), int64p(100), int64p(1), nil)
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}

	if result.Status != "upgraded" {
		t.Errorf("expected status upgraded, got %s", result.Status)
	}
	if result.Tier != "Explorer" || result.Level != 2 {
		t.Errorf("expected Explorer level 2, got %s level %d", result.Tier, result.Level)
	}
	if result.OldTier != "Beginner" {
		t.Errorf("expected old tier Beginner, got %s", result.OldTier)
	}
	if len(result.RewardsGranted) == 0 {
		t.Error("expected rewards granted on upgrade")
	}

	status, err := service.GetStatus(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if status.Tier != "Explorer" || status.Level != 2 {
		t.Errorf("status not persisted: got %s level %d", status.Tier, status.Level)
	}
	if status.NextTier == nil || *status.NextTier != "Adventurer" {
		t.Error("expected next tier Adventurer")
	}
}

func TestTierNeverDemotes(t *testing.T) {
	db := setupTestDB(t, "tier_monotonic")
	service := NewTierService(repository.NewRepository(db))
	ctx := context.Background()

	if _, err := service.UpdateProgress(ctx, "user-1", int64p(5), int64p(100), int64p(1), nil); err != nil {
		t.Fatalf("initial upgrade failed: %v", err)
	}

	// Lower counters recompute to Beginner, but the achieved level sticks
	result, err := service.UpdateProgress(ctx, "user-1", int64p(0), int64p(0), int64p(0), nil)
	if err != nil {
		t.Fatalf("UpdateProgress failed: %v", err)
	}
	if result.Status != "updated" {
		t.Errorf("expected status updated, got %s", result.Status)
	}
	if result.Tier != "Explorer" || result.Level != 2 {
		t.Errorf("tier demoted: got %s level %d", result.Tier, result.Level)
	}
}

func TestUpdateProgressTierOverride(t *testing.T) {
	db := setupTestDB(t, "tier_override")
	service := NewTierService(repository.NewRepository(db))
	ctx := context.Background()

	if _, err := service.UpdateProgress(ctx, "user-1", nil, nil, nil, strp("NotATier")); !errors.Is(err, ErrInvalidTier) {
		t.Errorf("expected ErrInvalidTier, got %v", err)
	}

	result, err := service.UpdateProgress(ctx, "user-1", nil, nil, nil, strp("Adventurer"))
	if err != nil {
		t.Fatalf("override failed: %v", err)
	}
	if result.Status != "upgraded" || result.Level != 3 {
		t.Errorf("expected upgrade to level 3, got %s level %d", result.Status, result.Level)
	}
}

func strp(s string) *string { return &s }

func TestGetStatusUnknownUserReadsAsBeginner(t *testing.T) {
	db := setupTestDB(t, "tier_unknown")
	service := NewTierService(repository.NewRepository(db))
	ctx := context.Background()

	status, err := service.GetStatus(ctx, "never-seen")
	if err != nil {
		t.Fatalf("GetStatus failed: %v", err)
	}
	if status.Tier != "Beginner" || status.Level != 1 {
		t.Errorf("expected fresh Beginner, got %s level %d", status.Tier, status.Level)
	}
	if status.ProgressPercentage != 0 {
		t.Errorf("expected 0%% progress, got %d", status.ProgressPercentage)
	}

	if _, err := service.GetStatus(ctx, ""); !errors.Is(err, ErrMissingUserID) {
		t.Errorf("expected ErrMissingUserID, got %v", err)
	}
}
