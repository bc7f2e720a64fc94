package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"meechain/internal/models"
	"meechain/internal/repository"
)

// TierDefinition describes one rung of the progression ladder
type TierDefinition struct {
	Name         string
	Level        int
	Requirements models.TierProgress
	Benefits     []string
}

// Tiers is the progression ladder, ordered by ascending level. Thresholds
// are monotonically increasing, and the calculator depends on that: a user
// holds the highest tier reachable through an unbroken chain of satisfied
// requirements starting at Beginner.
var Tiers = []TierDefinition{
	{
		Name:         "Beginner",
		Level:        1,
		Requirements: models.TierProgress{MissionsCompleted: 0, TokensEarned: 0, Referrals: 0},
		Benefits:     []string{"Basic wallet access", "Daily check-in bonus"},
	},
	{
		Name:         "Explorer",
		Level:        2,
		Requirements: models.TierProgress{MissionsCompleted: 5, TokensEarned: 100, Referrals: 1},
		Benefits:     []string{"Explorer badge", "+5% quest rewards", "Custom avatar frame"},
	},
	{
		Name:         "Adventurer",
		Level:        3,
		Requirements: models.TierProgress{MissionsCompleted: 15, TokensEarned: 500, Referrals: 3},
		Benefits:     []string{"Adventurer badge", "+10% quest rewards", "Priority support"},
	},
	{
		Name:         "Expert",
		Level:        4,
		Requirements: models.TierProgress{MissionsCompleted: 30, TokensEarned: 2000, Referrals: 5},
		Benefits:     []string{"Expert badge", "+15% quest rewards", "Early quest access"},
	},
	{
		Name:         "Legend",
		Level:        5,
		Requirements: models.TierProgress{MissionsCompleted: 50, TokensEarned: 10000, Referrals: 10},
		Benefits:     []string{"Legend badge", "+25% quest rewards", "Exclusive NFT drops", "Governance vote"},
	},
}

// TierService maps cumulative progress to tier levels and benefits.
// Level only ever increases: tiers are permanent achievements.
type TierService struct {
	repo *repository.Repository
}

func NewTierService(repo *repository.Repository) *TierService {
	return &TierService{repo: repo}
}

// TierStatus is the read-model for a user's progression
type TierStatus struct {
	Tier               string              `json:"tier"`
	Level              int                 `json:"level"`
	NextTier           *string             `json:"nextTier"`
	Progress           models.TierProgress `json:"progress"`
	RewardsUnlocked    []string            `json:"rewardsUnlocked"`
	ProgressPercentage int                 `json:"progressPercentage"`
}

// TierUpdateResult is the response to a progress update
type TierUpdateResult struct {
	Status         string              `json:"status"` // upgraded or updated
	Tier           string              `json:"tier"`
	Level          int                 `json:"level"`
	OldTier        string              `json:"oldTier"`
	RewardsGranted []string            `json:"rewardsGranted"`
	Progress       models.TierProgress `json:"progress"`
	Message        string              `json:"message,omitempty"`
}

func meetsRequirements(progress models.TierProgress, req models.TierProgress) bool {
	return progress.MissionsCompleted >= req.MissionsCompleted &&
		progress.TokensEarned >= req.TokensEarned &&
		progress.Referrals >= req.Referrals
}

// CalculateTier walks the ladder from the bottom and returns the highest
// contiguous tier whose requirements are all met. It stops at the first
// unmet tier, so satisfying a higher tier's thresholds alone never skips
// an unsatisfied lower one.
func CalculateTier(progress models.TierProgress) TierDefinition {
	current := Tiers[0]
	for _, tier := range Tiers {
		if !meetsRequirements(progress, tier.Requirements) {
			break
		}
		current = tier
	}
	return current
}

// tierByLevel returns the definition for a level, nil if out of range
func tierByLevel(level int) *TierDefinition {
	for i := range Tiers {
		if Tiers[i].Level == level {
			return &Tiers[i]
		}
	}
	return nil
}

// tierByName returns the definition with the given name, nil if unknown
func tierByName(name string) *TierDefinition {
	for i := range Tiers {
		if Tiers[i].Name == name {
			return &Tiers[i]
		}
	}
	return nil
}

func ratioPercent(current, required int64) int {
	if required <= 0 {
		return 100
	}
	pct := int(current * 100 / required)
	if pct > 100 {
		return 100
	}
	return pct
}

// ProgressPercentage reports how close the user is to the next tier as the
// MAX of the three completion ratios, capped at 100. Max, not average: the
// number shown is the dimension the user is closest to finishing.
func ProgressPercentage(progress models.TierProgress, next *TierDefinition) int {
	if next == nil {
		return 100
	}

	pct := ratioPercent(progress.MissionsCompleted, next.Requirements.MissionsCompleted)
	if p := ratioPercent(progress.TokensEarned, next.Requirements.TokensEarned); p > pct {
		pct = p
	}
	if p := ratioPercent(progress.Referrals, next.Requirements.Referrals); p > pct {
		pct = p
	}
	return pct
}

// unlockedBenefits returns the benefits of every tier up to and including level
func unlockedBenefits(level int) []string {
	var benefits []string
	for _, tier := range Tiers {
		if tier.Level > level {
			break
		}
		benefits = append(benefits, tier.Benefits...)
	}
	return benefits
}

// benefitsBetween returns the benefits granted moving from fromLevel
// (exclusive) to toLevel (inclusive)
func benefitsBetween(fromLevel, toLevel int) []string {
	var benefits []string
	for _, tier := range Tiers {
		if tier.Level > fromLevel && tier.Level <= toLevel {
			benefits = append(benefits, tier.Benefits...)
		}
	}
	return benefits
}

// loadOrInitState fetches the stored state or returns a fresh Beginner state
func (s *TierService) loadOrInitState(ctx context.Context, userID string) (*models.UserTierState, error) {
	state, err := s.repo.GetTierState(ctx, userID)
	if err == gorm.ErrRecordNotFound {
		return &models.UserTierState{
			UserID:     userID,
			Tier:       Tiers[0].Name,
			Level:      Tiers[0].Level,
			LastUpdate: time.Now(),
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tier state: %w", err)
	}
	return state, nil
}

// GetStatus returns a user's tier, progress and unlocked rewards.
// Unknown users read as a fresh Beginner; nothing is persisted.
func (s *TierService) GetStatus(ctx context.Context, userID string) (*TierStatus, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	state, err := s.loadOrInitState(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := tierByLevel(state.Level + 1)
	var nextName *string
	if next != nil {
		nextName = &next.Name
	}

	return &TierStatus{
		Tier:               state.Tier,
		Level:              state.Level,
		NextTier:           nextName,
		Progress:           state.Progress(),
		RewardsUnlocked:    unlockedBenefits(state.Level),
		ProgressPercentage: ProgressPercentage(state.Progress(), next),
	}, nil
}

// UpdateProgress stores new absolute progress counters and recomputes the
// tier, or applies an explicit tier override. The level never decreases.
func (s *TierService) UpdateProgress(
	ctx context.Context,
	userID string,
	missionsCompleted, tokensEarned, referrals *int64,
	newTier *string,
) (*TierUpdateResult, error) {
	if userID == "" {
		return nil, ErrMissingUserID
	}

	state, err := s.loadOrInitState(ctx, userID)
	if err != nil {
		return nil, err
	}

	if missionsCompleted != nil {
		state.MissionsCompleted = *missionsCompleted
	}
	if tokensEarned != nil {
		state.TokensEarned = *tokensEarned
	}
	if referrals != nil {
		state.Referrals = *referrals
	}

	var target TierDefinition
	if newTier != nil {
		override := tierByName(*newTier)
		if override == nil {
			return nil, ErrInvalidTier
		}
		target = *override
	} else {
		target = CalculateTier(state.Progress())
	}

	oldTier := state.Tier
	oldLevel := state.Level

	result := &TierUpdateResult{
		Status:   "updated",
		Tier:     state.Tier,
		Level:    state.Level,
		OldTier:  oldTier,
		Progress: state.Progress(),
	}

	if target.Level > state.Level {
		state.Tier = target.Name
		state.Level = target.Level

		result.Status = "upgraded"
		result.Tier = target.Name
		result.Level = target.Level
		result.RewardsGranted = benefitsBetween(oldLevel, target.Level)
		result.Message = fmt.Sprintf("Tier upgraded: %s -> %s", oldTier, target.Name)

		log.Printf("Tier upgrade: user=%s %s (level %d) -> %s (level %d)",
			userID, oldTier, oldLevel, target.Name, target.Level)
	} else if target.Level < state.Level {
		// Permanent progression: a lower computed tier never demotes.
		result.Message = "progress updated, tier unchanged"
	}

	state.LastUpdate = time.Now()
	if err := s.repo.SaveTierState(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save tier state: %w", err)
	}

	result.Progress = state.Progress()
	return result, nil
}

// AddQuestProgress advances a user's counters after a quest completion and
// applies any resulting upgrade.
func (s *TierService) AddQuestProgress(ctx context.Context, userID string, tokensEarned int64) error {
	state, err := s.loadOrInitState(ctx, userID)
	if err != nil {
		return err
	}

	missions := state.MissionsCompleted + 1
	tokens := state.TokensEarned + tokensEarned
	refs := state.Referrals

	_, err = s.UpdateProgress(ctx, userID, &missions, &tokens, &refs, nil)
	return err
}

// AddReferral credits one referral to the user's progress
func (s *TierService) AddReferral(ctx context.Context, userID string) error {
	state, err := s.loadOrInitState(ctx, userID)
	if err != nil {
		return err
	}

	refs := state.Referrals + 1
	_, err = s.UpdateProgress(ctx, userID, nil, nil, &refs, nil)
	return err
}

// ReconcileFromLedger recomputes a user's counters from ground truth
// (completion rows, completed quest earnings, referral rows) and applies
// them when they exceed the stored values. Counters never move down, so
// reconciliation can only repair missed credit, not demote.
func (s *TierService) ReconcileFromLedger(ctx context.Context, state *models.UserTierState) (bool, error) {
	missions, err := s.repo.CountCompletionsByUser(ctx, state.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to count completions: %w", err)
	}

	earned, err := s.repo.SumCompletedQuestEarnings(ctx, state.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to sum quest earnings: %w", err)
	}
	tokens := earned.IntPart()

	referrals, found, err := s.repo.CountReferralsByWallet(ctx, state.UserID)
	if err != nil {
		return false, fmt.Errorf("failed to count referrals: %w", err)
	}
	if !found {
		referrals = state.Referrals
	}

	if missions <= state.MissionsCompleted &&
		tokens <= state.TokensEarned &&
		referrals <= state.Referrals {
		return false, nil
	}

	if missions < state.MissionsCompleted {
		missions = state.MissionsCompleted
	}
	if tokens < state.TokensEarned {
		tokens = state.TokensEarned
	}
	if referrals < state.Referrals {
		referrals = state.Referrals
	}

	_, err = s.UpdateProgress(ctx, state.UserID, &missions, &tokens, &referrals, nil)
	if err != nil {
		return false, err
	}

	log.Printf("Tier progress reconciled for user %s: missions=%d tokens=%d referrals=%d",
		state.UserID, missions, tokens, referrals)
	return true, nil
}
