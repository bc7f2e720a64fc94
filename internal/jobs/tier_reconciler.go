package jobs

import (
	"context"
	"log"
	"time"

	"meechain/internal/repository"
	"meechain/internal/services"
)

// TierReconcilerJob periodically recomputes stored tier progress counters
// from the ledger (completions, quest earnings, referrals) and repairs any
// drift. Counters only move up, so the job can credit missed progress but
// never demote.
type TierReconcilerJob struct {
	repo    *repository.Repository
	service *services.TierService
}

func NewTierReconcilerJob(repo *repository.Repository, service *services.TierService) *TierReconcilerJob {
	return &TierReconcilerJob{
		repo:    repo,
		service: service,
	}
}

// Start begins the periodic reconciliation job
func (j *TierReconcilerJob) Start(interval time.Duration) {
	go func() {
		// Run immediately on start
		ctx := context.Background()
		if err := j.runOnce(ctx); err != nil {
			log.Printf("Initial tier reconciliation error: %v", err)
		}

		// Then run periodically
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			if err := j.runOnce(ctx); err != nil {
				log.Printf("Tier reconciliation error: %v", err)
			}
		}
	}()
}

func (j *TierReconcilerJob) runOnce(ctx context.Context) error {
	states, err := j.repo.ListTierStates(ctx)
	if err != nil {
		return err
	}

	repaired := 0
	for _, state := range states {
		changed, err := j.service.ReconcileFromLedger(ctx, state)
		if err != nil {
			log.Printf("Reconciliation failed for user %s: %v", state.UserID, err)
			continue
		}
		if changed {
			repaired++
		}
	}

	if repaired > 0 {
		log.Printf("Tier reconciliation repaired %d of %d users", repaired, len(states))
	}
	return nil
}
