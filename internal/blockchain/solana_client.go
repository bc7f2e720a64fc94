package blockchain

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

// SolanaClient handles Solana blockchain interactions for reward issuance
type SolanaClient struct {
	rpcClient        *rpc.Client
	network          string
	tokenMintAddress string
	serverWallet     *solana.Wallet
}

// NewSolanaClient creates a new Solana client
func NewSolanaClient(network, tokenMintAddress, privateKey string) *SolanaClient {
	var rpcURL string
	switch network {
	case "mainnet-beta":
		rpcURL = "https://api.mainnet-beta.solana.com"
	case "devnet":
		rpcURL = "https://api.devnet.solana.com"
	case "testnet":
		rpcURL = "https://api.testnet.solana.com"
	default:
		rpcURL = "https://api.devnet.solana.com"
	}

	client := &SolanaClient{
		rpcClient:        rpc.New(rpcURL),
		network:          network,
		tokenMintAddress: tokenMintAddress,
	}

	// Initialize server wallet if private key is provided
	if privateKey != "" {
		wallet, err := solana.WalletFromPrivateKeyBase58(privateKey)
		if err != nil {
			log.Printf("Warning: Failed to load server wallet: %v", err)
		} else {
			client.serverWallet = wallet
			log.Printf("Server wallet loaded: %s", wallet.PublicKey())
		}
	}

	return client
}

// HasSigner reports whether a server wallet is configured for real signing
func (s *SolanaClient) HasSigner() bool {
	return s.serverWallet != nil
}

// ValidateWalletAddress validates a Solana wallet address format
func (s *SolanaClient) ValidateWalletAddress(address string) bool {
	_, err := solana.PublicKeyFromBase58(address)
	return err == nil
}

// GetSlot returns the current slot, used as the block number in API responses
func (s *SolanaClient) GetSlot(ctx context.Context) (uint64, error) {
	slot, err := s.rpcClient.GetSlot(ctx, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, fmt.Errorf("failed to get slot: %w", err)
	}
	return slot, nil
}

// GetSOLBalance gets the SOL balance for a wallet
func (s *SolanaClient) GetSOLBalance(ctx context.Context, walletAddress string) (decimal.Decimal, error) {
	pubKey, err := solana.PublicKeyFromBase58(walletAddress)
	if err != nil {
		return decimal.Zero, err
	}

	balance, err := s.rpcClient.GetBalance(ctx, pubKey, rpc.CommitmentConfirmed)
	if err != nil {
		return decimal.Zero, err
	}

	// Convert lamports to SOL
	return decimal.NewFromInt(int64(balance.Value)).Div(decimal.NewFromInt(1_000_000_000)), nil
}

// VerifyTransaction checks whether a reward transaction is confirmed on-chain
func (s *SolanaClient) VerifyTransaction(ctx context.Context, txHash string) (bool, error) {
	sig, err := solana.SignatureFromBase58(txHash)
	if err != nil {
		return false, err
	}

	status, err := s.rpcClient.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return false, err
	}

	if len(status.Value) == 0 || status.Value[0] == nil {
		return false, nil // Not found
	}

	if status.Value[0].Err != nil {
		log.Printf("Transaction %s failed with error: %v", txHash, status.Value[0].Err)
		return false, fmt.Errorf("transaction execution failed")
	}

	confStatus := status.Value[0].ConfirmationStatus
	if confStatus != rpc.ConfirmationStatusConfirmed && confStatus != rpc.ConfirmationStatusFinalized {
		return false, nil // Not confirmed yet
	}

	return true, nil
}

// MockSignature generates a signature-shaped identifier for demo-mode
// operations that never reach the chain.
func MockSignature() string {
	b := make([]byte, 64)
	if _, err := rand.Read(b); err != nil {
		// rand.Read on crypto/rand does not fail in practice
		return base58.Encode([]byte("meechain-mock-signature"))
	}
	return base58.Encode(b)
}
