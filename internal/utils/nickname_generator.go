package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var adjectives = []string{
	"Happy", "Sparky", "Cosmic", "Lucky", "Sunny",
	"Zippy", "Merry", "Pixel", "Turbo", "Nova",
	"Bouncy", "Shiny", "Dandy", "Peppy", "Rocket",
	"Breezy", "Comet", "Star", "Moon", "Candy",
}

var nouns = []string{
	"Bot", "Bee", "Panda", "Otter", "Penguin",
	"Bunny", "Koala", "Dino", "Robo", "Sprout",
	"Chick", "Cub", "Pup", "Kit", "Duck",
	"Seal", "Frog", "Moth", "Gecko", "Finch",
}

// GenerateNickname creates a random nickname in the format "Adjective_Noun_XXXX"
// where XXXX is a random 4-digit number. New wallets get one on first login.
func GenerateNickname() (string, error) {
	// Pick random adjective
	adjIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(adjectives))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random adjective: %w", err)
	}

	// Pick random noun
	nounIdx, err := rand.Int(rand.Reader, big.NewInt(int64(len(nouns))))
	if err != nil {
		return "", fmt.Errorf("failed to generate random noun: %w", err)
	}

	// Generate random 4-digit suffix
	suffix, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("failed to generate random suffix: %w", err)
	}

	nickname := fmt.Sprintf("%s_%s_%04d",
		adjectives[adjIdx.Int64()],
		nouns[nounIdx.Int64()],
		suffix.Int64(),
	)

	return nickname, nil
}
