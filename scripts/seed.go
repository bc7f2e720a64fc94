package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// Seeds the demo quest catalog. Safe to re-run: quests are keyed by name
// and skipped when present.
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Build connection string
	dbHost := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	dbUser := os.Getenv("DB_USER")
	dbPassword := os.Getenv("DB_PASSWORD")
	dbName := os.Getenv("DB_NAME")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		dbHost, dbPort, dbUser, dbPassword, dbName)

	// Connect to database
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	log.Println("Connected to database successfully")

	type seedQuest struct {
		name        string
		description string
		reward      string
		rewardType  string
		badgeName   string
	}

	quests := []seedQuest{
		{"First Steps", "Connect your wallet and say hi to MeeBot", "10", "token", ""},
		{"Token Pioneer", "Make your first MEE transaction", "25", "token", ""},
		{"Quest Explorer", "Complete three quests in a single day", "50", "token", ""},
		{"Badge Collector", "Claim your first achievement badge", "0", "badge", "Collector"},
		{"Community Builder", "Invite a friend with your referral code", "100", "token", ""},
	}

	for _, q := range quests {
		var exists bool
		if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM quests WHERE name = $1)", q.name).Scan(&exists); err != nil {
			log.Fatalf("Failed to check quest %q: %v", q.name, err)
		}
		if exists {
			log.Printf("Quest %q already seeded, skipping", q.name)
			continue
		}

		var badgeName interface{}
		if q.badgeName != "" {
			badgeName = q.badgeName
		}

		_, err := db.Exec(
			`INSERT INTO quests (name, description, reward_amount, reward_type, badge_name, is_active, completions, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, true, 0, NOW(), NOW())`,
			q.name, q.description, q.reward, q.rewardType, badgeName,
		)
		if err != nil {
			log.Fatalf("Failed to seed quest %q: %v", q.name, err)
		}
		log.Printf("Seeded quest %q", q.name)
	}

	log.Println("Seed completed successfully")
}
