package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"meechain/internal/auth"
	"meechain/internal/blockchain"
	"meechain/internal/config"
	"meechain/internal/database"
	"meechain/internal/handlers"
	"meechain/internal/jobs"
	"meechain/internal/repository"
	"meechain/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize JWT
	auth.InitJWT(cfg.App.JWTSecret)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize repository
	repo := repository.NewRepository(database.GetDB())

	// Initialize Solana client and reward contract
	solanaClient := blockchain.NewSolanaClient(
		cfg.Chain.Network,
		cfg.Chain.TokenMintAddress,
		cfg.Chain.ServerWalletPrivateKey,
	)
	rewardContract := blockchain.NewRewardContract(solanaClient, cfg.Chain.BadgeProgramID)

	// Initialize services
	earningService := services.NewEarningService(repo, cfg.App.DefaultToken)
	transferService := services.NewTransferService(repo)
	tierService := services.NewTierService(repo)
	questService := services.NewQuestService(repo, rewardContract, earningService, tierService)

	invitesPerUser, err := strconv.Atoi(cfg.App.InviteCodesPerUser)
	if err != nil {
		invitesPerUser = 5
	}
	authService := services.NewAuthService(database.GetDB(), tierService, invitesPerUser)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	earningsHandler := handlers.NewEarningsHandler(earningService, transferService)
	questHandler := handlers.NewQuestHandler(questService)
	tierHandler := handlers.NewTierHandler(tierService)

	// Start tier reconciliation job (runs every hour)
	reconciler := jobs.NewTierReconcilerJob(repo, tierService)
	reconciler.Start(1 * time.Hour)
	log.Println("Tier reconciler job started")

	// Set up Gin router
	router := gin.Default()

	// CORS middleware
	allowedOrigins := []string{
		"http://localhost:3000", // Local development
		"http://localhost:5173", // Vite dev server
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	// Add additional frontend URL from environment if provided
	if frontendURL := os.Getenv("FRONTEND_URL"); frontendURL != "" {
		allowedOrigins = append(allowedOrigins, frontendURL)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// Authentication routes (public)
	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", authHandler.WalletLogin)
		authRoutes.POST("/logout", authHandler.Logout)
	}

	// Authenticated /auth routes
	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", authHandler.GetMe)
		authProtected.GET("/invite-codes", authHandler.GetInviteCodes)
	}

	// Earnings routes
	api := router.Group("/api")
	{
		api.GET("/earnings/summary", earningsHandler.GetSummary)
		api.GET("/earnings/history", earningsHandler.GetHistory)
		api.POST("/earnings/record", earningsHandler.RecordEarning)
		api.POST("/earnings/transfer", earningsHandler.Transfer)

		// Quest routes
		api.POST("/quest/:questId/complete", questHandler.CompleteQuest)
		api.GET("/quest/:questId/status/:userAddress", questHandler.GetQuestStatus)
		api.GET("/quests/all", questHandler.GetAllQuests)

		// Tier routes
		api.GET("/user-tier/status", tierHandler.GetStatus)
		api.POST("/user-tier/update", tierHandler.UpdateTier)
	}

	// Owner-only quest management
	owner := router.Group("/api")
	owner.Use(auth.AuthMiddleware())
	owner.Use(auth.OwnerMiddleware(cfg.App.OwnerWallet))
	{
		owner.POST("/quest/create", questHandler.CreateQuest)
		owner.POST("/quest/:questId/active", questHandler.SetActive)
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		log.Printf("Health check: http://localhost:%s/health", cfg.Server.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Graceful shutdown with 5 second timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
