package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leasebot/internal/config"
	"leasebot/internal/handler"
	"leasebot/internal/repository"
	"leasebot/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Print version info
	log.Printf("Leasing Intake Bot")
	log.Printf("Version: %s", Version)
	log.Printf("Build Time: %s", BuildTime)
	log.Printf("Git Commit: %s", GitCommit)
	log.Println("")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	// Initialize persistence
	repo, err := repository.Open(context.Background(), &cfg.Store)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer repo.Close()

	log.Printf("✅ Connected to %s store", cfg.Store.Driver)

	// Initialize LLM client
	llmClient := service.NewOpenAIClient(&cfg.OpenAI)
	if cfg.OpenAI.Enabled {
		log.Printf("✅ LLM client initialized")
		log.Printf("   - API Base: %s", cfg.OpenAI.APIBase)
		log.Printf("   - Chat model: %s", cfg.OpenAI.ChatModel)
		log.Printf("   - Chat Temperature: %.2f", cfg.OpenAI.ChatTemperature)
		log.Printf("   - Chat MaxTokens: %d", cfg.OpenAI.ChatMaxTokens)
	} else {
		log.Println("⚠️  LLM is disabled - replies will fall back to the apology message")
		log.Println("   Set OPENAI_API_KEY environment variable to enable the assistant")
	}

	// Initialize services
	var responseCache *service.ResponseCache
	if cfg.Cache.Enabled {
		responseCache = service.NewResponseCache(time.Duration(cfg.Cache.TTLSeconds) * time.Second)
	}
	chatService := service.NewChatService(llmClient, repo, responseCache)

	log.Println("✅ Services initialized")

	// Initialize handlers
	chatHandler := handler.NewChatHandler(chatService)
	rateLimiter := handler.NewRateLimiter(cfg.Security.RateLimitPerWindow, cfg.Security.RateWindowSeconds)

	// Setup Gin router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "X-API-Key"}
	router.Use(cors.New(corsConfig))
	router.Use(handler.SecurityHeaders())

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"service":   "leasing-intake-bot",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   Version,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	// API routes (authenticated + rate limited)
	api := router.Group("/")
	api.Use(handler.APIKeyAuth(&cfg.Security))
	api.Use(rateLimiter.Middleware())
	{
		api.POST("/chat", chatHandler.Chat)
		api.POST("/reset", chatHandler.Reset)
	}

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.Printf("🚀 Starting server on %s", addr)

	go func() {
		if err := router.Run(addr); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")
	log.Println("✅ Server stopped")
}
