package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig
	Store    StoreConfig
	OpenAI   OpenAIConfig
	Security SecurityConfig
	Cache    CacheConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port           int
	Host           string
	GinMode        string
	AllowedOrigins string
}

// StoreConfig selects and configures the persistence adapter
type StoreConfig struct {
	Driver             string // memory, sqlite, postgres, mongo
	SQLitePath         string
	PostgresDSN        string
	MaxConnections     int
	MaxIdleConnections int
	MongoURI           string
	MongoDatabase      string
}

// OpenAIConfig holds the response-generator API configuration
type OpenAIConfig struct {
	APIKey          string
	APIBase         string
	ChatModel       string
	ChatTemperature float64
	ChatTopP        float64
	ChatMaxTokens   int
	Timeout         int
	Enabled         bool
}

// SecurityConfig holds API authentication and rate-limit configuration
type SecurityConfig struct {
	APIKey             string // when set, clients must present exactly this key
	MinTokenLength     int
	RateLimitPerWindow int
	RateWindowSeconds  int
}

// CacheConfig holds response-cache configuration
type CacheConfig struct {
	TTLSeconds int
	Enabled    bool
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:        getEnv("GIN_MODE", "release"),
			AllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
		},
		Store: StoreConfig{
			Driver:             getEnv("STORE_DRIVER", "sqlite"),
			SQLitePath:         getEnv("SQLITE_PATH", "leasebot.db"),
			PostgresDSN:        getEnv("DATABASE_URL", getEnv("PG_DSN", "")),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 25),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 5),
			MongoURI:           getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			MongoDatabase:      getEnv("MONGO_DB_NAME", "leasebot"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          getEnv("OPENAI_API_KEY", ""),
			APIBase:         getEnv("OPENAI_API_BASE", "https://api.openai.com/v1"),
			ChatModel:       getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),
			ChatTemperature: getEnvAsFloat("OPENAI_CHAT_TEMPERATURE", 0.7),
			ChatTopP:        getEnvAsFloat("OPENAI_CHAT_TOP_P", 1.0),
			ChatMaxTokens:   getEnvAsInt("OPENAI_CHAT_MAX_TOKENS", 1024),
			Timeout:         getEnvAsInt("OPENAI_TIMEOUT", 30),
			Enabled:         getEnv("OPENAI_API_KEY", "") != "",
		},
		Security: SecurityConfig{
			APIKey:             getEnv("API_KEY", ""),
			MinTokenLength:     getEnvAsInt("MIN_TOKEN_LENGTH", 32),
			RateLimitPerWindow: getEnvAsInt("RATE_LIMIT_MAX_REQUESTS", 100),
			RateWindowSeconds:  getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 3600),
		},
		Cache: CacheConfig{
			TTLSeconds: getEnvAsInt("RESPONSE_CACHE_TTL_SECONDS", 3600),
			Enabled:    getEnv("RESPONSE_CACHE_ENABLED", "true") == "true",
		},
	}

	return cfg, nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default %f", key, defaultValue)
		return defaultValue
	}
	return value
}
