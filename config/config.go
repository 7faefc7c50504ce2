package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken string

	// Database configuration
	DatabaseURL string

	// Redis configuration (optional, leaderboard and cooldown cache)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Logging pipeline
	GlobalLogChannelID int64 // fallback channel for guilds without a log channel

	// Scrim storage
	ScrimDataPath string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from the environment, seeded from .env when present
func load() (*Config, error) {
	// Missing .env is fine, real environments set variables directly
	_ = godotenv.Load()

	config := &Config{
		DiscordToken:  os.Getenv("DISCORD_TOKEN"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		ScrimDataPath: os.Getenv("SCRIM_DATA_PATH"),
		Environment:   os.Getenv("ENVIRONMENT"),
	}

	if db := os.Getenv("REDIS_DB"); db != "" {
		if parsed, err := strconv.Atoi(db); err == nil {
			config.RedisDB = parsed
		}
	}

	if channel := os.Getenv("GLOBAL_LOG_CHANNEL_ID"); channel != "" {
		if parsed, err := strconv.ParseInt(channel, 10, 64); err == nil {
			config.GlobalLogChannelID = parsed
		}
	}

	if config.ScrimDataPath == "" {
		config.ScrimDataPath = "data/scrims"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}
