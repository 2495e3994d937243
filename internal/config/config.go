package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	Port string
	Env  string

	// Store selection: the first configured backend wins, in the order
	// Mongo, Postgres, SQLite. With none configured the server runs on the
	// in-memory store.
	MongoURI    string
	MongoDB     string
	DatabaseURL string
	SQLitePath  string

	// Optional redis for rate limiting
	RedisURL string

	// Presence
	PresenceTimeout time.Duration // heartbeat staleness threshold
	SweepInterval   time.Duration // eviction scan period
}

// Load reads configuration from environment variables.
// In development, it loads from .env file if present.
func Load() *Config {
	// Load .env file if it exists (for development)
	_ = godotenv.Load()

	return &Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDB:         getEnv("MONGO_DB", "openroom"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		SQLitePath:      os.Getenv("SQLITE_PATH"),
		RedisURL:        os.Getenv("REDIS_URL"),
		PresenceTimeout: getDuration("PRESENCE_TIMEOUT", 10*time.Second),
		SweepInterval:   getDuration("SWEEP_INTERVAL", 15*time.Second),
	}
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
