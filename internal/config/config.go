package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment
// variables.
type Config struct {
	Port           string
	BackendBaseURL string
	BackendTimeout time.Duration
	HistoryLimit   int
}

// Load reads the .env file, if one exists, and returns a populated Config.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[CONFIG] No .env file found, falling back to system env vars")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		BackendBaseURL: getEnv("BACKEND_URL", "http://127.0.0.1:5000"),
		BackendTimeout: time.Duration(getEnvInt("BACKEND_TIMEOUT_SECONDS", 90)) * time.Second,
		HistoryLimit:   getEnvInt("HISTORY_LIMIT", 20),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}
