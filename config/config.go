package config

import (
	"github.com/joho/godotenv"
	"log"
	"os"
	"strconv"
)

type ApiConfig struct {
	BaseURL string
}

type Config struct {
	DSN           string
	LogsDirectory string
	OtpLength     int
	SyncSchedule  string
	Api           *ApiConfig
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	return &Config{
		DSN:           os.Getenv("DATABASE_DSN"),
		LogsDirectory: os.Getenv("LOGS_DIRECTORY"),
		OtpLength:     intEnv("OTP_LENGTH", 4),
		SyncSchedule:  stringEnv("SYNC_SCHEDULE", "*/15 * * * *"),
		Api: &ApiConfig{
			BaseURL: os.Getenv("API_BASE_URL"),
		},
	}
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Printf("Invalid %s value %q, using %d", key, v, fallback)
		return fallback
	}
	return n
}
