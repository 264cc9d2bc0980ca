package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabasePath      string
	ServerAddr        string
	LogLevel          string
	RedisURL          string
	SessionTTLMinutes int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
}

func Load(path string) (Config, error) {
	cfg := Config{
		DatabasePath:      "traffic_stops.db",
		ServerAddr:        ":8501",
		LogLevel:          "info",
		SessionTTLMinutes: 60,
		ReadTimeoutSec:    10,
		WriteTimeoutSec:   30,
	}

	// Variables already set in the environment take precedence over the file.
	if path != "" {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	cfg.DatabasePath = getenv("DATABASE_PATH", cfg.DatabasePath)
	cfg.ServerAddr = getenv("SERVER_ADDR", cfg.ServerAddr)
	cfg.LogLevel = strings.ToLower(getenv("LOG_LEVEL", cfg.LogLevel))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		if err := parseInt(&cfg.SessionTTLMinutes, v); err != nil {
			return Config{}, fmt.Errorf("SESSION_TTL_MINUTES: %w", err)
		}
	}
	if v := os.Getenv("HTTP_READ_TIMEOUT_SECONDS"); v != "" {
		if err := parseInt(&cfg.ReadTimeoutSec, v); err != nil {
			return Config{}, fmt.Errorf("HTTP_READ_TIMEOUT_SECONDS: %w", err)
		}
	}
	if v := os.Getenv("HTTP_WRITE_TIMEOUT_SECONDS"); v != "" {
		if err := parseInt(&cfg.WriteTimeoutSec, v); err != nil {
			return Config{}, fmt.Errorf("HTTP_WRITE_TIMEOUT_SECONDS: %w", err)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseInt(target *int, value string) error {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return err
	}
	if parsed < 0 {
		return fmt.Errorf("must not be negative: %d", parsed)
	}
	*target = parsed
	return nil
}
