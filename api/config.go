package api

import (
	"os"
	"time"
)

// Config holds API configuration loaded from environment variables.
type Config struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	AllowOrigins []string
}

func LoadConfig() Config {
	return Config{
		ReadTimeout:  parseDuration(getEnv("API_READ_TIMEOUT", "15s"), 15*time.Second),
		WriteTimeout: parseDuration(getEnv("API_WRITE_TIMEOUT", "15s"), 15*time.Second),
		AllowOrigins: []string{getEnv("API_ALLOW_ORIGIN", "*")},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
