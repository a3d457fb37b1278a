package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	// APIBaseURL is the remote store's API root.
	APIBaseURL string

	// RefreshSpec is a cron spec for the background re-fetch.
	RefreshSpec   string
	UpcomingLimit int

	CORSOrigins []string

	// Redis snapshot backend; empty addr disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// OTLP trace collector endpoint.
	OTLPEndpoint string
}

func Load() Config {
	// .env is a dev convenience; absence is fine
	_ = godotenv.Load()

	return Config{
		Env:           getEnv("APP_ENV", "dev"),
		Port:          getEnvInt("PORT", 8080),
		APIBaseURL:    getEnv("API_BASE_URL", "http://localhost:5000/api"),
		RefreshSpec:   getEnv("REFRESH_SPEC", "@every 5m"),
		UpcomingLimit: getEnvInt("UPCOMING_LIMIT", 5),
		CORSOrigins:   splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		RedisAddr:     getEnv("SNAPSHOT_REDIS_ADDR", ""),
		RedisPassword: getEnv("SNAPSHOT_REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("SNAPSHOT_REDIS_DB", 0),
		OTLPEndpoint:  getEnv("OTEL_EXPORTER_ENDPOINT", ""),
	}
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
		}

		return num
	}
	return fallback
}
