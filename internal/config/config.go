package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Database
	DatabaseURL string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT
	JWTSecret     string
	JWTExpiration time.Duration

	// Matchmaking
	ActivityTypes       []string
	MatchRequestTimeout time.Duration
	MatchExpiry         time.Duration
	ExpirySweepInterval time.Duration

	// Rate limit
	RateLimitCapacity int64
	RateLimitRefill   int64
}

func Load() (*Config, error) {
	// .env 파일 로드 (있는 경우)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                getEnv("PORT", "14403"),
		Env:                 getEnv("ENV", "development"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisAddr:           getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:       getEnv("REDIS_PASSWORD", ""),
		RedisDB:             parseInt(getEnv("REDIS_DB", "0"), 0),
		JWTSecret:           getEnv("JWT_SECRET", "your-secret-key"),
		JWTExpiration:       parseDuration(getEnv("JWT_EXPIRATION", "24h"), 24*time.Hour),
		ActivityTypes:       parseList(getEnv("ACTIVITY_TYPES", "soccer,basketball,footvolleyball,tabletennis,badminton,running")),
		MatchRequestTimeout: parseDuration(getEnv("MATCH_REQUEST_TIMEOUT", "5s"), 5*time.Second),
		MatchExpiry:         parseDuration(getEnv("MATCH_EXPIRY", "30m"), 30*time.Minute),
		ExpirySweepInterval: parseDuration(getEnv("EXPIRY_SWEEP_INTERVAL", "1m"), time.Minute),
		RateLimitCapacity:   int64(parseInt(getEnv("RATE_LIMIT_CAPACITY", "30"), 30)),
		RateLimitRefill:     int64(parseInt(getEnv("RATE_LIMIT_REFILL", "5"), 5)),
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDuration(s string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultValue
	}
	return d
}

func parseInt(s string, defaultValue int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}
	return n
}

func parseList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
