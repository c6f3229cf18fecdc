package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type AppConfig struct {
	ListenAddr string

	DatabaseURL string
	RedisURL    string

	ChessComBaseURL   string
	ChessComUserAgent string

	// MaxFetchMonths bounds how many monthly archive pages a single sync
	// may request, however stale the cursor is.
	MaxFetchMonths   int
	FetchConcurrency int
	FetchTimeout     time.Duration

	StatsCacheTTL time.Duration
	SyncLockTTL   time.Duration
}

func Load() (*AppConfig, error) {
	cfg := &AppConfig{
		ListenAddr:        ":8080",
		ChessComBaseURL:   "https://api.chess.com",
		ChessComUserAgent: "Mozilla/5.0 (compatible; ChessResultsStatsApp/1.0)",
		MaxFetchMonths:    3,
		FetchConcurrency:  3,
		FetchTimeout:      10 * time.Second,
		StatsCacheTTL:     5 * time.Minute,
		SyncLockTTL:       2 * time.Minute,
	}

	if v := strings.TrimSpace(os.Getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	if v := strings.TrimSpace(os.Getenv("CHESSCOM_BASE_URL")); v != "" {
		cfg.ChessComBaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("CHESSCOM_USER_AGENT")); v != "" {
		cfg.ChessComUserAgent = v
	}
	if v := strings.TrimSpace(os.Getenv("MAX_FETCH_MONTHS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxFetchMonths = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("FETCH_CONCURRENCY")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FetchConcurrency = n
		}
	}
	if v := strings.TrimSpace(os.Getenv("FETCH_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.FetchTimeout = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("STATS_CACHE_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.StatsCacheTTL = d
		}
	}
	if v := strings.TrimSpace(os.Getenv("SYNC_LOCK_TTL")); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SyncLockTTL = d
		}
	}

	return cfg, nil
}
