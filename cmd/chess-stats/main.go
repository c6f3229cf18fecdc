package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	appcfg "github.com/mlarcin/chess-results-stats/internal/config"
	"github.com/mlarcin/chess-results-stats/internal/chesscom"
	"github.com/mlarcin/chess-results-stats/internal/httpapi"
	"github.com/mlarcin/chess-results-stats/internal/ingest"
	"github.com/mlarcin/chess-results-stats/internal/lock"
	"github.com/mlarcin/chess-results-stats/internal/obslog"
	"github.com/mlarcin/chess-results-stats/internal/stats"
	"github.com/mlarcin/chess-results-stats/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	var (
		db        *sql.DB
		gamesRepo ingest.Repository
		aggRepo   stats.Repository
	)
	if cfg.DatabaseURL != "" {
		db, err = storage.Open(cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("database connect failed", zap.Error(err))
		}
		defer db.Close()
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := storage.Migrate(ctx, db); err != nil {
			cancel()
			logger.Fatal("database migrate failed", zap.Error(err))
		}
		cancel()
		gamesRepo = ingest.NewRepository(db)
		aggRepo = stats.NewRepository(db)
	} else {
		logger.Warn("DATABASE_URL not set, using in-memory store")
		gamesRepo = ingest.NewMemoryRepository()
		aggRepo = stats.NewMemoryRepository()
	}

	var (
		cache *stats.Cache
		locks *lock.PerUser
	)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis url invalid", zap.Error(err))
		}
		rdb := redis.NewClient(opt)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := rdb.Ping(ctx).Err(); err != nil {
			cancel()
			logger.Fatal("redis connect failed", zap.Error(err))
		}
		cancel()
		defer rdb.Close()
		cache = stats.NewCache(rdb, cfg.StatsCacheTTL)
		locks = lock.NewPerUser(rdb, cfg.SyncLockTTL)
	} else {
		logger.Warn("REDIS_URL not set, sync lock and stats cache disabled")
	}

	categories, err := ingest.NewCategoryTable(os.Getenv("TIMECONTROL_TABLE"))
	if err != nil {
		logger.Fatal("time control table load failed", zap.Error(err))
	}

	client := chesscom.NewClient(cfg.ChessComBaseURL,
		chesscom.WithUserAgent(cfg.ChessComUserAgent),
		chesscom.WithTimeout(cfg.FetchTimeout),
	)
	parser := ingest.NewParser(categories, logger)
	ingestSvc := ingest.NewService(client, gamesRepo, parser, ingest.Config{
		MaxFetchMonths:   cfg.MaxFetchMonths,
		FetchConcurrency: cfg.FetchConcurrency,
	}, logger)
	statsSvc := stats.NewService(gamesRepo, aggRepo, cache, logger)

	server := httpapi.NewServer(db, ingestSvc, statsSvc, locks, logger)
	srv := &fasthttp.Server{
		Handler:      server.Router().Handler,
		Name:         "chess-results-stats",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr))
		errCh <- srv.ListenAndServe(cfg.ListenAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		if err := srv.Shutdown(); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server error", zap.Error(err))
		}
	}
}
