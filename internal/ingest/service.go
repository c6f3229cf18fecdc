package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mlarcin/chess-results-stats/internal/chesscom"
	"github.com/mlarcin/chess-results-stats/internal/domain"
)

// Fetcher retrieves one monthly archive page. The concrete implementation
// is the chess.com client; tests substitute a fake.
type Fetcher interface {
	MonthlyArchive(ctx context.Context, username string, year int, month time.Month) (*chesscom.MonthlyArchive, error)
}

type Config struct {
	// MaxFetchMonths caps the fetch window regardless of cursor staleness.
	MaxFetchMonths int
	// FetchConcurrency bounds how many month pages are requested in parallel.
	FetchConcurrency int
}

// Service is the ingestion pipeline: cursor -> fetch window -> pages ->
// parsed records -> dedup merge into the record store.
type Service struct {
	fetcher Fetcher
	repo    Repository
	parser  *Parser
	cfg     Config
	logger  *zap.Logger
	now     func() time.Time
}

func NewService(fetcher Fetcher, repo Repository, parser *Parser, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxFetchMonths <= 0 {
		cfg.MaxFetchMonths = 3
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = 3
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher: fetcher,
		repo:    repo,
		parser:  parser,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

type SyncResult struct {
	Cursor        time.Time
	MonthsPlanned int
	MonthsFetched int
	MonthsFailed  int
	GamesParsed   int
	NewGames      int
}

// Sync ingests every game of the player that ended after the stored cursor.
// A failed month fetch is logged and skipped; the remaining months still
// land. Re-running with no new games upstream is a no-op.
func (s *Service) Sync(ctx context.Context, username string) (*SyncResult, error) {
	log := s.logger.With(
		zap.String("run_id", uuid.NewString()),
		zap.String("username", username),
	)

	cursor, err := s.repo.LastGameEndTime(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load cursor: %w", err)
	}

	window := PlanFetchWindow(cursor, s.cfg.MaxFetchMonths, s.now())
	res := &SyncResult{Cursor: cursor, MonthsPlanned: len(window)}

	pages := make([]*chesscom.MonthlyArchive, len(window))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.FetchConcurrency)
	for i, m := range window {
		i, m := i, m
		g.Go(func() error {
			archive, err := s.fetcher.MonthlyArchive(gctx, username, m.Year, m.Month)
			if err != nil {
				// Partial success: one bad month must not sink the others.
				log.Warn("archive fetch failed, skipping month",
					zap.Int("year", m.Year),
					zap.Int("month", int(m.Month)),
					zap.Error(err))
				return nil
			}
			pages[i] = archive
			return nil
		})
	}
	_ = g.Wait()

	var candidates []domain.GameRecord
	for _, page := range pages {
		if page == nil {
			res.MonthsFailed++
			continue
		}
		res.MonthsFetched++
		candidates = append(candidates, s.parser.ParseArchive(page, username, cursor)...)
	}
	res.GamesParsed = len(candidates)

	if len(candidates) > 0 {
		inserted, err := s.repo.InsertGames(ctx, candidates)
		res.NewGames = inserted
		if err != nil {
			// The batch is lost but the caller keeps whatever did land.
			log.Error("store games failed", zap.Int("inserted", inserted), zap.Error(err))
		}
	}

	log.Info("sync finished",
		zap.Time("cursor", cursor),
		zap.Int("months_planned", res.MonthsPlanned),
		zap.Int("months_fetched", res.MonthsFetched),
		zap.Int("months_failed", res.MonthsFailed),
		zap.Int("games_parsed", res.GamesParsed),
		zap.Int("new_games", res.NewGames))
	return res, nil
}

// Games returns every stored record for the player, oldest first.
func (s *Service) Games(ctx context.Context, username string) ([]domain.GameRecord, error) {
	return s.repo.GamesByUsername(ctx, username)
}
