package stats

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mlarcin/chess-results-stats/internal/domain"
)

// ErrNoGames signals that a player has no stored games to aggregate. It is
// a condition, not a failure: callers can tell "no data yet" apart from a
// broken store.
var ErrNoGames = errors.New("no games stored for player")

// GamesSource is the read side of the record store.
type GamesSource interface {
	GamesByUsername(ctx context.Context, username string) ([]domain.GameRecord, error)
}

// Service recomputes the derived statistics wholesale on each request and
// upserts them into the aggregate store. An optional redis cache fronts
// the recomputation.
type Service struct {
	games  GamesSource
	repo   Repository
	cache  *Cache
	logger *zap.Logger
}

func NewService(games GamesSource, repo Repository, cache *Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{games: games, repo: repo, cache: cache, logger: logger}
}

func (s *Service) HourlyWinrates(ctx context.Context, username string) (*domain.HourlyWinrates, error) {
	if s.cache != nil {
		var cached domain.HourlyWinrates
		if hit, err := s.cache.get(ctx, s.cache.keyHourly(username), &cached); err != nil {
			s.logger.Warn("stats cache read failed", zap.String("username", username), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	games, err := s.games.GamesByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	if len(games) == 0 {
		return nil, ErrNoGames
	}

	agg := ComputeHourlyWinrates(username, games)
	if err := s.repo.UpsertHourlyWinrates(ctx, agg); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.set(ctx, s.cache.keyHourly(username), agg); err != nil {
			s.logger.Warn("stats cache write failed", zap.String("username", username), zap.Error(err))
		}
	}
	return agg, nil
}

func (s *Service) DailyWinrates(ctx context.Context, username string) (*domain.DailyWinrates, error) {
	if s.cache != nil {
		var cached domain.DailyWinrates
		if hit, err := s.cache.get(ctx, s.cache.keyDaily(username), &cached); err != nil {
			s.logger.Warn("stats cache read failed", zap.String("username", username), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	games, err := s.games.GamesByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	if len(games) == 0 {
		return nil, ErrNoGames
	}

	agg := ComputeDailyWinrates(username, games)
	if s.cache != nil {
		if err := s.cache.set(ctx, s.cache.keyDaily(username), agg); err != nil {
			s.logger.Warn("stats cache write failed", zap.String("username", username), zap.Error(err))
		}
	}
	return agg, nil
}

func (s *Service) PieceMoveAverages(ctx context.Context, username string) (*domain.PieceMoveAverages, error) {
	if s.cache != nil {
		var cached domain.PieceMoveAverages
		if hit, err := s.cache.get(ctx, s.cache.keyPieces(username), &cached); err != nil {
			s.logger.Warn("stats cache read failed", zap.String("username", username), zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	games, err := s.games.GamesByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load games: %w", err)
	}
	if len(games) == 0 {
		return nil, ErrNoGames
	}

	agg := ComputePieceMoveAverages(username, games)
	if err := s.repo.UpsertPieceAverages(ctx, agg); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.set(ctx, s.cache.keyPieces(username), agg); err != nil {
			s.logger.Warn("stats cache write failed", zap.String("username", username), zap.Error(err))
		}
	}
	return agg, nil
}

// InvalidateCache drops cached aggregates for the player. No-op without a
// cache.
func (s *Service) InvalidateCache(ctx context.Context, username string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, username); err != nil {
		s.logger.Warn("stats cache invalidate failed", zap.String("username", username), zap.Error(err))
	}
}
