package stats

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/mlarcin/chess-results-stats/internal/domain"
)

// Repository is the aggregate store: one row per player per statistic,
// replaced wholesale on every recomputation.
type Repository interface {
	UpsertHourlyWinrates(ctx context.Context, agg *domain.HourlyWinrates) error
	HourlyWinrates(ctx context.Context, username string) (*domain.HourlyWinrates, error)
	UpsertPieceAverages(ctx context.Context, agg *domain.PieceMoveAverages) error
	PieceAverages(ctx context.Context, username string) (*domain.PieceMoveAverages, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) UpsertHourlyWinrates(ctx context.Context, agg *domain.HourlyWinrates) error {
	if agg == nil {
		return fmt.Errorf("nil hourly winrates payload")
	}
	const query = `
		INSERT INTO winrates_by_hour (player_username, winrates, games_played, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (player_username)
		DO UPDATE SET
			winrates = EXCLUDED.winrates,
			games_played = EXCLUDED.games_played,
			updated_at = NOW()`

	winrates := make([]float64, 24)
	copy(winrates, agg.Winrates[:])
	played := make([]int64, 24)
	for i, n := range agg.GamesPlayed {
		played[i] = int64(n)
	}

	if _, err := r.db.ExecContext(ctx, query, agg.PlayerUsername, pq.Array(winrates), pq.Array(played)); err != nil {
		return fmt.Errorf("upsert hourly winrates: %w", err)
	}
	return nil
}

func (r *repository) HourlyWinrates(ctx context.Context, username string) (*domain.HourlyWinrates, error) {
	const query = `
		SELECT winrates, games_played
		FROM winrates_by_hour
		WHERE player_username = $1`

	var (
		winrates []float64
		played   []int64
	)
	err := r.db.QueryRowContext(ctx, query, username).Scan(pq.Array(&winrates), pq.Array(&played))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select hourly winrates: %w", err)
	}

	agg := &domain.HourlyWinrates{PlayerUsername: username}
	for i := 0; i < 24 && i < len(winrates); i++ {
		agg.Winrates[i] = winrates[i]
	}
	for i := 0; i < 24 && i < len(played); i++ {
		agg.GamesPlayed[i] = int(played[i])
	}
	return agg, nil
}

func (r *repository) UpsertPieceAverages(ctx context.Context, agg *domain.PieceMoveAverages) error {
	if agg == nil {
		return fmt.Errorf("nil piece averages payload")
	}
	const query = `
		INSERT INTO average_moves_by_piece (
			player_username,
			avg_pawn,
			avg_knight,
			avg_bishop,
			avg_rook,
			avg_queen,
			avg_king,
			updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (player_username)
		DO UPDATE SET
			avg_pawn = EXCLUDED.avg_pawn,
			avg_knight = EXCLUDED.avg_knight,
			avg_bishop = EXCLUDED.avg_bishop,
			avg_rook = EXCLUDED.avg_rook,
			avg_queen = EXCLUDED.avg_queen,
			avg_king = EXCLUDED.avg_king,
			updated_at = NOW()`

	_, err := r.db.ExecContext(
		ctx,
		query,
		agg.PlayerUsername,
		agg.Pawn,
		agg.Knight,
		agg.Bishop,
		agg.Rook,
		agg.Queen,
		agg.King,
	)
	if err != nil {
		return fmt.Errorf("upsert piece averages: %w", err)
	}
	return nil
}

func (r *repository) PieceAverages(ctx context.Context, username string) (*domain.PieceMoveAverages, error) {
	const query = `
		SELECT avg_pawn, avg_knight, avg_bishop, avg_rook, avg_queen, avg_king
		FROM average_moves_by_piece
		WHERE player_username = $1`

	agg := &domain.PieceMoveAverages{PlayerUsername: username}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&agg.Pawn,
		&agg.Knight,
		&agg.Bishop,
		&agg.Rook,
		&agg.Queen,
		&agg.King,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select piece averages: %w", err)
	}
	return agg, nil
}
