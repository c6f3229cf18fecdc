package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mlarcin/chess-results-stats/internal/domain"
)

// Repository is the record store: append-only game records plus the
// per-player cursor derived from them.
type Repository interface {
	InsertGames(ctx context.Context, games []domain.GameRecord) (int, error)
	GamesByUsername(ctx context.Context, username string) ([]domain.GameRecord, error)
	LastGameEndTime(ctx context.Context, username string) (time.Time, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

// InsertGames appends records, silently skipping any whose dedup key
// (player_username, date_and_end_time) is already stored. Returns the number
// actually inserted.
func (r *repository) InsertGames(ctx context.Context, games []domain.GameRecord) (int, error) {
	const query = `
		INSERT INTO games (
			event,
			site,
			game_date,
			round,
			white,
			black,
			result,
			white_elo,
			black_elo,
			player_elo,
			time_control,
			category,
			end_time_ms,
			termination,
			moves,
			player_username,
			result_for_player,
			end_of_game_by,
			accuracy,
			opening,
			eco,
			date_and_end_time
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
		ON CONFLICT (player_username, date_and_end_time) DO NOTHING`

	inserted := 0
	for i := range games {
		g := &games[i]
		res, err := r.db.ExecContext(
			ctx,
			query,
			g.Event,
			g.Site,
			g.Date,
			g.Round,
			g.White,
			g.Black,
			g.Result,
			g.WhiteElo,
			g.BlackElo,
			g.PlayerElo,
			g.TimeControl,
			string(g.Category),
			g.EndTime.Milliseconds(),
			g.Termination,
			g.Moves,
			g.PlayerUsername,
			string(g.ResultForPlayer),
			string(g.EndOfGameBy),
			g.Accuracy,
			g.Opening,
			g.Eco,
			g.DateAndEndTime,
		)
		if err != nil {
			return inserted, fmt.Errorf("insert game: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			inserted++
		}
	}
	return inserted, nil
}

func (r *repository) GamesByUsername(ctx context.Context, username string) ([]domain.GameRecord, error) {
	const query = `
		SELECT
			id,
			event,
			site,
			game_date,
			round,
			white,
			black,
			result,
			white_elo,
			black_elo,
			player_elo,
			time_control,
			category,
			end_time_ms,
			termination,
			moves,
			player_username,
			result_for_player,
			end_of_game_by,
			accuracy,
			opening,
			eco,
			date_and_end_time
		FROM games
		WHERE player_username = $1
		ORDER BY date_and_end_time`

	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	defer rows.Close()

	var games []domain.GameRecord
	for rows.Next() {
		var (
			g         domain.GameRecord
			whiteElo  sql.NullInt64
			blackElo  sql.NullInt64
			playerElo sql.NullInt64
			endTimeMS int64
			category  string
			result    string
			reason    string
			accuracy  sql.NullFloat64
		)
		if err := rows.Scan(
			&g.ID,
			&g.Event,
			&g.Site,
			&g.Date,
			&g.Round,
			&g.White,
			&g.Black,
			&g.Result,
			&whiteElo,
			&blackElo,
			&playerElo,
			&g.TimeControl,
			&category,
			&endTimeMS,
			&g.Termination,
			&g.Moves,
			&g.PlayerUsername,
			&result,
			&reason,
			&accuracy,
			&g.Opening,
			&g.Eco,
			&g.DateAndEndTime,
		); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		if whiteElo.Valid {
			n := int(whiteElo.Int64)
			g.WhiteElo = &n
		}
		if blackElo.Valid {
			n := int(blackElo.Int64)
			g.BlackElo = &n
		}
		if playerElo.Valid {
			n := int(playerElo.Int64)
			g.PlayerElo = &n
		}
		if accuracy.Valid {
			a := accuracy.Float64
			g.Accuracy = &a
		}
		g.Category = domain.Category(category)
		g.ResultForPlayer = domain.PlayerResult(result)
		g.EndOfGameBy = domain.EndReason(reason)
		g.EndTime = time.Duration(endTimeMS) * time.Millisecond
		games = append(games, g)
	}
	return games, rows.Err()
}

// LastGameEndTime returns the cursor for a player: the end time of the most
// recent stored game, or domain.Epoch when nothing is stored yet.
func (r *repository) LastGameEndTime(ctx context.Context, username string) (time.Time, error) {
	const query = `SELECT MAX(date_and_end_time) FROM games WHERE player_username = $1`

	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, username).Scan(&last); err != nil {
		return time.Time{}, fmt.Errorf("select cursor: %w", err)
	}
	if !last.Valid {
		return domain.Epoch, nil
	}
	return last.Time, nil
}
