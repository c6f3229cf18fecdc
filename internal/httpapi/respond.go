package httpapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/mlarcin/chess-results-stats/internal/domain"
	"github.com/mlarcin/chess-results-stats/internal/ingest"
	"github.com/mlarcin/chess-results-stats/pkg/statsdto"
)

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json; charset=utf-8")
	body, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"error":"encode response"}`)
		return
	}
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, msg string) {
	writeJSON(ctx, status, statsdto.Error{Error: msg})
}

func toGameList(games []domain.GameRecord) []statsdto.Game {
	out := make([]statsdto.Game, 0, len(games))
	for i := range games {
		out = append(out, toGame(&games[i]))
	}
	return out
}

func toGame(g *domain.GameRecord) statsdto.Game {
	return statsdto.Game{
		ID:              g.ID,
		Event:           g.Event,
		Site:            g.Site,
		Date:            g.Date.Format("2006-01-02"),
		Round:           g.Round,
		White:           g.White,
		Black:           g.Black,
		Result:          g.Result,
		WhiteElo:        g.WhiteElo,
		BlackElo:        g.BlackElo,
		PlayerElo:       g.PlayerElo,
		TimeControl:     g.TimeControl,
		Category:        string(g.Category),
		EndTime:         formatEndTime(g.EndTime),
		Termination:     g.Termination,
		Moves:           g.Moves,
		PlayerUsername:  g.PlayerUsername,
		ResultForPlayer: string(g.ResultForPlayer),
		EndOfGameBy:     string(g.EndOfGameBy),
		Accuracy:        g.Accuracy,
		Opening:         g.Opening,
		Eco:             g.Eco,
		DateAndEndTime:  g.DateAndEndTime,
	}
}

func toSyncReport(username string, res *ingest.SyncResult) statsdto.SyncReport {
	return statsdto.SyncReport{
		Username:      username,
		Cursor:        res.Cursor,
		MonthsPlanned: res.MonthsPlanned,
		MonthsFetched: res.MonthsFetched,
		MonthsFailed:  res.MonthsFailed,
		GamesParsed:   res.GamesParsed,
		NewGames:      res.NewGames,
	}
}

func toHourlyWinrates(agg *domain.HourlyWinrates) statsdto.HourlyWinrates {
	out := statsdto.HourlyWinrates{
		Username:    agg.PlayerUsername,
		Winrates:    make([]float64, 24),
		GamesPlayed: make([]int, 24),
	}
	copy(out.Winrates, agg.Winrates[:])
	copy(out.GamesPlayed, agg.GamesPlayed[:])
	return out
}

func toDailyWinrates(agg *domain.DailyWinrates) statsdto.DailyWinrates {
	out := statsdto.DailyWinrates{
		Username: agg.PlayerUsername,
		Winrates: make(map[string]float64, len(agg.Winrates)),
	}
	for day, rate := range agg.Winrates {
		out.Winrates[day.String()] = rate
	}
	return out
}

func toPieceMoveAverages(agg *domain.PieceMoveAverages) statsdto.PieceMoveAverages {
	return statsdto.PieceMoveAverages{
		Username: agg.PlayerUsername,
		Pawn:     agg.Pawn,
		Knight:   agg.Knight,
		Bishop:   agg.Bishop,
		Rook:     agg.Rook,
		Queen:    agg.Queen,
		King:     agg.King,
	}
}

func formatEndTime(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
