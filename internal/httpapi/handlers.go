package httpapi

import (
	"errors"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/mlarcin/chess-results-stats/internal/stats"
)

// handleGames runs the full flow of the original endpoint: sync the player
// against chess.com, then return everything stored for them.
func (s *Server) handleGames(ctx *fasthttp.RequestCtx) {
	username := usernameFromQuery(ctx)
	if username == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "username is required")
		return
	}

	release, ok := s.acquireLock(ctx, username)
	if !ok {
		return
	}
	defer release()

	res, err := s.ingest.Sync(ctx, username)
	if err != nil {
		s.logger.Error("sync failed", zap.String("username", username), zap.Error(err))
		writeError(ctx, fasthttp.StatusInternalServerError, "sync failed")
		return
	}
	if res.NewGames > 0 {
		s.stats.InvalidateCache(ctx, username)
	}

	games, err := s.ingest.Games(ctx, username)
	if err != nil {
		s.logger.Error("load games failed", zap.String("username", username), zap.Error(err))
		writeError(ctx, fasthttp.StatusInternalServerError, "load games failed")
		return
	}
	if len(games) == 0 {
		writeError(ctx, fasthttp.StatusNotFound, "no games stored for player")
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, toGameList(games))
}

// handleSync ingests without returning the record set, for callers that
// only want the counters.
func (s *Server) handleSync(ctx *fasthttp.RequestCtx) {
	username, _ := ctx.UserValue("username").(string)
	username = strings.TrimSpace(username)
	if username == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "username is required")
		return
	}

	release, ok := s.acquireLock(ctx, username)
	if !ok {
		return
	}
	defer release()

	res, err := s.ingest.Sync(ctx, username)
	if err != nil {
		s.logger.Error("sync failed", zap.String("username", username), zap.Error(err))
		writeError(ctx, fasthttp.StatusInternalServerError, "sync failed")
		return
	}
	if res.NewGames > 0 {
		s.stats.InvalidateCache(ctx, username)
	}
	writeJSON(ctx, fasthttp.StatusOK, toSyncReport(username, res))
}

func (s *Server) handleHourlyWinrates(ctx *fasthttp.RequestCtx) {
	username := usernameFromQuery(ctx)
	if username == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "username is required")
		return
	}
	agg, err := s.stats.HourlyWinrates(ctx, username)
	if err != nil {
		s.statsError(ctx, username, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, toHourlyWinrates(agg))
}

func (s *Server) handleDailyWinrates(ctx *fasthttp.RequestCtx) {
	username := usernameFromQuery(ctx)
	if username == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "username is required")
		return
	}
	agg, err := s.stats.DailyWinrates(ctx, username)
	if err != nil {
		s.statsError(ctx, username, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, toDailyWinrates(agg))
}

func (s *Server) handlePieceAverages(ctx *fasthttp.RequestCtx) {
	username := usernameFromQuery(ctx)
	if username == "" {
		writeError(ctx, fasthttp.StatusBadRequest, "username is required")
		return
	}
	agg, err := s.stats.PieceMoveAverages(ctx, username)
	if err != nil {
		s.statsError(ctx, username, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, toPieceMoveAverages(agg))
}

func (s *Server) statsError(ctx *fasthttp.RequestCtx, username string, err error) {
	if errors.Is(err, stats.ErrNoGames) {
		writeError(ctx, fasthttp.StatusNotFound, "no games stored for player")
		return
	}
	s.logger.Error("aggregation failed", zap.String("username", username), zap.Error(err))
	writeError(ctx, fasthttp.StatusInternalServerError, "aggregation failed")
}

// acquireLock serializes same-player syncs when redis is configured. It
// writes the HTTP response itself when the lock is busy or broken.
func (s *Server) acquireLock(ctx *fasthttp.RequestCtx, username string) (func(), bool) {
	if s.locks == nil {
		return func() {}, true
	}
	release, ok, err := s.locks.Acquire(ctx, username)
	if err != nil {
		s.logger.Error("sync lock failed", zap.String("username", username), zap.Error(err))
		writeError(ctx, fasthttp.StatusServiceUnavailable, "sync lock unavailable")
		return nil, false
	}
	if !ok {
		writeError(ctx, fasthttp.StatusConflict, "sync already in progress for player")
		return nil, false
	}
	return release, true
}

func usernameFromQuery(ctx *fasthttp.RequestCtx) string {
	return strings.TrimSpace(string(ctx.QueryArgs().Peek("username")))
}
