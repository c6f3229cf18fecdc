package httpapi

import (
	"database/sql"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/mlarcin/chess-results-stats/internal/ingest"
	"github.com/mlarcin/chess-results-stats/internal/lock"
	"github.com/mlarcin/chess-results-stats/internal/stats"
)

// Server exposes the ingestion and statistics services over HTTP.
type Server struct {
	db     *sql.DB // nil when running on the in-memory store
	ingest *ingest.Service
	stats  *stats.Service
	locks  *lock.PerUser // nil without redis
	logger *zap.Logger
}

func NewServer(db *sql.DB, ingestSvc *ingest.Service, statsSvc *stats.Service, locks *lock.PerUser, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{db: db, ingest: ingestSvc, stats: statsSvc, locks: locks, logger: logger}
}

func (s *Server) Router() *router.Router {
	r := router.New()

	r.GET("/healthz", s.handleHealthz)

	r.GET("/api/games", s.handleGames)
	r.POST("/api/games/{username}/sync", s.handleSync)

	r.GET("/api/stats/winrates/hourly", s.handleHourlyWinrates)
	r.GET("/api/stats/winrates/daily", s.handleDailyWinrates)
	r.GET("/api/stats/moves/average", s.handlePieceAverages)

	return r
}

func (s *Server) handleHealthz(ctx *fasthttp.RequestCtx) {
	if s.db != nil {
		var one int
		if err := s.db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
			s.logger.Error("health check failed", zap.Error(err))
			writeError(ctx, fasthttp.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString("ok")
}
