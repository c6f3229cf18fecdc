package domain

import "time"

// Epoch is the cursor sentinel used when a player has no stored games yet.
var Epoch = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)

type Category string

const (
	CategoryBullet  Category = "bullet"
	CategoryBlitz   Category = "blitz"
	CategoryRapid   Category = "rapid"
	CategoryUnknown Category = ""
)

type PlayerResult string

const (
	ResultWon   PlayerResult = "won"
	ResultLost  PlayerResult = "lost"
	ResultDrawn PlayerResult = "drawn"
)

// EndReason is the derived "end of game by" category. The values mirror the
// termination vocabulary used by the chess.com archive (French and English).
type EndReason string

const (
	EndByTime       EndReason = "time"
	EndByCheckmate  EndReason = "checkmate"
	EndByAbandon    EndReason = "abandonment"
	EndByAgreement  EndReason = "agreement"
	EndByMaterial   EndReason = "lack of equipment"
	EndByStalemate  EndReason = "pat"
	EndByRepetition EndReason = "repeat"
	EndByUnknown    EndReason = ""
)

// GameRecord is one finished game of one tracked player, parsed from a
// monthly archive page. Records are immutable once stored; the dedup key
// is (PlayerUsername, DateAndEndTime).
type GameRecord struct {
	ID              int64
	Event           string
	Site            string
	Date            time.Time // calendar date, midnight UTC
	Round           string
	White           string
	Black           string
	Result          string
	WhiteElo        *int
	BlackElo        *int
	PlayerElo       *int
	TimeControl     string
	Category        Category
	EndTime         time.Duration // time of day
	Termination     string
	Moves           string
	PlayerUsername  string
	ResultForPlayer PlayerResult
	EndOfGameBy     EndReason
	Accuracy        *float64
	Opening         string
	Eco             string
	DateAndEndTime  time.Time
}

// HourlyWinrates is the per-player aggregate of win ratios by hour of day.
// Index h holds wins/played for games ending in hour h, 0 for empty buckets.
type HourlyWinrates struct {
	PlayerUsername string
	Winrates       [24]float64
	GamesPlayed    [24]int
}

// DailyWinrates holds win percentages (0-100) keyed by day of week, for
// days with at least one game.
type DailyWinrates struct {
	PlayerUsername string
	Winrates       map[time.Weekday]float64
}

// PieceMoveAverages is the per-player average number of moves per piece
// type across all stored games.
type PieceMoveAverages struct {
	PlayerUsername string
	Pawn           float64
	Knight         float64
	Bishop         float64
	Rook           float64
	Queen          float64
	King           float64
}
