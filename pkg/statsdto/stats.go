package statsdto

type HourlyWinrates struct {
	Username    string    `json:"username"`
	Winrates    []float64 `json:"winrates"`     // 24 entries, index = hour of day
	GamesPlayed []int     `json:"games_played"` // 24 entries
}

// DailyWinrates maps weekday names to win percentages (0-100) for days
// with at least one game.
type DailyWinrates struct {
	Username string             `json:"username"`
	Winrates map[string]float64 `json:"winrates"`
}

type PieceMoveAverages struct {
	Username string  `json:"username"`
	Pawn     float64 `json:"pawn"`
	Knight   float64 `json:"knight"`
	Bishop   float64 `json:"bishop"`
	Rook     float64 `json:"rook"`
	Queen    float64 `json:"queen"`
	King     float64 `json:"king"`
}

type Error struct {
	Error string `json:"error"`
}
