package statsdto

import "time"

// Game is the wire shape of one stored game record.
type Game struct {
	ID              int64     `json:"id"`
	Event           string    `json:"event"`
	Site            string    `json:"site"`
	Date            string    `json:"date"` // yyyy-MM-dd
	Round           string    `json:"round"`
	White           string    `json:"white"`
	Black           string    `json:"black"`
	Result          string    `json:"result"`
	WhiteElo        *int      `json:"white_elo,omitempty"`
	BlackElo        *int      `json:"black_elo,omitempty"`
	PlayerElo       *int      `json:"player_elo,omitempty"`
	TimeControl     string    `json:"time_control"`
	Category        string    `json:"category"`
	EndTime         string    `json:"end_time"` // HH:mm:ss
	Termination     string    `json:"termination"`
	Moves           string    `json:"moves"`
	PlayerUsername  string    `json:"player_username"`
	ResultForPlayer string    `json:"result_for_player"`
	EndOfGameBy     string    `json:"end_of_game_by"`
	Accuracy        *float64  `json:"accuracy,omitempty"`
	Opening         string    `json:"opening"`
	Eco             string    `json:"eco"`
	DateAndEndTime  time.Time `json:"date_and_end_time"`
}

// SyncReport summarizes one ingestion run.
type SyncReport struct {
	Username      string    `json:"username"`
	Cursor        time.Time `json:"cursor"`
	MonthsPlanned int       `json:"months_planned"`
	MonthsFetched int       `json:"months_fetched"`
	MonthsFailed  int       `json:"months_failed"`
	GamesParsed   int       `json:"games_parsed"`
	NewGames      int       `json:"new_games"`
}
