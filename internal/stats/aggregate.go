package stats

import (
	"strings"
	"time"

	"github.com/mlarcin/chess-results-stats/internal/domain"
)

// ComputeHourlyWinrates buckets a player's games by the hour of day they
// ended and computes wins/played per bucket. Empty buckets stay 0.
func ComputeHourlyWinrates(username string, games []domain.GameRecord) *domain.HourlyWinrates {
	agg := &domain.HourlyWinrates{PlayerUsername: username}
	var wins [24]int
	for i := range games {
		h := games[i].DateAndEndTime.Hour()
		agg.GamesPlayed[h]++
		if games[i].ResultForPlayer == domain.ResultWon {
			wins[h]++
		}
	}
	for h := 0; h < 24; h++ {
		if agg.GamesPlayed[h] > 0 {
			agg.Winrates[h] = float64(wins[h]) / float64(agg.GamesPlayed[h])
		}
	}
	return agg
}

// ComputeDailyWinrates groups games by day of week and computes the win
// percentage per day. Days without games are absent from the map.
func ComputeDailyWinrates(username string, games []domain.GameRecord) *domain.DailyWinrates {
	played := make(map[time.Weekday]int)
	wins := make(map[time.Weekday]int)
	for i := range games {
		d := games[i].DateAndEndTime.Weekday()
		played[d]++
		if games[i].ResultForPlayer == domain.ResultWon {
			wins[d]++
		}
	}
	agg := &domain.DailyWinrates{PlayerUsername: username, Winrates: make(map[time.Weekday]float64, len(played))}
	for d, n := range played {
		agg.Winrates[d] = float64(wins[d]) * 100.0 / float64(n)
	}
	return agg
}

// ComputePieceMoveAverages scans each game's normalized move text and
// averages per-piece move counts over the number of games. Move-number
// tokens are skipped; a token is classified by its first character, with
// any lowercase start counting as a pawn move. Uppercase tokens that are
// not piece letters (castling, result markers) are not counted.
func ComputePieceMoveAverages(username string, games []domain.GameRecord) *domain.PieceMoveAverages {
	var pawn, knight, bishop, rook, queen, king int
	for i := range games {
		for _, tok := range strings.Fields(games[i].Moves) {
			if isMoveNumber(tok) {
				continue
			}
			switch c := tok[0]; {
			case c == 'N':
				knight++
			case c == 'B':
				bishop++
			case c == 'R':
				rook++
			case c == 'Q':
				queen++
			case c == 'K':
				king++
			case c >= 'a' && c <= 'z':
				pawn++
			}
		}
	}
	total := float64(len(games))
	return &domain.PieceMoveAverages{
		PlayerUsername: username,
		Pawn:           float64(pawn) / total,
		Knight:         float64(knight) / total,
		Bishop:         float64(bishop) / total,
		Rook:           float64(rook) / total,
		Queen:          float64(queen) / total,
		King:           float64(king) / total,
	}
}

func isMoveNumber(tok string) bool {
	return tok[0] >= '0' && tok[0] <= '9' && strings.Contains(tok, ".")
}
