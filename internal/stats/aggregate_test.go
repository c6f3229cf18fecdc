package stats

import (
	"math"
	"testing"
	"time"

	"github.com/mlarcin/chess-results-stats/internal/domain"
)

func gameAt(end time.Time, result domain.PlayerResult) domain.GameRecord {
	return domain.GameRecord{
		PlayerUsername:  "player",
		ResultForPlayer: result,
		DateAndEndTime:  end,
	}
}

func TestComputeHourlyWinrates(t *testing.T) {
	nine := time.Date(2024, time.November, 16, 9, 0, 0, 0, time.UTC)
	games := []domain.GameRecord{
		gameAt(nine, domain.ResultWon),
		gameAt(nine.Add(30*time.Minute), domain.ResultLost),
		gameAt(nine.Add(45*time.Minute), domain.ResultWon),
		gameAt(nine.Add(13*time.Hour), domain.ResultDrawn),
	}

	agg := ComputeHourlyWinrates("player", games)
	if agg.GamesPlayed[9] != 3 || agg.GamesPlayed[22] != 1 {
		t.Errorf("games played 9h/22h = %d/%d, want 3/1", agg.GamesPlayed[9], agg.GamesPlayed[22])
	}
	if math.Abs(agg.Winrates[9]-2.0/3.0) > 1e-9 {
		t.Errorf("winrate 9h = %f, want 2/3", agg.Winrates[9])
	}
	if agg.Winrates[22] != 0 {
		t.Errorf("winrate 22h = %f, want 0 (draw is not a win)", agg.Winrates[22])
	}

	totalPlayed := 0
	for h := 0; h < 24; h++ {
		totalPlayed += agg.GamesPlayed[h]
		if agg.GamesPlayed[h] == 0 && agg.Winrates[h] != 0 {
			t.Errorf("empty bucket %d has winrate %f", h, agg.Winrates[h])
		}
	}
	if totalPlayed != len(games) {
		t.Errorf("bucket sum = %d, want %d", totalPlayed, len(games))
	}
}

func TestComputeDailyWinrates(t *testing.T) {
	saturday := time.Date(2024, time.November, 16, 10, 0, 0, 0, time.UTC)
	sunday := saturday.AddDate(0, 0, 1)
	games := []domain.GameRecord{
		gameAt(saturday, domain.ResultWon),
		gameAt(saturday.Add(time.Hour), domain.ResultLost),
		gameAt(sunday, domain.ResultWon),
	}

	agg := ComputeDailyWinrates("player", games)
	if len(agg.Winrates) != 2 {
		t.Fatalf("days with games = %d, want 2", len(agg.Winrates))
	}
	if agg.Winrates[time.Saturday] != 50.0 {
		t.Errorf("Saturday = %f, want 50", agg.Winrates[time.Saturday])
	}
	if agg.Winrates[time.Sunday] != 100.0 {
		t.Errorf("Sunday = %f, want 100", agg.Winrates[time.Sunday])
	}
	if _, ok := agg.Winrates[time.Monday]; ok {
		t.Error("Monday has an entry despite no games")
	}
}

func TestComputePieceMoveAverages(t *testing.T) {
	games := []domain.GameRecord{
		{Moves: "1. e4 e5 2. Nf3 Nc6 3. Bb5 a6 1-0 "},
		{Moves: "1. d4 Nf6 2. O-O Rg8 0-1 "},
	}

	agg := ComputePieceMoveAverages("player", games)
	if agg.Pawn != 2.0 { // (e4 e5 a6) + (d4) over 2 games
		t.Errorf("Pawn = %f, want 2", agg.Pawn)
	}
	if agg.Knight != 1.5 {
		t.Errorf("Knight = %f, want 1.5", agg.Knight)
	}
	if agg.Bishop != 0.5 {
		t.Errorf("Bishop = %f, want 0.5", agg.Bishop)
	}
	if agg.Rook != 0.5 {
		t.Errorf("Rook = %f, want 0.5", agg.Rook)
	}
	if agg.Queen != 0 || agg.King != 0 {
		t.Errorf("Queen/King = %f/%f, want 0/0 (castling and results uncounted)", agg.Queen, agg.King)
	}
}
