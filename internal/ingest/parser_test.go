package ingest

import (
	"testing"
	"time"

	"github.com/mlarcin/chess-results-stats/internal/chesscom"
	"github.com/mlarcin/chess-results-stats/internal/domain"
)

const samplePGN = "[Event \"Live Chess\"]\n" +
	"[Site \"Chess.com\"]\n" +
	"[Date \"2024.11.16\"]\n" +
	"[Round \"-\"]\n" +
	"[White \"PokemonRwwn\"]\n" +
	"[Black \"JustMovingPieces01\"]\n" +
	"[Result \"1-0\"]\n" +
	"[WhiteElo \"972\"]\n" +
	"[BlackElo \"962\"]\n" +
	"[TimeControl \"180+2\"]\n" +
	"[EndTime \"09:41:17\"]\n" +
	"[Termination \"PokemonRwwn won by resignation\"]\n" +
	"[ECO \"B12\"]\n" +
	"[ECOUrl \"https://www.chess.com/openings/Caro-Kann-Defense-Fantasy-Variation\"]\n" +
	"\n" +
	"1. e4 {[%clk 0:03:01]} 1... c6 {[%clk 0:03:01]} 1-0\n"

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return NewParser(newTestCategoryTable(t), nil)
}

func sampleArchive() *chesscom.MonthlyArchive {
	return &chesscom.MonthlyArchive{
		Games: []chesscom.ArchivedGame{{
			PGN:        samplePGN,
			Accuracies: &chesscom.Accuracies{White: 0, Black: 0},
			White:      chesscom.Player{Username: "PokemonRwwn"},
			Black:      chesscom.Player{Username: "JustMovingPieces01"},
		}},
	}
}

func TestParseArchiveSingleGame(t *testing.T) {
	p := newTestParser(t)
	cursor := time.Date(2024, time.November, 15, 0, 0, 0, 0, time.UTC)

	records := p.ParseArchive(sampleArchive(), "JustMovingPieces01", cursor)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	g := records[0]

	if g.Event != "Live Chess" || g.Site != "Chess.com" || g.Round != "-" {
		t.Errorf("unexpected header fields: %+v", g)
	}
	if g.White != "PokemonRwwn" || g.Black != "JustMovingPieces01" || g.Result != "1-0" {
		t.Errorf("unexpected players/result: %+v", g)
	}
	if g.WhiteElo == nil || *g.WhiteElo != 972 {
		t.Errorf("WhiteElo = %v, want 972", g.WhiteElo)
	}
	if g.BlackElo == nil || *g.BlackElo != 962 {
		t.Errorf("BlackElo = %v, want 962", g.BlackElo)
	}
	if g.PlayerElo == nil || *g.PlayerElo != 962 {
		t.Errorf("PlayerElo = %v, want 962 (tracked player is black)", g.PlayerElo)
	}
	if g.TimeControl != "180+2" || g.Category != domain.CategoryBlitz {
		t.Errorf("TimeControl/Category = %q/%q", g.TimeControl, g.Category)
	}
	wantEnd := time.Date(2024, time.November, 16, 9, 41, 17, 0, time.UTC)
	if !g.DateAndEndTime.Equal(wantEnd) {
		t.Errorf("DateAndEndTime = %s, want %s", g.DateAndEndTime, wantEnd)
	}
	if g.PlayerUsername != "JustMovingPieces01" {
		t.Errorf("PlayerUsername = %q", g.PlayerUsername)
	}
	if g.ResultForPlayer != domain.ResultLost {
		t.Errorf("ResultForPlayer = %q, want lost", g.ResultForPlayer)
	}
	if g.EndOfGameBy != domain.EndByAbandon {
		t.Errorf("EndOfGameBy = %q, want abandonment", g.EndOfGameBy)
	}
	if g.Opening != "Caro-Kann-Defense-Fantasy-Variation" || g.Eco != "B12" {
		t.Errorf("Opening/Eco = %q/%q", g.Opening, g.Eco)
	}
	if g.Accuracy != nil {
		t.Errorf("Accuracy = %v, want unset (zero accuracies in payload)", *g.Accuracy)
	}
	if g.Moves != "1. e4 c6 1-0 " {
		t.Errorf("Moves = %q", g.Moves)
	}
}

func TestParseArchiveCursorFiltersOldGames(t *testing.T) {
	p := newTestParser(t)
	cursor := time.Date(2024, time.November, 17, 0, 0, 0, 0, time.UTC)

	records := p.ParseArchive(sampleArchive(), "JustMovingPieces01", cursor)
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0 (all at or before cursor)", len(records))
	}
}

func TestParseArchiveAccuracyForTrackedSide(t *testing.T) {
	p := newTestParser(t)
	archive := sampleArchive()
	archive.Games[0].Accuracies = &chesscom.Accuracies{White: 81.5, Black: 77.2}

	records := p.ParseArchive(archive, "JustMovingPieces01", domain.Epoch)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	if records[0].Accuracy == nil || *records[0].Accuracy != 77.2 {
		t.Fatalf("Accuracy = %v, want 77.2 (black side)", records[0].Accuracy)
	}
}

func TestParseArchiveSkipsMalformedGame(t *testing.T) {
	p := newTestParser(t)
	badPGN := "[Event \"Live Chess\"]\n" +
		"[Date \"16/11/2024\"]\n" + // wrong layout
		"[White \"a\"]\n[Black \"b\"]\n[EndTime \"09:00:00\"]\n"
	archive := sampleArchive()
	archive.Games = append(archive.Games, chesscom.ArchivedGame{
		PGN:   badPGN,
		White: chesscom.Player{Username: "a"},
		Black: chesscom.Player{Username: "b"},
	})

	records := p.ParseArchive(archive, "JustMovingPieces01", domain.Epoch)
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1 (malformed game skipped, good game kept)", len(records))
	}
}

func TestParsePGNMultipleGamesInOneBlob(t *testing.T) {
	p := newTestParser(t)
	second := "[Event \"Live Chess\"]\n" +
		"[Date \"2024.11.17\"]\n" +
		"[White \"JustMovingPieces01\"]\n" +
		"[Black \"Someone\"]\n" +
		"[Result \"1-0\"]\n" +
		"[TimeControl \"600\"]\n" +
		"[EndTime \"10:00:00\"]\n" +
		"[Termination \"JustMovingPieces01 won by checkmate\"]\n" +
		"\n1. d4 d5 1-0\n"

	records := p.parsePGN(samplePGN+second, "JustMovingPieces01", 0, domain.Epoch)
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	if records[0].ResultForPlayer != domain.ResultLost {
		t.Errorf("first game result = %q, want lost", records[0].ResultForPlayer)
	}
	if records[1].ResultForPlayer != domain.ResultWon {
		t.Errorf("second game result = %q, want won", records[1].ResultForPlayer)
	}
	if records[1].Category != domain.CategoryRapid {
		t.Errorf("second game category = %q, want rapid", records[1].Category)
	}
	if records[1].EndOfGameBy != domain.EndByCheckmate {
		t.Errorf("second game end = %q, want checkmate", records[1].EndOfGameBy)
	}
}

func TestNormalizeMoves(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"1. e4 e5 2. Nf3 Nc6", "1. e4 e5 2. Nf3 Nc6"},
		{"1. e4 {[%clk 0:02:58]} 1... e5 {[%clk 0:02:57]}", "1. e4 e5 "},
		{"12... Qxd4", "Qxd4"},
	}
	for _, tc := range cases {
		if got := NormalizeMoves(tc.in); got != tc.want {
			t.Errorf("NormalizeMoves(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
