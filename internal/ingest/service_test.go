package ingest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/mlarcin/chess-results-stats/internal/chesscom"
)

// fakeFetcher serves canned archive pages keyed by "year-month" and records
// which months were requested.
type fakeFetcher struct {
	pages    map[string]*chesscom.MonthlyArchive
	failing  map[string]bool
	requests []string
}

func monthKey(year int, month time.Month) string {
	return fmt.Sprintf("%d-%02d", year, month)
}

func (f *fakeFetcher) MonthlyArchive(_ context.Context, _ string, year int, month time.Month) (*chesscom.MonthlyArchive, error) {
	key := monthKey(year, month)
	f.requests = append(f.requests, key)
	if f.failing[key] {
		return nil, errors.New("upstream unavailable")
	}
	if page, ok := f.pages[key]; ok {
		return page, nil
	}
	return &chesscom.MonthlyArchive{}, nil
}

func gamePGN(date, endTime string) string {
	return "[Event \"Live Chess\"]\n" +
		"[Date \"" + date + "\"]\n" +
		"[White \"JustMovingPieces01\"]\n" +
		"[Black \"Opponent\"]\n" +
		"[Result \"1-0\"]\n" +
		"[TimeControl \"180\"]\n" +
		"[EndTime \"" + endTime + "\"]\n" +
		"[Termination \"JustMovingPieces01 won by checkmate\"]\n" +
		"\n1. e4 e5 1-0\n"
}

func archiveWith(pgns ...string) *chesscom.MonthlyArchive {
	a := &chesscom.MonthlyArchive{}
	for _, pgn := range pgns {
		a.Games = append(a.Games, chesscom.ArchivedGame{
			PGN:   pgn,
			White: chesscom.Player{Username: "JustMovingPieces01"},
			Black: chesscom.Player{Username: "Opponent"},
		})
	}
	return a
}

func newTestService(t *testing.T, fetcher Fetcher) (*Service, Repository) {
	t.Helper()
	repo := NewMemoryRepository()
	svc := NewService(fetcher, repo, newTestParser(t), Config{MaxFetchMonths: 3, FetchConcurrency: 2}, nil)
	svc.now = func() time.Time {
		return time.Date(2024, time.November, 20, 12, 0, 0, 0, time.UTC)
	}
	return svc, repo
}

func TestSyncFirstRunFetchesFullWindow(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*chesscom.MonthlyArchive{
		"2024-10": archiveWith(gamePGN("2024.10.05", "18:30:00")),
		"2024-11": archiveWith(gamePGN("2024.11.16", "09:41:17"), gamePGN("2024.11.17", "10:00:00")),
	}}
	svc, repo := newTestService(t, fetcher)

	res, err := svc.Sync(context.Background(), "JustMovingPieces01")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.MonthsPlanned != 3 || res.MonthsFetched != 3 || res.MonthsFailed != 0 {
		t.Errorf("months planned/fetched/failed = %d/%d/%d, want 3/3/0",
			res.MonthsPlanned, res.MonthsFetched, res.MonthsFailed)
	}
	if res.GamesParsed != 3 || res.NewGames != 3 {
		t.Errorf("parsed/new = %d/%d, want 3/3", res.GamesParsed, res.NewGames)
	}
	if len(fetcher.requests) != 3 {
		t.Errorf("fetch calls = %d, want 3", len(fetcher.requests))
	}

	games, err := repo.GamesByUsername(context.Background(), "JustMovingPieces01")
	if err != nil {
		t.Fatalf("GamesByUsername: %v", err)
	}
	if len(games) != 3 {
		t.Fatalf("stored games = %d, want 3", len(games))
	}
	for i := 1; i < len(games); i++ {
		if games[i].DateAndEndTime.Before(games[i-1].DateAndEndTime) {
			t.Errorf("games not ordered oldest first at index %d", i)
		}
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	fetcher := &fakeFetcher{pages: map[string]*chesscom.MonthlyArchive{
		"2024-11": archiveWith(gamePGN("2024.11.16", "09:41:17")),
	}}
	svc, repo := newTestService(t, fetcher)

	if _, err := svc.Sync(context.Background(), "JustMovingPieces01"); err != nil {
		t.Fatalf("first Sync: %v", err)
	}
	res, err := svc.Sync(context.Background(), "JustMovingPieces01")
	if err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if res.NewGames != 0 {
		t.Errorf("second run NewGames = %d, want 0", res.NewGames)
	}
	// The cursor moves to the last stored game, so the re-run only walks
	// back to that game's month.
	if res.MonthsPlanned != 1 {
		t.Errorf("second run MonthsPlanned = %d, want 1", res.MonthsPlanned)
	}

	games, _ := repo.GamesByUsername(context.Background(), "JustMovingPieces01")
	if len(games) != 1 {
		t.Fatalf("stored games after re-run = %d, want 1", len(games))
	}
}

func TestSyncSurvivesFailedMonth(t *testing.T) {
	fetcher := &fakeFetcher{
		pages: map[string]*chesscom.MonthlyArchive{
			"2024-11": archiveWith(gamePGN("2024.11.16", "09:41:17")),
		},
		failing: map[string]bool{"2024-10": true},
	}
	svc, repo := newTestService(t, fetcher)

	res, err := svc.Sync(context.Background(), "JustMovingPieces01")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if res.MonthsFailed != 1 || res.MonthsFetched != 2 {
		t.Errorf("failed/fetched = %d/%d, want 1/2", res.MonthsFailed, res.MonthsFetched)
	}
	if res.NewGames != 1 {
		t.Errorf("NewGames = %d, want 1", res.NewGames)
	}

	games, _ := repo.GamesByUsername(context.Background(), "JustMovingPieces01")
	if len(games) != 1 {
		t.Fatalf("stored games = %d, want 1", len(games))
	}
}

func TestSyncCursorLoadError(t *testing.T) {
	svc := NewService(&fakeFetcher{}, failingRepo{}, newTestParser(t), Config{}, nil)
	if _, err := svc.Sync(context.Background(), "JustMovingPieces01"); err == nil {
		t.Fatal("expected error when the cursor cannot be loaded")
	}
}

type failingRepo struct{ Repository }

func (failingRepo) LastGameEndTime(context.Context, string) (time.Time, error) {
	return time.Time{}, errors.New("store down")
}
