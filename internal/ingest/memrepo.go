package ingest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mlarcin/chess-results-stats/internal/domain"
)

// memrepo is a development-only in-memory record store used when no DB is
// configured.
type memrepo struct {
	mu sync.RWMutex

	nextID int64

	byUser map[string][]*domain.GameRecord
	byKey  map[string]struct{} // playerUsername|endTimestamp
}

func NewMemoryRepository() Repository {
	return &memrepo{
		byUser: make(map[string][]*domain.GameRecord),
		byKey:  make(map[string]struct{}),
	}
}

func (m *memrepo) InsertGames(ctx context.Context, games []domain.GameRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inserted := 0
	for i := range games {
		g := games[i]
		key := m.dedupKey(g.PlayerUsername, g.DateAndEndTime)
		if _, exists := m.byKey[key]; exists {
			continue
		}
		m.nextID++
		g.ID = m.nextID
		m.byKey[key] = struct{}{}
		m.byUser[g.PlayerUsername] = append(m.byUser[g.PlayerUsername], &g)
		inserted++
	}
	return inserted, nil
}

func (m *memrepo) GamesByUsername(ctx context.Context, username string) ([]domain.GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := m.byUser[username]
	games := make([]domain.GameRecord, 0, len(list))
	for _, g := range list {
		games = append(games, *g)
	}
	sort.Slice(games, func(i, j int) bool {
		return games[i].DateAndEndTime.Before(games[j].DateAndEndTime)
	})
	return games, nil
}

func (m *memrepo) LastGameEndTime(ctx context.Context, username string) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	last := domain.Epoch
	for _, g := range m.byUser[username] {
		if g.DateAndEndTime.After(last) {
			last = g.DateAndEndTime
		}
	}
	return last, nil
}

func (m *memrepo) dedupKey(username string, endTime time.Time) string {
	return username + "|" + endTime.UTC().Format(time.RFC3339)
}
