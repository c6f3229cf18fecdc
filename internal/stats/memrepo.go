package stats

import (
	"context"
	"sync"

	"github.com/mlarcin/chess-results-stats/internal/domain"
)

// memrepo is a development-only in-memory aggregate store.
type memrepo struct {
	mu     sync.RWMutex
	hourly map[string]*domain.HourlyWinrates
	pieces map[string]*domain.PieceMoveAverages
}

func NewMemoryRepository() Repository {
	return &memrepo{
		hourly: make(map[string]*domain.HourlyWinrates),
		pieces: make(map[string]*domain.PieceMoveAverages),
	}
}

func (m *memrepo) UpsertHourlyWinrates(ctx context.Context, agg *domain.HourlyWinrates) error {
	if agg == nil {
		return nil
	}
	cp := *agg
	m.mu.Lock()
	m.hourly[agg.PlayerUsername] = &cp
	m.mu.Unlock()
	return nil
}

func (m *memrepo) HourlyWinrates(ctx context.Context, username string) (*domain.HourlyWinrates, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if agg, ok := m.hourly[username]; ok {
		cp := *agg
		return &cp, nil
	}
	return nil, nil
}

func (m *memrepo) UpsertPieceAverages(ctx context.Context, agg *domain.PieceMoveAverages) error {
	if agg == nil {
		return nil
	}
	cp := *agg
	m.mu.Lock()
	m.pieces[agg.PlayerUsername] = &cp
	m.mu.Unlock()
	return nil
}

func (m *memrepo) PieceAverages(ctx context.Context, username string) (*domain.PieceMoveAverages, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if agg, ok := m.pieces[username]; ok {
		cp := *agg
		return &cp, nil
	}
	return nil, nil
}
