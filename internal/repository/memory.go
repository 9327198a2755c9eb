package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
)

// MemoryStore keeps records in process; it backs the server when the
// database is disabled.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]GameRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{games: make(map[string]GameRecord)}
}

func cloneRecord(record GameRecord) GameRecord {
	players := make([]PlayerRecord, len(record.Players))
	for i, p := range record.Players {
		p.Purchases = append([]cards.Run(nil), p.Purchases...)
		players[i] = p
	}
	record.Players = players
	return record
}

// SaveGame stores a record; saving the same ID twice keeps the first.
func (m *MemoryStore) SaveGame(_ context.Context, record GameRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.games[record.ID]; exists {
		return nil
	}
	m.games[record.ID] = cloneRecord(record)
	return nil
}

// GetGame returns a stored record.
func (m *MemoryStore) GetGame(_ context.Context, id string) (GameRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.games[id]
	if !ok {
		return GameRecord{}, ErrNotFound
	}
	return cloneRecord(record), nil
}

// ListGames returns up to limit records, newest first.
func (m *MemoryStore) ListGames(_ context.Context, limit int) ([]GameRecord, error) {
	m.mu.RLock()
	records := make([]GameRecord, 0, len(m.games))
	for _, record := range m.games {
		records = append(records, cloneRecord(record))
	}
	m.mu.RUnlock()

	sort.Slice(records, func(i, j int) bool {
		if !records[i].FinishedAt.Equal(records[j].FinishedAt) {
			return records[i].FinishedAt.After(records[j].FinishedAt)
		}
		return records[i].ID < records[j].ID
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	for i := range records {
		for j := range records[i].Players {
			records[i].Players[j].Purchases = nil
		}
	}
	return records, nil
}

// StrategyStats aggregates wins and average score per strategy.
func (m *MemoryStore) StrategyStats(_ context.Context) ([]StrategyStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totals := make(map[string]*StrategyStats)
	scores := make(map[string]int)
	for _, record := range m.games {
		for _, p := range record.Players {
			s, ok := totals[p.Strategy]
			if !ok {
				s = &StrategyStats{Strategy: p.Strategy}
				totals[p.Strategy] = s
			}
			s.Games++
			if p.Winner {
				s.Wins++
			}
			scores[p.Strategy] += p.Score
		}
	}

	out := make([]StrategyStats, 0, len(totals))
	for name, s := range totals {
		s.AvgScore = float64(scores[name]) / float64(s.Games)
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Strategy < out[j].Strategy })
	return out, nil
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*ResultsRepository)(nil)
)
