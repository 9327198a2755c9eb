package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kingdomforge/kingdom-server-go/internal/game"
	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
)

// ErrNotFound is returned when a game is not stored.
var ErrNotFound = errors.New("game not found")

// PlayerRecord is one seat of a stored game.
type PlayerRecord struct {
	Seat      int
	Name      string
	Strategy  string
	Score     int
	Shuffles  int
	Winner    bool
	Purchases []cards.Run
}

// GameRecord is a stored finished game.
type GameRecord struct {
	ID         string
	Seed       uint64
	Rounds     int
	Checksum   string
	FinishedAt time.Time
	Players    []PlayerRecord
}

// StrategyStats aggregates every stored seat played by one strategy.
type StrategyStats struct {
	Strategy string
	Games    int
	Wins     int
	AvgScore float64
}

// Store persists game records.
type Store interface {
	SaveGame(ctx context.Context, record GameRecord) error
	GetGame(ctx context.Context, id string) (GameRecord, error)
	ListGames(ctx context.Context, limit int) ([]GameRecord, error)
	StrategyStats(ctx context.Context) ([]StrategyStats, error)
}

// NewGameRecord builds a record from a finished simulation.
func NewGameRecord(sim *game.Simulation) (GameRecord, error) {
	if !sim.Finished() {
		return GameRecord{}, fmt.Errorf("simulation %s has not finished", sim.ID)
	}
	results, err := sim.Results()
	if err != nil {
		return GameRecord{}, fmt.Errorf("simulation %s failed: %w", sim.ID, err)
	}

	winners := make(map[string]bool)
	for _, name := range results.Winners() {
		winners[name] = true
	}
	strategies := make(map[string]string, len(sim.Setup.Players))
	for _, p := range sim.Setup.Players {
		strategies[p.Name] = p.Strategy
	}

	record := GameRecord{
		ID:         sim.ID,
		Seed:       sim.Setup.Seed,
		Rounds:     sim.Rounds(),
		Checksum:   sim.Checksum(),
		FinishedAt: sim.FinishedAt(),
		Players:    make([]PlayerRecord, 0, len(results)),
	}
	for i, r := range results {
		record.Players = append(record.Players, PlayerRecord{
			Seat:      i,
			Name:      r.Name,
			Strategy:  strategies[r.Name],
			Score:     r.Score,
			Shuffles:  r.Shuffles,
			Winner:    winners[r.Name],
			Purchases: append([]cards.Run(nil), r.Purchases...),
		})
	}
	return record, nil
}
