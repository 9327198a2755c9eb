package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/kingdomforge/kingdom-server-go/internal/game/cards"
)

// ResultsRepository stores games in PostgreSQL.
type ResultsRepository struct {
	db *DB
}

// NewResultsRepository creates a repository on db.
func NewResultsRepository(db *DB) *ResultsRepository {
	return &ResultsRepository{db: db}
}

// SaveGame writes a game, its seats and their purchase tallies in one
// transaction. Saving the same game twice is a no-op.
func (r *ResultsRepository) SaveGame(ctx context.Context, record GameRecord) error {
	tx, err := r.db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO games (id, seed, rounds, checksum, finished_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO NOTHING
	`, record.ID, int64(record.Seed), record.Rounds, record.Checksum, record.FinishedAt)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range record.Players {
		batch.Queue(`
			INSERT INTO game_players (game_id, seat, name, strategy, score, shuffles, winner)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, record.ID, p.Seat, p.Name, p.Strategy, p.Score, p.Shuffles, p.Winner)
		for _, run := range p.Purchases {
			batch.Queue(`
				INSERT INTO game_purchases (game_id, seat, card, count)
				VALUES ($1, $2, $3, $4)
			`, record.ID, p.Seat, string(run.Name), run.Count)
		}
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert players: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit game: %w", err)
	}

	if r.db.logger != nil {
		r.db.logger.Debug("game saved",
			zap.String("game_id", record.ID),
			zap.Int("players", len(record.Players)),
		)
	}
	return nil
}

// GetGame loads a game with its seats and purchases.
func (r *ResultsRepository) GetGame(ctx context.Context, id string) (GameRecord, error) {
	var record GameRecord
	var seed int64
	err := r.db.pool.QueryRow(ctx, `
		SELECT id, seed, rounds, checksum, finished_at FROM games WHERE id = $1
	`, id).Scan(&record.ID, &seed, &record.Rounds, &record.Checksum, &record.FinishedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return GameRecord{}, ErrNotFound
	}
	if err != nil {
		return GameRecord{}, fmt.Errorf("failed to load game %s: %w", id, err)
	}
	record.Seed = uint64(seed)

	players, err := r.loadPlayers(ctx, []string{id})
	if err != nil {
		return GameRecord{}, err
	}
	record.Players = players[id]

	rows, err := r.db.pool.Query(ctx, `
		SELECT seat, card, count FROM game_purchases WHERE game_id = $1 ORDER BY seat, card
	`, id)
	if err != nil {
		return GameRecord{}, fmt.Errorf("failed to load purchases: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seat, count int
		var card string
		if err := rows.Scan(&seat, &card, &count); err != nil {
			return GameRecord{}, fmt.Errorf("failed to scan purchase: %w", err)
		}
		if seat >= 0 && seat < len(record.Players) {
			record.Players[seat].Purchases = append(record.Players[seat].Purchases, cards.Run{Name: cards.Name(card), Count: count})
		}
	}
	if err := rows.Err(); err != nil {
		return GameRecord{}, fmt.Errorf("failed to load purchases: %w", err)
	}
	return record, nil
}

// ListGames returns the most recently finished games, newest first, without
// purchase tallies.
func (r *ResultsRepository) ListGames(ctx context.Context, limit int) ([]GameRecord, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT id, seed, rounds, checksum, finished_at FROM games
		ORDER BY finished_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (GameRecord, error) {
		var record GameRecord
		var seed int64
		err := row.Scan(&record.ID, &seed, &record.Rounds, &record.Checksum, &record.FinishedAt)
		record.Seed = uint64(seed)
		return record, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan games: %w", err)
	}

	ids := make([]string, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	players, err := r.loadPlayers(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Players = players[records[i].ID]
	}
	return records, nil
}

func (r *ResultsRepository) loadPlayers(ctx context.Context, ids []string) (map[string][]PlayerRecord, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT game_id, seat, name, strategy, score, shuffles, winner
		FROM game_players WHERE game_id = ANY($1)
		ORDER BY game_id, seat
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]PlayerRecord, len(ids))
	for rows.Next() {
		var gameID string
		var p PlayerRecord
		if err := rows.Scan(&gameID, &p.Seat, &p.Name, &p.Strategy, &p.Score, &p.Shuffles, &p.Winner); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		out[gameID] = append(out[gameID], p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	return out, nil
}

// StrategyStats aggregates wins and average score per strategy.
func (r *ResultsRepository) StrategyStats(ctx context.Context) ([]StrategyStats, error) {
	rows, err := r.db.pool.Query(ctx, `
		SELECT strategy,
		       COUNT(*),
		       COUNT(*) FILTER (WHERE winner),
		       AVG(score)::float8
		FROM game_players
		GROUP BY strategy
		ORDER BY strategy
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query strategy stats: %w", err)
	}

	stats, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (StrategyStats, error) {
		var s StrategyStats
		err := row.Scan(&s.Strategy, &s.Games, &s.Wins, &s.AvgScore)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan strategy stats: %w", err)
	}
	return stats, nil
}
