package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/cardclash/internal/arena"
	"github.com/cory-johannsen/cardclash/internal/game/combat"
)

// ResultRepository stores finished battles. It implements arena.Recorder.
type ResultRepository struct {
	db *pgxpool.Pool
}

// NewResultRepository creates a ResultRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

// ResultSummary is a stored battle without its event log.
type ResultSummary struct {
	BattleID   string
	SessionID  string
	Winner     combat.Winner
	Turns      int
	Rounds     int
	FinishedAt time.Time
}

// RecordResult stores r. Recording the same battle twice keeps the first row.
//
// Precondition: r.BattleID must be non-empty.
func (r *ResultRepository) RecordResult(ctx context.Context, res arena.Result) error {
	log, err := json.Marshal(res.Log)
	if err != nil {
		return fmt.Errorf("encoding battle log: %w", err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO battle_results (battle_id, session_id, winner, turns, rounds, finished_at, log)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		ON CONFLICT (battle_id) DO NOTHING`,
		res.BattleID, res.SessionID, res.Winner.String(), res.Turns, res.Rounds, res.FinishedAt, log,
	)
	if err != nil {
		return fmt.Errorf("inserting battle result %s: %w", res.BattleID, err)
	}
	return nil
}

// RecentBySession returns up to limit results for sessionID, newest first.
//
// Precondition: limit must be > 0.
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *ResultRepository) RecentBySession(ctx context.Context, sessionID string, limit int) ([]ResultSummary, error) {
	rows, err := r.db.Query(ctx, `
		SELECT battle_id, session_id, winner, turns, rounds, finished_at
		FROM battle_results WHERE session_id = $1
		ORDER BY finished_at DESC LIMIT $2`,
		sessionID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battle results: %w", err)
	}
	defer rows.Close()

	out := make([]ResultSummary, 0)
	for rows.Next() {
		var (
			s      ResultSummary
			winner string
		)
		if err := rows.Scan(&s.BattleID, &s.SessionID, &winner, &s.Turns, &s.Rounds, &s.FinishedAt); err != nil {
			return nil, fmt.Errorf("scanning battle result row: %w", err)
		}
		if err := s.Winner.UnmarshalText([]byte(winner)); err != nil {
			return nil, fmt.Errorf("battle %s: %w", s.BattleID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Log returns the stored event log of a battle.
func (r *ResultRepository) Log(ctx context.Context, battleID string) ([]combat.BattleEvent, error) {
	var raw []byte
	if err := r.db.QueryRow(ctx, `SELECT log FROM battle_results WHERE battle_id = $1`, battleID).Scan(&raw); err != nil {
		return nil, fmt.Errorf("loading battle log %s: %w", battleID, err)
	}
	var events []combat.BattleEvent
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("decoding battle log %s: %w", battleID, err)
	}
	return events, nil
}
