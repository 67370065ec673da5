package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vocabclash/internal/database"
)

// SessionStateRepository persists serialized game sessions keyed by player and state key
type SessionStateRepository struct {
	db  *database.DB
	now func() time.Time
}

// NewSessionStateRepository creates a new session state repository
func NewSessionStateRepository(db *database.DB) *SessionStateRepository {
	return &SessionStateRepository{db: db, now: time.Now}
}

// GetState returns the payload stored under key for a player.
// ok is false when nothing is stored.
func (r *SessionStateRepository) GetState(ctx context.Context, playerID int64, key string) (payload string, ok bool, err error) {
	query := "SELECT payload FROM game_state WHERE player_id = ? AND state_key = ?"
	err = r.db.QueryRowContext(ctx, query, playerID, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get game state: %w", err)
	}
	return payload, true, nil
}

// SaveState overwrites the payload stored under key for a player
func (r *SessionStateRepository) SaveState(ctx context.Context, playerID int64, key, payload string) error {
	_, err := r.db.ExecContext(ctx, r.db.Dialect.UpsertGameStateQuery(), playerID, key, payload, r.now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}

// DeleteState removes the payload stored under key for a player. Removing an
// absent key is not an error.
func (r *SessionStateRepository) DeleteState(ctx context.Context, playerID int64, key string) error {
	query := "DELETE FROM game_state WHERE player_id = ? AND state_key = ?"
	if _, err := r.db.ExecContext(ctx, query, playerID, key); err != nil {
		return fmt.Errorf("failed to delete game state: %w", err)
	}
	return nil
}

// ListStateKeys returns the keys stored for a player, most recently updated first
func (r *SessionStateRepository) ListStateKeys(ctx context.Context, playerID int64) ([]string, error) {
	query := `
		SELECT state_key
		FROM game_state
		WHERE player_id = ?
		ORDER BY updated_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query game states: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan game state: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// DeleteStaleStates removes every state not written since before and returns
// how many were removed
func (r *SessionStateRepository) DeleteStaleStates(ctx context.Context, before time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM game_state WHERE updated_at < ?", before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete stale game states: %w", err)
	}
	return result.RowsAffected()
}
