package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"vocabclash/internal/database"
	"vocabclash/internal/models"
)

// PlayerRepository handles database operations for players
type PlayerRepository struct {
	db *database.DB
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(db *database.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// CreatePlayer inserts a new player
func (r *PlayerRepository) CreatePlayer(ctx context.Context, username, pinHash, teacherEmail string) (*models.Player, error) {
	now := time.Now().UTC()
	query := `
		INSERT INTO players (username, pin_hash, teacher_email, created_at)
		VALUES (?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(ctx, query, username, pinHash, teacherEmail, now)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	return &models.Player{
		ID:           id,
		Username:     username,
		PINHash:      pinHash,
		TeacherEmail: teacherEmail,
		CreatedAt:    now,
	}, nil
}

// GetPlayerByUsername retrieves a player by username. Returns nil when absent.
func (r *PlayerRepository) GetPlayerByUsername(ctx context.Context, username string) (*models.Player, error) {
	return r.getPlayer(ctx, "username = ?", username)
}

// GetPlayerByID retrieves a player by ID. Returns nil when absent.
func (r *PlayerRepository) GetPlayerByID(ctx context.Context, id int64) (*models.Player, error) {
	return r.getPlayer(ctx, "id = ?", id)
}

func (r *PlayerRepository) getPlayer(ctx context.Context, where string, arg any) (*models.Player, error) {
	query := "SELECT id, username, pin_hash, teacher_email, created_at FROM players WHERE " + where
	player := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&player.ID,
		&player.Username,
		&player.PINHash,
		&player.TeacherEmail,
		&player.CreatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return player, nil
}

// UpdatePIN replaces a player's PIN hash
func (r *PlayerRepository) UpdatePIN(ctx context.Context, id int64, pinHash string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE players SET pin_hash = ? WHERE id = ?", pinHash, id)
	if err != nil {
		return fmt.Errorf("failed to update PIN: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("player %d: %w", id, models.ErrNotFound)
	}
	return nil
}
