package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/google/uuid"
)

// RoundRepo is the relational round store. SaveResolution runs in one SQL
// transaction: the elimination log inserts and the round update commit
// together or roll back together.
type RoundRepo struct {
	db *DB
}

// NewRoundRepo creates a new RoundRepo.
func NewRoundRepo(db *DB) *RoundRepo {
	return &RoundRepo{db: db}
}

// Make sure we conform to the interface
var _ storage.RoundStore = (*RoundRepo)(nil)

// FindRound retrieves a round by its ID.
func (r *RoundRepo) FindRound(ctx context.Context, roundID string) (*models.Round, error) {
	var round models.Round
	var resolution []byte
	err := r.db.QueryRowContext(ctx, `
		SELECT id, arena_id, round_number, state, resolution, created_at, updated_at
		FROM rounds
		WHERE id = $1
	`, roundID).Scan(&round.Id, &round.ArenaId, &round.RoundNumber, &round.State, &resolution, &round.CreatedAt, &round.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get round: %w", err)
	}

	if len(resolution) > 0 {
		var res models.RoundResolution
		if err := json.Unmarshal(resolution, &res); err != nil {
			return nil, fmt.Errorf("unmarshal round resolution: %w", err)
		}
		round.Resolution = &res
	}
	return &round, nil
}

// SaveResolution persists the resolution and elimination log atomically.
func (r *RoundRepo) SaveResolution(ctx context.Context, roundID string, resolution *models.RoundResolution, state models.RoundState) error {
	resolutionJSON, err := json.Marshal(resolution)
	if err != nil {
		return fmt.Errorf("marshal resolution: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin resolution transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		UPDATE rounds
		SET state = $2, resolution = $3, updated_at = $4
		WHERE id = $1
	`, roundID, state, resolutionJSON, now)
	if err != nil {
		return fmt.Errorf("update round: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update round rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	for _, userID := range resolution.EliminatedPlayers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO elimination_logs (entry_id, round_id, user_id, reason, created_at)
			VALUES ($1, $2, $3, $4, $5)
		`, uuid.New().String(), roundID, userID, "ELIMINATED_BY_ROUND", now); err != nil {
			return fmt.Errorf("insert elimination log: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit resolution transaction: %w", err)
	}
	return nil
}

// ListEliminations returns the elimination log entries for a round.
func (r *RoundRepo) ListEliminations(ctx context.Context, roundID string) ([]models.EliminationLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT entry_id, round_id, user_id, reason, created_at
		FROM elimination_logs
		WHERE round_id = $1
		ORDER BY created_at ASC
	`, roundID)
	if err != nil {
		return nil, fmt.Errorf("list eliminations: %w", err)
	}
	defer rows.Close()

	var out []models.EliminationLogEntry
	for rows.Next() {
		var entry models.EliminationLogEntry
		if err := rows.Scan(&entry.EntryID, &entry.RoundID, &entry.UserID, &entry.Reason, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan elimination entry: %w", err)
		}
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate eliminations: %w", err)
	}
	return out, nil
}
