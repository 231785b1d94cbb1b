package storage

import (
	"context"

	"github.com/arenalabs/payout-pipeline/pkg/models"
)

//go:generate go tool mockery --name TransactionRepository --output mocks --outpkg mocks
//go:generate go tool mockery --name RoundStore --output mocks --outpkg mocks

// TransactionRepository is the single source of truth for payout transactions.
// The confirmation queue holds scheduling metadata only; every worker treats
// this repository as the only mutable shared state.
type TransactionRepository interface {
	// FindByID retrieves a transaction by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*models.Transaction, error)

	// FindByIdempotencyKey retrieves the transaction created for a given
	// idempotency key, or ErrNotFound.
	FindByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error)

	// Create persists a new transaction. It returns ErrConflict if the
	// idempotency key is already taken; callers should re-fetch instead of
	// retrying creation.
	Create(ctx context.Context, tx *models.Transaction) error

	// Update atomically applies a partial update and returns the updated
	// record. It returns ErrTerminalState when the stored status is already
	// terminal and the update would change the status.
	Update(ctx context.Context, id string, update TransactionUpdate) (*models.Transaction, error)

	// ListByStatus returns up to limit transactions whose status is in
	// statuses, ordered by UpdatedAt ascending so that no record is starved
	// behind newer work.
	ListByStatus(ctx context.Context, statuses []models.TransactionStatus, limit int) ([]models.Transaction, error)
}

// TransactionUpdate is a partial update; nil fields are left untouched.
type TransactionUpdate struct {
	Status         *models.TransactionStatus
	SignedEnvelope *string
	TxHash         *string
	ErrorMessage   *string
}

// RoundStore persists rounds and their resolutions.
type RoundStore interface {
	// FindRound retrieves a round by its ID, or ErrNotFound.
	FindRound(ctx context.Context, roundID string) (*models.Round, error)

	// SaveResolution writes the elimination log entries and the round state
	// update as a single atomic unit. A failure leaves no partial
	// elimination log visible.
	SaveResolution(ctx context.Context, roundID string, resolution *models.RoundResolution, state models.RoundState) error

	// ListEliminations returns the elimination log entries for a round.
	ListEliminations(ctx context.Context, roundID string) ([]models.EliminationLogEntry, error)
}
