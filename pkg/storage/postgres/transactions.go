package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/lib/pq"
)

// TransactionRepo is the relational TransactionRepository. The unique index
// on idempotency_key is the check-then-insert serialization point.
type TransactionRepo struct {
	db *DB
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(db *DB) *TransactionRepo {
	return &TransactionRepo{db: db}
}

// Make sure we conform to the interface
var _ storage.TransactionRepository = (*TransactionRepo)(nil)

const transactionColumns = `id, payout_id, idempotency_key, destination_account,
	amount_stroops, asset, nonce, status, unsigned_envelope, signed_envelope,
	tx_hash, error_message, created_at, updated_at`

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	var tx models.Transaction
	var signed, hash, errMsg sql.NullString
	err := row.Scan(
		&tx.Id, &tx.PayoutId, &tx.IdempotencyKey, &tx.DestinationAccount,
		&tx.AmountStroops, &tx.Asset, &tx.Nonce, &tx.Status, &tx.UnsignedEnvelope,
		&signed, &hash, &errMsg, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	if signed.Valid {
		tx.SignedEnvelope = &signed.String
	}
	if hash.Valid {
		tx.TxHash = &hash.String
	}
	if errMsg.Valid {
		tx.ErrorMessage = &errMsg.String
	}
	return &tx, nil
}

// FindByID retrieves a transaction by its ID.
func (r *TransactionRepo) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE id = $1
	`, id)
	return scanTransaction(row)
}

// FindByIdempotencyKey retrieves the transaction created for a given key.
func (r *TransactionRepo) FindByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE idempotency_key = $1
	`, key)
	return scanTransaction(row)
}

// Create inserts the transaction; a duplicate idempotency key surfaces as
// storage.ErrConflict via the unique-violation error code.
func (r *TransactionRepo) Create(ctx context.Context, tx *models.Transaction) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`,
		tx.Id, tx.PayoutId, tx.IdempotencyKey, tx.DestinationAccount,
		tx.AmountStroops, tx.Asset, tx.Nonce, tx.Status, tx.UnsignedEnvelope,
		tx.SignedEnvelope, tx.TxHash, tx.ErrorMessage, tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return storage.ErrConflict
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// Update applies a partial update in one statement. The WHERE clause rejects
// status changes out of a terminal state; re-writing the same status passes.
func (r *TransactionRepo) Update(ctx context.Context, id string, update storage.TransactionUpdate) (*models.Transaction, error) {
	sets := []string{"updated_at = $2"}
	args := []any{id, time.Now()}
	guard := ""

	if update.Status != nil {
		args = append(args, string(*update.Status))
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
		guard = fmt.Sprintf(" AND (status NOT IN ('confirmed', 'failed', 'dead') OR status = $%d)", len(args))
	}
	if update.SignedEnvelope != nil {
		args = append(args, *update.SignedEnvelope)
		sets = append(sets, fmt.Sprintf("signed_envelope = $%d", len(args)))
	}
	if update.TxHash != nil {
		args = append(args, *update.TxHash)
		sets = append(sets, fmt.Sprintf("tx_hash = $%d", len(args)))
	}
	if update.ErrorMessage != nil {
		args = append(args, *update.ErrorMessage)
		sets = append(sets, fmt.Sprintf("error_message = $%d", len(args)))
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE transactions
		SET `+strings.Join(sets, ", ")+`
		WHERE id = $1`+guard+`
		RETURNING `+transactionColumns+`
	`, args...)

	updated, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Distinguish a missing row from a terminal-state rejection.
			if _, ferr := r.FindByID(ctx, id); ferr == nil {
				return nil, storage.ErrTerminalState
			}
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// ListByStatus returns up to limit matching transactions, oldest update
// first.
func (r *TransactionRepo) ListByStatus(ctx context.Context, statuses []models.TransactionStatus, limit int) ([]models.Transaction, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE status = ANY($1)
		ORDER BY updated_at ASC
		LIMIT $2
	`, pq.Array(names), limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions by status: %w", err)
	}
	defer rows.Close()

	var out []models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return out, nil
}
