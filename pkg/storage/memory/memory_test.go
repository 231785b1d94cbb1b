package memory

import (
	"context"
	"testing"
	"time"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTx(id, key string, status models.TransactionStatus, updatedAt time.Time) *models.Transaction {
	return &models.Transaction{
		Id:             id,
		IdempotencyKey: key,
		Status:         status,
		CreatedAt:      updatedAt,
		UpdatedAt:      updatedAt,
	}
}

func TestCreate(t *testing.T) {
	t.Run("Success And Lookup", func(t *testing.T) {
		store := New()
		tx := newTx("tx-1", "key-1", models.StatusBuilt, time.Now())

		require.NoError(t, store.Create(context.Background(), tx))

		byID, err := store.FindByID(context.Background(), "tx-1")
		require.NoError(t, err)
		assert.Equal(t, "tx-1", byID.Id)

		byKey, err := store.FindByIdempotencyKey(context.Background(), "key-1")
		require.NoError(t, err)
		assert.Equal(t, "tx-1", byKey.Id)
	})

	t.Run("Duplicate Key Conflicts", func(t *testing.T) {
		store := New()
		require.NoError(t, store.Create(context.Background(), newTx("tx-1", "key-1", models.StatusBuilt, time.Now())))

		err := store.Create(context.Background(), newTx("tx-2", "key-1", models.StatusBuilt, time.Now()))

		assert.ErrorIs(t, err, storage.ErrConflict)
	})

	t.Run("Missing Record", func(t *testing.T) {
		store := New()

		_, err := store.FindByID(context.Background(), "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)

		_, err = store.FindByIdempotencyKey(context.Background(), "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestUpdate(t *testing.T) {
	t.Run("Applies Partial Update", func(t *testing.T) {
		store := New()
		require.NoError(t, store.Create(context.Background(), newTx("tx-1", "key-1", models.StatusQueued, time.Now())))

		submitted := models.StatusSubmitted
		hash := "abc123"
		updated, err := store.Update(context.Background(), "tx-1", storage.TransactionUpdate{Status: &submitted, TxHash: &hash})

		require.NoError(t, err)
		assert.Equal(t, models.StatusSubmitted, updated.Status)
		require.NotNil(t, updated.TxHash)
		assert.Equal(t, "abc123", *updated.TxHash)
	})

	t.Run("Terminal Status Is Immutable", func(t *testing.T) {
		store := New()
		require.NoError(t, store.Create(context.Background(), newTx("tx-1", "key-1", models.StatusConfirmed, time.Now())))

		failed := models.StatusFailed
		_, err := store.Update(context.Background(), "tx-1", storage.TransactionUpdate{Status: &failed})

		assert.ErrorIs(t, err, storage.ErrTerminalState)
	})

	t.Run("Same Terminal Status Rewrite Is Allowed", func(t *testing.T) {
		store := New()
		require.NoError(t, store.Create(context.Background(), newTx("tx-1", "key-1", models.StatusDead, time.Now())))

		dead := models.StatusDead
		msg := "Confirmation failed after 10 attempts: timeout"
		updated, err := store.Update(context.Background(), "tx-1", storage.TransactionUpdate{Status: &dead, ErrorMessage: &msg})

		require.NoError(t, err)
		assert.Equal(t, models.StatusDead, updated.Status)
	})

	t.Run("Missing Record", func(t *testing.T) {
		store := New()
		queued := models.StatusQueued

		_, err := store.Update(context.Background(), "nope", storage.TransactionUpdate{Status: &queued})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestListByStatus(t *testing.T) {
	store := New()
	base := time.Now().Add(-time.Hour)
	require.NoError(t, store.Create(context.Background(), newTx("tx-c", "key-c", models.StatusQueued, base.Add(3*time.Minute))))
	require.NoError(t, store.Create(context.Background(), newTx("tx-a", "key-a", models.StatusQueued, base.Add(1*time.Minute))))
	require.NoError(t, store.Create(context.Background(), newTx("tx-b", "key-b", models.StatusSubmitted, base.Add(2*time.Minute))))
	require.NoError(t, store.Create(context.Background(), newTx("tx-d", "key-d", models.StatusConfirmed, base)))

	t.Run("Oldest Update First Across Statuses", func(t *testing.T) {
		got, err := store.ListByStatus(context.Background(), []models.TransactionStatus{models.StatusQueued, models.StatusSubmitted}, 10)

		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "tx-a", got[0].Id)
		assert.Equal(t, "tx-b", got[1].Id)
		assert.Equal(t, "tx-c", got[2].Id)
	})

	t.Run("Limit", func(t *testing.T) {
		got, err := store.ListByStatus(context.Background(), []models.TransactionStatus{models.StatusQueued, models.StatusSubmitted}, 2)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "tx-a", got[0].Id)
		assert.Equal(t, "tx-b", got[1].Id)
	})
}
