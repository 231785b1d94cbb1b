package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
)

// Store is an in-memory TransactionRepository used in tests and in
// environments without database infrastructure. All access is serialized
// through a single mutex, which makes Create's check-then-insert and
// Update's read-modify-write atomic with respect to concurrent callers.
type Store struct {
	mu           sync.Mutex
	transactions map[string]models.Transaction
	byKey        map[string]string // idempotency key -> transaction id
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		transactions: make(map[string]models.Transaction),
		byKey:        make(map[string]string),
	}
}

// Make sure we conform to the interface
var _ storage.TransactionRepository = (*Store)(nil)

// FindByID retrieves a transaction by its ID.
func (s *Store) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := tx
	return &out, nil
}

// FindByIdempotencyKey retrieves the transaction created for a given key.
func (s *Store) FindByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byKey[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	tx := s.transactions[id]
	out := tx
	return &out, nil
}

// Create persists a new transaction, enforcing the idempotency key unique
// constraint.
func (s *Store) Create(ctx context.Context, tx *models.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byKey[tx.IdempotencyKey]; exists {
		return storage.ErrConflict
	}
	s.transactions[tx.Id] = *tx
	s.byKey[tx.IdempotencyKey] = tx.Id
	return nil
}

// Update atomically applies a partial update and returns the updated record.
func (s *Store) Update(ctx context.Context, id string, update storage.TransactionUpdate) (*models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.transactions[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	if update.Status != nil && tx.Status.Terminal() && *update.Status != tx.Status {
		return nil, storage.ErrTerminalState
	}

	if update.Status != nil {
		tx.Status = *update.Status
	}
	if update.SignedEnvelope != nil {
		tx.SignedEnvelope = update.SignedEnvelope
	}
	if update.TxHash != nil {
		tx.TxHash = update.TxHash
	}
	if update.ErrorMessage != nil {
		tx.ErrorMessage = update.ErrorMessage
	}
	tx.UpdatedAt = time.Now()

	s.transactions[id] = tx
	out := tx
	return &out, nil
}

// ListByStatus returns up to limit matching transactions, oldest update first.
func (s *Store) ListByStatus(ctx context.Context, statuses []models.TransactionStatus, limit int) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[models.TransactionStatus]bool, len(statuses))
	for _, st := range statuses {
		wanted[st] = true
	}

	var matches []models.Transaction
	for _, tx := range s.transactions {
		if wanted[tx.Status] {
			matches = append(matches, tx)
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].UpdatedAt.Equal(matches[j].UpdatedAt) {
			return matches[i].Id < matches[j].Id
		}
		return matches[i].UpdatedAt.Before(matches[j].UpdatedAt)
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
