package memory

import (
	"context"
	"sync"
	"time"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/google/uuid"
)

// RoundStore is the in-memory round variant. SaveResolution stages all
// writes and commits them under one lock so a mid-resolution failure never
// leaves a partial elimination log behind.
type RoundStore struct {
	mu           sync.Mutex
	rounds       map[string]models.Round
	eliminations map[string][]models.EliminationLogEntry
}

// NewRoundStore creates an empty in-memory round store.
func NewRoundStore() *RoundStore {
	return &RoundStore{
		rounds:       make(map[string]models.Round),
		eliminations: make(map[string][]models.EliminationLogEntry),
	}
}

// Make sure we conform to the interface
var _ storage.RoundStore = (*RoundStore)(nil)

// PutRound seeds a round. Used by tests and local setups.
func (s *RoundStore) PutRound(round models.Round) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rounds[round.Id] = round
}

// FindRound retrieves a round by its ID.
func (s *RoundStore) FindRound(ctx context.Context, roundID string) (*models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := round
	return &out, nil
}

// SaveResolution writes the elimination log entries and the round state
// update atomically.
func (s *RoundStore) SaveResolution(ctx context.Context, roundID string, resolution *models.RoundResolution, state models.RoundState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	round, ok := s.rounds[roundID]
	if !ok {
		return storage.ErrNotFound
	}

	now := time.Now()
	entries := make([]models.EliminationLogEntry, 0, len(resolution.EliminatedPlayers))
	for _, userID := range resolution.EliminatedPlayers {
		entries = append(entries, models.EliminationLogEntry{
			EntryID:   uuid.New().String(),
			RoundID:   roundID,
			UserID:    userID,
			Reason:    "ELIMINATED_BY_ROUND",
			Timestamp: now,
		})
	}

	round.State = state
	round.Resolution = resolution
	round.UpdatedAt = now

	s.rounds[roundID] = round
	s.eliminations[roundID] = append(s.eliminations[roundID], entries...)
	return nil
}

// ListEliminations returns the elimination log entries for a round.
func (s *RoundStore) ListEliminations(ctx context.Context, roundID string) ([]models.EliminationLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.eliminations[roundID]
	out := make([]models.EliminationLogEntry, len(entries))
	copy(out, entries)
	return out, nil
}

// ClearEliminations removes the elimination log for a round. Resolution
// replay tests use this to re-run a round from a clean log.
func (s *RoundStore) ClearEliminations(roundID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.eliminations, roundID)
}
