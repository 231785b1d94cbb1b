// Package nonce issues strictly increasing per-source-account sequence
// numbers. Sequential issuance under concurrent callers is a hard contract:
// two creations for the same account must never receive the same or an
// out-of-order nonce.
package nonce

import (
	"context"
	"sync"
)

// Sequencer issues the next nonce for a source account.
type Sequencer interface {
	Next(ctx context.Context, sourceAccount string) (int64, error)
}

// MemorySequencer issues nonces from in-process counters. A single mutex
// serializes issuance across all accounts; contention is negligible at
// payout volumes.
type MemorySequencer struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewMemorySequencer creates a sequencer starting each account at 1.
func NewMemorySequencer() *MemorySequencer {
	return &MemorySequencer{counters: make(map[string]int64)}
}

// Make sure we conform to the interface
var _ Sequencer = (*MemorySequencer)(nil)

// Next returns the next nonce for the account.
func (s *MemorySequencer) Next(ctx context.Context, sourceAccount string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counters[sourceAccount]++
	return s.counters[sourceAccount], nil
}
