// Package rounds resolves majority-elimination game rounds. Resolution is
// deterministic for a given seed and persists atomically: elimination log
// entries and the round state update land together or not at all.
package rounds

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arenalabs/payout-pipeline/pkg/metrics"
	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
)

// RoundInput is a round resolution request.
type RoundInput struct {
	RoundID       string                `json:"roundId"`
	PlayerChoices []models.PlayerChoice `json:"playerChoices"`
	OracleYield   *float64              `json:"oracleYield"`
	RandomSeed    string                `json:"randomSeed,omitempty"`
}

// ValidationError rejects a malformed resolution request.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field %s", e.Field)
}

// Service orchestrates round resolution.
type Service struct {
	store    storage.RoundStore
	resolver Resolver
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService creates a round service. A nil resolver selects the default
// majority resolver.
func NewService(store storage.RoundStore, resolver Resolver, m *metrics.Metrics, logger *slog.Logger) *Service {
	if resolver == nil {
		resolver = MajorityResolver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, resolver: resolver, metrics: m, logger: logger}
}

// ResolveRound validates the input, computes the elimination set and
// payouts, and persists the outcome atomically. A failure anywhere leaves
// no partial elimination log behind.
func (s *Service) ResolveRound(ctx context.Context, input RoundInput) (*models.RoundResolution, error) {
	if input.RoundID == "" {
		return nil, &ValidationError{Field: "roundId"}
	}
	if len(input.PlayerChoices) == 0 {
		return nil, &ValidationError{Field: "playerChoices"}
	}
	if input.OracleYield == nil {
		return nil, &ValidationError{Field: "oracleYield"}
	}

	round, err := s.store.FindRound(ctx, input.RoundID)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RoundResolutionErrors.Inc()
		}
		return nil, fmt.Errorf("failed to look up round %s: %w", input.RoundID, err)
	}

	resolution := s.resolver.Resolve(input.PlayerChoices, *input.OracleYield, input.RandomSeed)

	if err := s.store.SaveResolution(ctx, round.Id, resolution, models.RoundResolved); err != nil {
		if s.metrics != nil {
			s.metrics.RoundResolutionErrors.Inc()
		}
		return nil, fmt.Errorf("failed to persist resolution of round %s: %w", round.Id, err)
	}

	s.logger.Info("round resolved",
		"round_id", round.Id, "eliminated", len(resolution.EliminatedPlayers), "payouts", len(resolution.Payouts))
	if s.metrics != nil {
		s.metrics.RoundResolutionsTotal.Inc()
	}
	return resolution, nil
}
