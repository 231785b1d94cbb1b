package rounds

import (
	"context"
	"errors"
	"testing"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/arenalabs/payout-pipeline/pkg/storage/memory"
	storagemocks "github.com/arenalabs/payout-pipeline/pkg/storage/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func yieldOf(v float64) *float64 { return &v }

func resolveInput() RoundInput {
	return RoundInput{
		RoundID: "round-1",
		PlayerChoices: []models.PlayerChoice{
			{UserID: "user-1", Choice: "rock", Stake: 100},
			{UserID: "user-2", Choice: "rock", Stake: 100},
			{UserID: "user-3", Choice: "paper", Stake: 100},
		},
		OracleYield: yieldOf(10),
		RandomSeed:  "seed",
	}
}

func TestResolveRound(t *testing.T) {
	t.Run("Resolves And Persists Atomically", func(t *testing.T) {
		store := memory.NewRoundStore()
		store.PutRound(models.Round{Id: "round-1", State: models.RoundClosed})
		svc := NewService(store, nil, nil, nil)

		resolution, err := svc.ResolveRound(context.Background(), resolveInput())

		require.NoError(t, err)
		assert.Equal(t, []string{"user-1", "user-2"}, resolution.EliminatedPlayers)

		round, err := store.FindRound(context.Background(), "round-1")
		require.NoError(t, err)
		assert.Equal(t, models.RoundResolved, round.State)

		entries, err := store.ListEliminations(context.Background(), "round-1")
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("Replays Identically", func(t *testing.T) {
		store := memory.NewRoundStore()
		store.PutRound(models.Round{Id: "round-1", State: models.RoundClosed})
		svc := NewService(store, nil, nil, nil)

		first, err := svc.ResolveRound(context.Background(), resolveInput())
		require.NoError(t, err)

		store.ClearEliminations("round-1")

		second, err := svc.ResolveRound(context.Background(), resolveInput())
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})

	t.Run("Validation Failures", func(t *testing.T) {
		svc := NewService(memory.NewRoundStore(), nil, nil, nil)

		cases := map[string]func(*RoundInput){
			"roundId":       func(in *RoundInput) { in.RoundID = "" },
			"playerChoices": func(in *RoundInput) { in.PlayerChoices = nil },
			"oracleYield":   func(in *RoundInput) { in.OracleYield = nil },
		}
		for field, mutate := range cases {
			in := resolveInput()
			mutate(&in)

			_, err := svc.ResolveRound(context.Background(), in)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr, "field %s", field)
			assert.Equal(t, field, verr.Field)
		}
	})

	t.Run("Unknown Round", func(t *testing.T) {
		svc := NewService(memory.NewRoundStore(), nil, nil, nil)

		_, err := svc.ResolveRound(context.Background(), resolveInput())

		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Persistence Failure Surfaces", func(t *testing.T) {
		store := storagemocks.NewRoundStore(t)
		store.On("FindRound", mock.Anything, "round-1").Return(&models.Round{Id: "round-1", State: models.RoundClosed}, nil)
		store.On("SaveResolution", mock.Anything, "round-1", mock.Anything, models.RoundResolved).Return(errors.New("write conflict"))

		svc := NewService(store, nil, nil, nil)

		_, err := svc.ResolveRound(context.Background(), resolveInput())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "round-1")
	})
}
