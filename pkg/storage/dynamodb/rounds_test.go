package dynamodb

import (
	"context"
	"testing"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/arenalabs/payout-pipeline/pkg/storage/dynamodb/mocks"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRoundStoreSaveResolution(t *testing.T) {
	resolution := &models.RoundResolution{
		EliminatedPlayers: []string{"user-1", "user-2"},
		Payouts:           []models.Payout{{UserID: "user-3", Amount: 300}},
		PoolBalances:      map[string]float64{"rock": 0},
	}

	t.Run("One Transaction For Round Update And Log", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := NewRoundStore(mockClient, "rounds", "eliminations")

		var captured *dynamodb.TransactWriteItemsInput
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			captured = args.Get(1).(*dynamodb.TransactWriteItemsInput)
		}).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.SaveResolution(context.Background(), "round-1", resolution, models.RoundResolved)

		require.NoError(t, err)
		// The round update plus one put per eliminated player.
		require.Len(t, captured.TransactItems, 3)
		assert.NotNil(t, captured.TransactItems[0].Update)
		assert.Equal(t, "attribute_exists(id)", *captured.TransactItems[0].Update.ConditionExpression)
		assert.NotNil(t, captured.TransactItems[1].Put)
		assert.Equal(t, "eliminations", *captured.TransactItems[1].Put.TableName)
		mockClient.AssertExpectations(t)
	})

	t.Run("Missing Round Cancels Everything", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := NewRoundStore(mockClient, "rounds", "eliminations")

		cancellationReasons := []types.CancellationReason{{Code: aws.String("ConditionalCheckFailed")}}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{CancellationReasons: cancellationReasons})

		err := store.SaveResolution(context.Background(), "round-1", resolution, models.RoundResolved)

		assert.ErrorIs(t, err, storage.ErrNotFound)
		mockClient.AssertExpectations(t)
	})
}
