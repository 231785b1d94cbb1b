package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/arenalabs/payout-pipeline/pkg/storage/dynamodb/mocks"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreate(t *testing.T) {
	tx := &models.Transaction{Id: "tx-1", IdempotencyKey: "key-1", Status: models.StatusBuilt}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		var captured *dynamodb.TransactWriteItemsInput
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
			captured = args.Get(1).(*dynamodb.TransactWriteItemsInput)
		}).Return(&dynamodb.TransactWriteItemsOutput{}, nil)

		err := store.Create(context.Background(), tx)

		assert.NoError(t, err)
		// One write reserves the key, the other creates the record; both are
		// guarded against overwrites.
		assert.Len(t, captured.TransactItems, 2)
		for _, item := range captured.TransactItems {
			assert.Equal(t, "attribute_not_exists(id)", *item.Put.ConditionExpression)
		}
		mockClient.AssertExpectations(t)
	})

	t.Run("Taken Idempotency Key Conflicts", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		cancellationReasons := []types.CancellationReason{
			{Code: aws.String("ConditionalCheckFailed")},
			{Code: aws.String("None")},
		}
		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, &types.TransactionCanceledException{CancellationReasons: cancellationReasons})

		err := store.Create(context.Background(), tx)

		assert.ErrorIs(t, err, storage.ErrConflict)
		mockClient.AssertExpectations(t)
	})

	t.Run("Transaction Fails", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		mockClient.On("TransactWriteItems", mock.Anything, mock.Anything).Return(nil, errors.New("throughput exceeded"))

		err := store.Create(context.Background(), tx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to execute create transaction")
		mockClient.AssertExpectations(t)
	})
}
