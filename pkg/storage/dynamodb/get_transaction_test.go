package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/arenalabs/payout-pipeline/pkg/storage/dynamodb/mocks"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestFindByID(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		txAV, _ := attributevalue.MarshalMap(&models.Transaction{Id: "tx-1", Status: models.StatusQueued})
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: txAV}, nil)

		tx, err := store.FindByID(context.Background(), "tx-1")

		assert.NoError(t, err)
		assert.Equal(t, "tx-1", tx.Id)
		assert.Equal(t, models.StatusQueued, tx.Status)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		_, err := store.FindByID(context.Background(), "tx-1")

		assert.ErrorIs(t, err, storage.ErrNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Client Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

		_, err := store.FindByID(context.Background(), "tx-1")

		assert.Error(t, err)
		mockClient.AssertExpectations(t)
	})
}

func TestFindByIdempotencyKey(t *testing.T) {
	t.Run("Resolves Lock Then Record", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		lockAV, _ := attributevalue.MarshalMap(map[string]string{
			"id":             idempotencyLockID("key-1"),
			"transaction_id": "tx-1",
		})
		txAV, _ := attributevalue.MarshalMap(&models.Transaction{Id: "tx-1"})

		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: lockAV}, nil)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Once().Return(&dynamodb.GetItemOutput{Item: txAV}, nil)

		tx, err := store.FindByIdempotencyKey(context.Background(), "key-1")

		assert.NoError(t, err)
		assert.Equal(t, "tx-1", tx.Id)
		mockClient.AssertExpectations(t)
	})

	t.Run("Unknown Key", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{}, nil)

		_, err := store.FindByIdempotencyKey(context.Background(), "key-1")

		assert.ErrorIs(t, err, storage.ErrNotFound)
		mockClient.AssertExpectations(t)
	})
}
