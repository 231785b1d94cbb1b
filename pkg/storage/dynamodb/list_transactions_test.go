package dynamodb

import (
	"context"
	"testing"
	"time"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage/dynamodb/mocks"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func queryOutput(t *testing.T, txs ...models.Transaction) *dynamodb.QueryOutput {
	t.Helper()
	out := &dynamodb.QueryOutput{}
	for _, tx := range txs {
		av, err := attributevalue.MarshalMap(tx)
		require.NoError(t, err)
		out.Items = append(out.Items, av)
	}
	return out
}

func TestListByStatus(t *testing.T) {
	base := time.Now().Add(-time.Hour)

	t.Run("Merges Statuses Oldest First", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		var queried []*dynamodb.QueryInput
		mockClient.On("Query", mock.Anything, mock.Anything).Once().Run(func(args mock.Arguments) {
			queried = append(queried, args.Get(1).(*dynamodb.QueryInput))
		}).Return(queryOutput(t,
			models.Transaction{Id: "tx-new", Status: models.StatusQueued, UpdatedAt: base.Add(10 * time.Minute)},
		), nil)
		mockClient.On("Query", mock.Anything, mock.Anything).Once().Run(func(args mock.Arguments) {
			queried = append(queried, args.Get(1).(*dynamodb.QueryInput))
		}).Return(queryOutput(t,
			models.Transaction{Id: "tx-old", Status: models.StatusSubmitted, UpdatedAt: base},
		), nil)

		got, err := store.ListByStatus(context.Background(), []models.TransactionStatus{models.StatusQueued, models.StatusSubmitted}, 10)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "tx-old", got[0].Id)
		assert.Equal(t, "tx-new", got[1].Id)

		require.Len(t, queried, 2)
		for _, q := range queried {
			assert.Equal(t, statusUpdatedAtGSI, *q.IndexName)
			assert.True(t, *q.ScanIndexForward)
		}
		mockClient.AssertExpectations(t)
	})

	t.Run("Applies Limit After Merge", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, TransactionsTableName: "transactions"}

		mockClient.On("Query", mock.Anything, mock.Anything).Once().Return(queryOutput(t,
			models.Transaction{Id: "tx-1", Status: models.StatusQueued, UpdatedAt: base},
			models.Transaction{Id: "tx-2", Status: models.StatusQueued, UpdatedAt: base.Add(time.Minute)},
		), nil)
		mockClient.On("Query", mock.Anything, mock.Anything).Once().Return(queryOutput(t,
			models.Transaction{Id: "tx-3", Status: models.StatusSubmitted, UpdatedAt: base.Add(30 * time.Second)},
		), nil)

		got, err := store.ListByStatus(context.Background(), []models.TransactionStatus{models.StatusQueued, models.StatusSubmitted}, 2)

		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "tx-1", got[0].Id)
		assert.Equal(t, "tx-3", got[1].Id)
		mockClient.AssertExpectations(t)
	})
}
