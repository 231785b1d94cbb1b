package dynamodb

import (
	"context"

	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

//go:generate go tool mockery --name DynamoDBAPI --output mocks --outpkg mocks

// DynamoDBAPI is the subset of the DynamoDB client the store uses.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// Store implements the TransactionRepository interface using AWS DynamoDB.
// Idempotency keys are enforced with a lock item written in the same
// transaction as the record itself.
type Store struct {
	Client                DynamoDBAPI
	TransactionsTableName string
}

// New creates a new Store.
func New(client DynamoDBAPI, transactionsTable string) *Store {
	return &Store{
		Client:                client,
		TransactionsTableName: transactionsTable,
	}
}

// Make sure we conform to the interface
var _ storage.TransactionRepository = (*Store)(nil)

// idempotencyLockID is the item key that reserves an idempotency key.
func idempotencyLockID(key string) string {
	return "idempotency#" + key
}
