package dynamodb

import (
	"context"
	"fmt"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// FindByID retrieves a transaction by its ID.
func (s *Store) FindByID(ctx context.Context, id string) (*models.Transaction, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transaction ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrNotFound
	}

	var tx models.Transaction
	if err := attributevalue.UnmarshalMap(result.Item, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transaction: %w", err)
	}
	return &tx, nil
}

// FindByIdempotencyKey resolves the idempotency lock item, then fetches the
// transaction it points at.
func (s *Store) FindByIdempotencyKey(ctx context.Context, key string) (*models.Transaction, error) {
	lockKey, err := attributevalue.MarshalMap(map[string]string{"id": idempotencyLockID(key)})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal idempotency key: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key:       lockKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency lock from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrNotFound
	}

	var lock struct {
		TransactionID string `dynamodbav:"transaction_id"`
	}
	if err := attributevalue.UnmarshalMap(result.Item, &lock); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency lock: %w", err)
	}

	return s.FindByID(ctx, lock.TransactionID)
}
