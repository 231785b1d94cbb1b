package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Create persists a new transaction and reserves its idempotency key in one
// atomic write. A taken key cancels the whole transaction and surfaces as
// storage.ErrConflict.
func (s *Store) Create(ctx context.Context, tx *models.Transaction) error {
	txAV, err := attributevalue.MarshalMap(tx)
	if err != nil {
		return fmt.Errorf("failed to marshal transaction: %w", err)
	}

	lockAV, err := attributevalue.MarshalMap(map[string]string{
		"id":             idempotencyLockID(tx.IdempotencyKey),
		"transaction_id": tx.Id,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal idempotency lock: %w", err)
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{
				// Operation 1: reserve the idempotency key.
				Put: &types.Put{
					TableName:           aws.String(s.TransactionsTableName),
					Item:                lockAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
			{
				// Operation 2: create the transaction record.
				Put: &types.Put{
					TableName:           aws.String(s.TransactionsTableName),
					Item:                txAV,
					ConditionExpression: aws.String("attribute_not_exists(id)"),
				},
			},
		},
	}

	_, err = s.Client.TransactWriteItems(ctx, input)
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			for _, reason := range tce.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return storage.ErrConflict
				}
			}
		}
		return fmt.Errorf("failed to execute create transaction: %w", err)
	}

	return nil
}
