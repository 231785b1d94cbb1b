package dynamodb

import (
	"context"
	"fmt"
	"sort"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// GSI keyed by status with updated_at as the sort key; querying ascending
// gives oldest-updated-first, so no transaction is starved behind newer work.
const statusUpdatedAtGSI = "status-updated_at-index"

// ListByStatus queries each requested status and merges the results in
// UpdatedAt ascending order, bounded by limit.
func (s *Store) ListByStatus(ctx context.Context, statuses []models.TransactionStatus, limit int) ([]models.Transaction, error) {
	var merged []models.Transaction

	for _, status := range statuses {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.TransactionsTableName),
			IndexName:              aws.String(statusUpdatedAtGSI),
			KeyConditionExpression: aws.String("#status = :status"),
			ExpressionAttributeNames: map[string]string{
				"#status": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":status": &types.AttributeValueMemberS{Value: string(status)},
			},
			ScanIndexForward: aws.Bool(true),
		}
		if limit > 0 {
			input.Limit = aws.Int32(int32(limit))
		}

		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query transactions with status %s: %w", status, err)
		}

		var batch []models.Transaction
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &batch); err != nil {
			return nil, fmt.Errorf("failed to unmarshal transactions: %w", err)
		}
		merged = append(merged, batch...)
	}

	sort.Slice(merged, func(i, j int) bool {
		return merged[i].UpdatedAt.Before(merged[j].UpdatedAt)
	})
	if limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}
