package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Update atomically applies a partial update. When the update changes the
// status, a condition expression rejects any write that would move the
// record out of a terminal status; re-writing the same status (dead twice)
// passes, which keeps dead-lettering idempotent.
func (s *Store) Update(ctx context.Context, id string, update storage.TransactionUpdate) (*models.Transaction, error) {
	sets := []string{"updated_at = :now"}
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	nowAV, err := attributevalue.Marshal(time.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal timestamp: %w", err)
	}
	values[":now"] = nowAV

	condition := "attribute_exists(id)"

	if update.Status != nil {
		sets = append(sets, "#status = :status")
		names["#status"] = "status"
		values[":status"] = &types.AttributeValueMemberS{Value: string(*update.Status)}
		values[":confirmed"] = &types.AttributeValueMemberS{Value: string(models.StatusConfirmed)}
		values[":failed"] = &types.AttributeValueMemberS{Value: string(models.StatusFailed)}
		values[":dead"] = &types.AttributeValueMemberS{Value: string(models.StatusDead)}
		condition += " AND (NOT #status IN (:confirmed, :failed, :dead) OR #status = :status)"
	}
	if update.SignedEnvelope != nil {
		sets = append(sets, "signed_envelope = :signed_envelope")
		values[":signed_envelope"] = &types.AttributeValueMemberS{Value: *update.SignedEnvelope}
	}
	if update.TxHash != nil {
		sets = append(sets, "tx_hash = :tx_hash")
		values[":tx_hash"] = &types.AttributeValueMemberS{Value: *update.TxHash}
	}
	if update.ErrorMessage != nil {
		sets = append(sets, "error_message = :error_message")
		values[":error_message"] = &types.AttributeValueMemberS{Value: *update.ErrorMessage}
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.TransactionsTableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String(condition),
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	}
	if len(names) > 0 {
		input.ExpressionAttributeNames = names
	}

	result, err := s.Client.UpdateItem(ctx, input)
	if err != nil {
		var condFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condFailed) {
			// Either the record is missing or it is already terminal.
			if _, ferr := s.FindByID(ctx, id); errors.Is(ferr, storage.ErrNotFound) {
				return nil, storage.ErrNotFound
			}
			return nil, storage.ErrTerminalState
		}
		return nil, fmt.Errorf("failed to update transaction %s: %w", id, err)
	}

	var tx models.Transaction
	if err := attributevalue.UnmarshalMap(result.Attributes, &tx); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated transaction: %w", err)
	}
	return &tx, nil
}
