package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/arenalabs/payout-pipeline/pkg/models"
	"github.com/arenalabs/payout-pipeline/pkg/storage"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

const roundEliminationsGSI = "round_id-index"

// RoundStore implements the round store on DynamoDB. SaveResolution uses a
// single TransactWriteItems call so the elimination log and the round state
// commit or cancel together.
type RoundStore struct {
	Client                DynamoDBAPI
	RoundsTableName       string
	EliminationsTableName string
}

// NewRoundStore creates a new RoundStore.
func NewRoundStore(client DynamoDBAPI, roundsTable, eliminationsTable string) *RoundStore {
	return &RoundStore{
		Client:                client,
		RoundsTableName:       roundsTable,
		EliminationsTableName: eliminationsTable,
	}
}

// Make sure we conform to the interface
var _ storage.RoundStore = (*RoundStore)(nil)

// FindRound retrieves a round by its ID.
func (s *RoundStore) FindRound(ctx context.Context, roundID string) (*models.Round, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"id": roundID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal round ID: %w", err)
	}

	result, err := s.Client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.RoundsTableName),
		Key:       key,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get round from DynamoDB: %w", err)
	}
	if result.Item == nil {
		return nil, storage.ErrNotFound
	}

	var round models.Round
	if err := attributevalue.UnmarshalMap(result.Item, &round); err != nil {
		return nil, fmt.Errorf("failed to unmarshal round: %w", err)
	}
	return &round, nil
}

// SaveResolution writes every elimination log entry and the round update in
// one atomic transaction, conditional on the round existing.
func (s *RoundStore) SaveResolution(ctx context.Context, roundID string, resolution *models.RoundResolution, state models.RoundState) error {
	now := time.Now()

	resolutionAV, err := attributevalue.Marshal(resolution)
	if err != nil {
		return fmt.Errorf("failed to marshal resolution: %w", err)
	}
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal timestamp: %w", err)
	}

	items := []types.TransactWriteItem{
		{
			// Operation 1: update the round state and store the resolution.
			Update: &types.Update{
				TableName: aws.String(s.RoundsTableName),
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: roundID},
				},
				UpdateExpression:    aws.String("SET #state = :state, resolution = :resolution, updated_at = :now"),
				ConditionExpression: aws.String("attribute_exists(id)"),
				ExpressionAttributeNames: map[string]string{
					"#state": "state",
				},
				ExpressionAttributeValues: map[string]types.AttributeValue{
					":state":      &types.AttributeValueMemberS{Value: string(state)},
					":resolution": resolutionAV,
					":now":        nowAV,
				},
			},
		},
	}

	for _, userID := range resolution.EliminatedPlayers {
		entry := models.EliminationLogEntry{
			EntryID:   uuid.New().String(),
			RoundID:   roundID,
			UserID:    userID,
			Reason:    "ELIMINATED_BY_ROUND",
			Timestamp: now,
		}
		entryAV, err := attributevalue.MarshalMap(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal elimination entry: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName:           aws.String(s.EliminationsTableName),
				Item:                entryAV,
				ConditionExpression: aws.String("attribute_not_exists(entry_id)"),
			},
		})
	}

	_, err = s.Client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		var tce *types.TransactionCanceledException
		if errors.As(err, &tce) {
			for _, reason := range tce.CancellationReasons {
				if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
					return storage.ErrNotFound
				}
			}
		}
		return fmt.Errorf("failed to execute resolution transaction: %w", err)
	}
	return nil
}

// ListEliminations returns the elimination log entries for a round.
func (s *RoundStore) ListEliminations(ctx context.Context, roundID string) ([]models.EliminationLogEntry, error) {
	result, err := s.Client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.EliminationsTableName),
		IndexName:              aws.String(roundEliminationsGSI),
		KeyConditionExpression: aws.String("round_id = :round_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":round_id": &types.AttributeValueMemberS{Value: roundID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query eliminations for round %s: %w", roundID, err)
	}

	var entries []models.EliminationLogEntry
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &entries); err != nil {
		return nil, fmt.Errorf("failed to unmarshal elimination entries: %w", err)
	}
	return entries, nil
}
