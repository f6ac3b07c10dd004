package dynamodb

import (
	"context"
	"errors"
	"fmt"

	"communityapp/application/ports"
	"communityapp/domain/core/entities"
	apperrors "communityapp/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// GatheringRepository implements ports.GatheringRepository on the single
// table. The create path is one atomic TransactWriteItems call; counter
// maintenance on the referenced persons happens afterwards, outside the
// transaction, in PersonRepository.
type GatheringRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewGatheringRepository creates a new GatheringRepository
func NewGatheringRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *GatheringRepository {
	return &GatheringRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.GatheringRepository = (*GatheringRepository)(nil)

// CreateWithParticipants submits one transaction holding the gathering
// row, every relationship edge, and an existence check per referenced
// person. Either everything lands or nothing does. Duplicate ids within a
// participant list would collide on an edge key, so they are rejected as
// the same conflicting-precondition failure the store would report.
func (r *GatheringRepository) CreateWithParticipants(ctx context.Context, gathering *entities.Gathering, hostIDs, attendeeIDs []string) error {
	if hasDuplicates(hostIDs) || hasDuplicates(attendeeIDs) {
		return apperrors.NewTransactionError("user not found or duplicate entry")
	}

	gatheringAV, err := attributevalue.MarshalMap(newGatheringItem(gathering))
	if err != nil {
		return fmt.Errorf("failed to marshal gathering: %w", err)
	}

	transactItems := []types.TransactWriteItem{
		{
			Put: &types.Put{
				TableName: aws.String(r.tableName),
				Item:      gatheringAV,
			},
		},
	}

	for _, hostID := range hostIDs {
		edgeAV, err := attributevalue.MarshalMap(newHostEdgeItem(gathering.ID, hostID))
		if err != nil {
			return fmt.Errorf("failed to marshal host edge: %w", err)
		}
		transactItems = append(transactItems, r.edgePut(edgeAV))
	}

	for _, attendeeID := range attendeeIDs {
		edgeAV, err := attributevalue.MarshalMap(newAttendsEdgeItem(gathering.ID, attendeeID))
		if err != nil {
			return fmt.Errorf("failed to marshal attends edge: %w", err)
		}
		transactItems = append(transactItems, r.edgePut(edgeAV))
	}

	// One existence check per distinct person. The store forbids two
	// operations on the same item in a single transaction, and a person may
	// appear as both host and attendee.
	for _, personID := range uniqueIDs(hostIDs, attendeeIDs) {
		transactItems = append(transactItems, r.personExistsCheck(personID))
	}

	input := &dynamodb.TransactWriteItemsInput{
		TransactItems: transactItems,
	}

	if _, err := r.client.TransactWriteItems(ctx, input); err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) {
			r.logger.Warn("Gathering transaction canceled",
				zap.String("gatheringID", gathering.ID),
				zap.Int("items", len(transactItems)),
			)
			for _, reason := range canceled.CancellationReasons {
				if aws.ToString(reason.Code) == "ConditionalCheckFailed" {
					return apperrors.NewTransactionError("user not found or duplicate entry").WithCause(err)
				}
			}
			return apperrors.NewTransactionError("conditional check failed").WithCause(err)
		}
		r.logger.Error("Gathering transaction failed",
			zap.Error(err),
			zap.String("gatheringID", gathering.ID),
		)
		return apperrors.NewStoreUnavailableError("failed to create gathering").WithCause(err)
	}

	r.logger.Info("Gathering created",
		zap.String("gatheringID", gathering.ID),
		zap.Int("hosts", len(hostIDs)),
		zap.Int("attendees", len(attendeeIDs)),
	)

	return nil
}

// ListParticipants queries the reverse-lookup projection: every edge of a
// gathering regardless of which partition the edge row lives in.
func (r *GatheringRepository) ListParticipants(ctx context.Context, gatheringID string) ([]*entities.Participant, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(gsiParticipants),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": "GSI_GatheringParticipants_PK",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: gatheringPK(gatheringID)},
		},
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to list participants").WithCause(err)
	}

	participants := make([]*entities.Participant, 0, len(result.Items))
	for _, raw := range result.Items {
		var item edgeItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			r.logger.Warn("Failed to unmarshal edge item", zap.Error(err))
			continue
		}
		participants = append(participants, item.toParticipant())
	}

	return participants, nil
}

// edgePut guards against an edge already existing for the same
// (gathering, person, role): the edge key must be fresh.
func (r *GatheringRepository) edgePut(item map[string]types.AttributeValue) types.TransactWriteItem {
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(r.tableName),
			Item:                item,
			ConditionExpression: aws.String("attribute_not_exists(PK)"),
		},
	}
}

// personExistsCheck asserts the referenced profile row is present without
// writing it.
func (r *GatheringRepository) personExistsCheck(personID string) types.TransactWriteItem {
	return types.TransactWriteItem{
		ConditionCheck: &types.ConditionCheck{
			TableName: aws.String(r.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: personPK(personID)},
				"SK": &types.AttributeValueMemberS{Value: skProfile},
			},
			ConditionExpression: aws.String("attribute_exists(PK)"),
		},
	}
}

func uniqueIDs(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, id := range list {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

func hasDuplicates(ids []string) bool {
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
