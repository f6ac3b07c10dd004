package dynamodb

import (
	"context"
	"fmt"

	"communityapp/application/ports"
	"communityapp/application/queries"
	"communityapp/domain/core/entities"
	apperrors "communityapp/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// PersonRepository implements ports.PersonRepository on the single table.
type PersonRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewPersonRepository creates a new PersonRepository
func NewPersonRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *PersonRepository {
	return &PersonRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// Create writes the profile row with all projection keys derived from the
// current attribute values.
func (r *PersonRepository) Create(ctx context.Context, person *entities.Person) error {
	item := newPersonItem(person)

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal person: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}

	if _, err := r.client.PutItem(ctx, input); err != nil {
		r.logger.Error("Failed to save person",
			zap.Error(err),
			zap.String("personID", person.ID),
		)
		return apperrors.NewStoreUnavailableError("failed to save person").WithCause(err)
	}

	r.logger.Info("Person created",
		zap.String("personID", person.ID),
		zap.String("email", person.Email),
	)

	return nil
}

// GetByID retrieves one profile row.
func (r *PersonRepository) GetByID(ctx context.Context, id string) (*entities.Person, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: personPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skProfile},
		},
	}

	result, err := r.client.GetItem(ctx, input)
	if err != nil {
		return nil, apperrors.NewStoreUnavailableError("failed to get person").WithCause(err)
	}
	if len(result.Item) == 0 {
		return nil, apperrors.NewNotFoundError("person")
	}

	var item personItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal person: %w", err)
	}

	return item.toPerson(), nil
}

// Filter runs the paginated query engine: one index query or scan per
// round, residual filters in memory, over-fetch sized to the page deficit.
// A page may slightly exceed pageSize when the final batch over-delivers;
// truncating would open gaps between pages, so the surplus is kept.
func (r *PersonRepository) Filter(ctx context.Context, filter queries.PersonFilter, pageSize int, token *string) ([]*entities.Person, *string, error) {
	pageSize = clampPageSize(pageSize)
	strategy := chooseStrategy(filter)
	cursor := decodePageToken(token)

	r.logger.Debug("Resolved filter strategy",
		zap.String("type", string(strategy.Type)),
		zap.String("primary", string(strategy.Primary)),
		zap.String("index", strategy.IndexName),
	)

	var collected []*entities.Person
	for {
		limit := batchLimit(pageSize-len(collected), strategy.Overfetch)

		var (
			items   []map[string]types.AttributeValue
			lastKey map[string]types.AttributeValue
			err     error
		)
		if strategy.Type == strategyQuery {
			items, lastKey, err = r.queryIndexPage(ctx, strategy, cursor, limit)
		} else {
			items, lastKey, err = r.scanProfilePage(ctx, cursor, limit)
		}
		if err != nil {
			return nil, nil, err
		}

		for _, raw := range items {
			var item personItem
			if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
				r.logger.Warn("Failed to unmarshal person item", zap.Error(err))
				continue
			}
			person := item.toPerson()
			if r.matches(filter, person) {
				collected = append(collected, person)
			}
		}

		cursor = lastKey
		if len(cursor) == 0 {
			cursor = nil
			break
		}
		if len(collected) >= pageSize {
			break
		}
	}

	// Hand back a token only when the page filled up AND the store still
	// has data; never at an exact end-of-data boundary.
	var nextToken *string
	if cursor != nil && len(collected) >= pageSize {
		nextToken = encodePageToken(cursor)
	}

	return collected, nextToken, nil
}

func (r *PersonRepository) queryIndexPage(ctx context.Context, strategy queryStrategy, cursor map[string]types.AttributeValue, limit int32) ([]map[string]types.AttributeValue, map[string]types.AttributeValue, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(strategy.IndexName),
		KeyConditionExpression: aws.String("#pk = :pk"),
		ExpressionAttributeNames: map[string]string{
			"#pk": strategy.PartitionAttr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: strategy.PartitionValue},
		},
		Limit:             aws.Int32(limit),
		ExclusiveStartKey: cursor,
	}

	result, err := r.client.Query(ctx, input)
	if err != nil {
		r.logger.Error("Index query failed",
			zap.Error(err),
			zap.String("index", strategy.IndexName),
		)
		return nil, nil, apperrors.NewStoreUnavailableError("failed to query persons").WithCause(err)
	}

	return result.Items, result.LastEvaluatedKey, nil
}

func (r *PersonRepository) scanProfilePage(ctx context.Context, cursor map[string]types.AttributeValue, limit int32) ([]map[string]types.AttributeValue, map[string]types.AttributeValue, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("SK").Equal(expression.Value(skProfile))).
		Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(limit),
		ExclusiveStartKey:         cursor,
	}

	result, err := r.client.Scan(ctx, input)
	if err != nil {
		r.logger.Error("Profile scan failed", zap.Error(err))
		return nil, nil, apperrors.NewStoreUnavailableError("failed to scan persons").WithCause(err)
	}

	return result.Items, result.LastEvaluatedKey, nil
}

// matches applies the full filter predicate. Dimensions guaranteed by the
// chosen index re-verify for free, so one predicate serves both paths.
func (r *PersonRepository) matches(f queries.PersonFilter, p *entities.Person) bool {
	if f.Company != nil && (p.Company == nil || *p.Company != *f.Company) {
		return false
	}
	if f.JobTitle != nil && (p.JobTitle == nil || *p.JobTitle != *f.JobTitle) {
		return false
	}
	if f.HasLocation() {
		if !p.HasLocation() || *p.City != *f.City || *p.State != *f.State {
			return false
		}
	}
	if !f.HostedCount.Contains(p.HostedCount) {
		return false
	}
	if !f.AttendedCount.Contains(p.AttendedCount) {
		return false
	}
	return true
}

var _ ports.PersonRepository = (*PersonRepository)(nil)

// IncrementHostedCount bumps the hosted counter atomically and then
// rewrites the hosted-count projection key from the returned value. The
// two updates are separate writes: a crash in between leaves the
// projection stale until the next increment rewrites it.
func (r *PersonRepository) IncrementHostedCount(ctx context.Context, personID string) (int, error) {
	newCount, err := r.addToCounter(ctx, personID, "hostedCount")
	if err != nil {
		return 0, err
	}

	update := &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              r.profileKey(personID),
		UpdateExpression: aws.String("SET GSI_ByHostedCount_SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sk": &types.AttributeValueMemberS{Value: hostedCountSort(newCount, personID)},
		},
	}
	if _, err := r.client.UpdateItem(ctx, update); err != nil {
		return newCount, apperrors.NewStoreUnavailableError("failed to rewrite hosted count projection").WithCause(err)
	}

	return newCount, nil
}

// IncrementAttendedCount is the attended-side counterpart; the activity
// projection key mirrors the attended sort key and is rewritten together
// with it.
func (r *PersonRepository) IncrementAttendedCount(ctx context.Context, personID string) (int, error) {
	newCount, err := r.addToCounter(ctx, personID, "attendedCount")
	if err != nil {
		return 0, err
	}

	sortKey := attendedCountSort(newCount, personID)
	update := &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              r.profileKey(personID),
		UpdateExpression: aws.String("SET GSI_ByAttendedCount_SK = :sk1, GSI_ByActivity_SK = :sk2"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":sk1": &types.AttributeValueMemberS{Value: sortKey},
			":sk2": &types.AttributeValueMemberS{Value: sortKey},
		},
	}
	if _, err := r.client.UpdateItem(ctx, update); err != nil {
		return newCount, apperrors.NewStoreUnavailableError("failed to rewrite attended count projection").WithCause(err)
	}

	return newCount, nil
}

func (r *PersonRepository) addToCounter(ctx context.Context, personID, attr string) (int, error) {
	input := &dynamodb.UpdateItemInput{
		TableName:        aws.String(r.tableName),
		Key:              r.profileKey(personID),
		UpdateExpression: aws.String("ADD #counter :inc"),
		ExpressionAttributeNames: map[string]string{
			"#counter": attr,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inc": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueAllNew,
	}

	result, err := r.client.UpdateItem(ctx, input)
	if err != nil {
		return 0, apperrors.NewStoreUnavailableError("failed to increment counter").WithCause(err)
	}

	var newCount int
	if err := attributevalue.Unmarshal(result.Attributes[attr], &newCount); err != nil {
		return 0, fmt.Errorf("failed to read new %s value: %w", attr, err)
	}

	return newCount, nil
}

func (r *PersonRepository) profileKey(personID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: personPK(personID)},
		"SK": &types.AttributeValueMemberS{Value: skProfile},
	}
}
