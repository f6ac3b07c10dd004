package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

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

// EmailRepository implements ports.EmailRepository. No secondary index
// serves the analytics stream, so every read path is a filtered scan.
type EmailRepository struct {
	client    DynamoDBAPI
	tableName string
	logger    *zap.Logger
}

// NewEmailRepository creates a new EmailRepository
func NewEmailRepository(client DynamoDBAPI, tableName string, logger *zap.Logger) *EmailRepository {
	return &EmailRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.EmailRepository = (*EmailRepository)(nil)

// CreateQueued writes one queued record per recipient. A failed write is
// logged and skipped so the remaining recipients still get their records.
func (r *EmailRepository) CreateQueued(ctx context.Context, records []*entities.EmailSendRecord) error {
	for _, record := range records {
		av, err := attributevalue.MarshalMap(newEmailItem(record))
		if err != nil {
			return fmt.Errorf("failed to marshal email record: %w", err)
		}

		input := &dynamodb.PutItemInput{
			TableName: aws.String(r.tableName),
			Item:      av,
		}
		if _, err := r.client.PutItem(ctx, input); err != nil {
			r.logger.Error("Failed to create email record",
				zap.Error(err),
				zap.String("emailID", record.ID),
				zap.String("campaignID", record.CampaignID),
			)
		}
	}
	return nil
}

// UpdateStatus moves one record to a new status. Used by the asynchronous
// delivery units, so failures here are the caller's to log, not retry.
func (r *EmailRepository) UpdateStatus(ctx context.Context, id string, status entities.EmailStatus, sentAt *time.Time, errorMessage *string) error {
	parts := []string{"#status = :status"}
	names := map[string]string{"#status": "status"}
	values := map[string]types.AttributeValue{
		":status": &types.AttributeValueMemberS{Value: string(status)},
	}

	if sentAt != nil {
		parts = append(parts, "sentAt = :sentAt")
		values[":sentAt"] = &types.AttributeValueMemberS{Value: sentAt.UTC().Format(time.RFC3339)}
	}
	if errorMessage != nil {
		parts = append(parts, "errorMessage = :errorMessage")
		values[":errorMessage"] = &types.AttributeValueMemberS{Value: *errorMessage}
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: emailPK(id)},
			"SK": &types.AttributeValueMemberS{Value: skAnalytics},
		},
		UpdateExpression:          aws.String("SET " + strings.Join(parts, ", ")),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	}

	if _, err := r.client.UpdateItem(ctx, input); err != nil {
		return apperrors.NewStoreUnavailableError("failed to update email status").WithCause(err)
	}
	return nil
}

// Analytics runs the scan-based filter/sort/paginate engine. Each round
// over-fetches, filters in memory, and re-sorts newest first; the page is
// truncated to pageSize after sorting. Total is a separate full pass with
// the same predicate, so it is exact at O(table size) cost.
func (r *EmailRepository) Analytics(ctx context.Context, filter queries.AnalyticsFilter, pageSize int, token *string) (*queries.AnalyticsPage, error) {
	pageSize = clampPageSize(pageSize)
	cursor := decodePageToken(token)

	var collected []*entities.EmailSendRecord
	for {
		limit := batchLimit(pageSize-len(collected), scanOverfetch)

		items, lastKey, err := r.scanAnalyticsPage(ctx, cursor, aws.Int32(limit))
		if err != nil {
			return nil, err
		}

		for _, raw := range items {
			record, ok := r.decodeRecord(raw)
			if !ok {
				continue
			}
			if matchesAnalyticsFilter(filter, record) {
				collected = append(collected, record)
			}
		}

		sort.SliceStable(collected, func(i, j int) bool {
			return collected[i].CreatedAt.After(collected[j].CreatedAt)
		})

		cursor = lastKey
		if len(cursor) == 0 {
			cursor = nil
			break
		}
		if len(collected) >= pageSize {
			break
		}
	}

	var nextToken *string
	if cursor != nil && len(collected) >= pageSize {
		nextToken = encodePageToken(cursor)
	}
	if len(collected) > pageSize {
		collected = collected[:pageSize]
	}

	total, err := r.countMatches(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &queries.AnalyticsPage{
		Records:   collected,
		Count:     len(collected),
		Total:     total,
		HasMore:   nextToken != nil,
		NextToken: nextToken,
	}, nil
}

// countMatches walks every analytics row applying the same predicate. No
// incremental counters are maintained for this.
func (r *EmailRepository) countMatches(ctx context.Context, filter queries.AnalyticsFilter) (int, error) {
	var (
		total  int
		cursor map[string]types.AttributeValue
	)
	for {
		items, lastKey, err := r.scanAnalyticsPage(ctx, cursor, nil)
		if err != nil {
			return 0, err
		}
		for _, raw := range items {
			record, ok := r.decodeRecord(raw)
			if !ok {
				continue
			}
			if matchesAnalyticsFilter(filter, record) {
				total++
			}
		}
		cursor = lastKey
		if len(cursor) == 0 {
			return total, nil
		}
	}
}

func (r *EmailRepository) scanAnalyticsPage(ctx context.Context, cursor map[string]types.AttributeValue, limit *int32) ([]map[string]types.AttributeValue, map[string]types.AttributeValue, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("SK").Equal(expression.Value(skAnalytics))).
		Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build scan expression: %w", err)
	}

	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     limit,
		ExclusiveStartKey:         cursor,
	}

	result, err := r.client.Scan(ctx, input)
	if err != nil {
		r.logger.Error("Analytics scan failed", zap.Error(err))
		return nil, nil, apperrors.NewStoreUnavailableError("failed to scan email records").WithCause(err)
	}

	return result.Items, result.LastEvaluatedKey, nil
}

func (r *EmailRepository) decodeRecord(raw map[string]types.AttributeValue) (*entities.EmailSendRecord, bool) {
	var item emailItem
	if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
		r.logger.Warn("Failed to unmarshal email item", zap.Error(err))
		return nil, false
	}
	return item.toRecord(), true
}

// matchesAnalyticsFilter ANDs every active dimension. The time range is
// inclusive on both ends; a record whose stored timestamp failed to parse
// (zero CreatedAt) can never match a date-bounded filter, which excludes
// malformed rows without raising.
func matchesAnalyticsFilter(f queries.AnalyticsFilter, rec *entities.EmailSendRecord) bool {
	if f.Status != nil && rec.Status != *f.Status {
		return false
	}
	if f.UTMCampaign != nil && (rec.UTMCampaign == nil || *rec.UTMCampaign != *f.UTMCampaign) {
		return false
	}
	if f.UTMSource != nil && (rec.UTMSource == nil || *rec.UTMSource != *f.UTMSource) {
		return false
	}
	if f.UTMMedium != nil && (rec.UTMMedium == nil || *rec.UTMMedium != *f.UTMMedium) {
		return false
	}
	if f.HasDateRange() {
		if rec.CreatedAt.IsZero() {
			return false
		}
		if f.StartDate != nil && rec.CreatedAt.Before(*f.StartDate) {
			return false
		}
		if f.EndDate != nil && rec.CreatedAt.After(*f.EndDate) {
			return false
		}
	}
	return true
}
