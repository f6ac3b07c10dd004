package dynamodb

import (
	"encoding/base64"
	"encoding/json"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Continuation tokens are opaque to callers: base64 over the JSON form of
// the store's LastEvaluatedKey. All key attributes in this table are
// strings, so the encoding round-trips exactly and stays stable across
// process restarts within one table generation.

// encodePageToken serializes a store cursor, or returns nil when the store
// signalled end of data.
func encodePageToken(key map[string]types.AttributeValue) *string {
	if len(key) == 0 {
		return nil
	}
	var plain map[string]interface{}
	if err := attributevalue.UnmarshalMap(key, &plain); err != nil {
		return nil
	}
	raw, err := json.Marshal(plain)
	if err != nil {
		return nil
	}
	token := base64.URLEncoding.EncodeToString(raw)
	return &token
}

// decodePageToken reverses encodePageToken. A malformed token is treated as
// absent, restarting from the first page, rather than surfacing an error.
func decodePageToken(token *string) map[string]types.AttributeValue {
	if token == nil || *token == "" {
		return nil
	}
	raw, err := base64.URLEncoding.DecodeString(*token)
	if err != nil {
		return nil
	}
	var plain map[string]interface{}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil
	}
	key, err := attributevalue.MarshalMap(plain)
	if err != nil || len(key) == 0 {
		return nil
	}
	return key
}

// clampPageSize bounds a requested page size to [1, 100].
func clampPageSize(pageSize int) int {
	if pageSize < 1 {
		return 1
	}
	if pageSize > 100 {
		return 100
	}
	return pageSize
}

// batchLimit sizes one over-fetch round: enough raw rows to likely survive
// residual filtering, capped at the store's page ceiling.
func batchLimit(remaining, overfetch int) int32 {
	limit := remaining * overfetch
	if limit > 100 {
		limit = 100
	}
	if limit < 1 {
		limit = 1
	}
	return int32(limit)
}
