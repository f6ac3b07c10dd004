package dynamodb

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// fakeDynamoDB is an in-memory single-table store implementing DynamoDBAPI.
// It understands exactly the expression shapes the repositories emit: ADD
// and SET update clauses, single-equality key conditions and scan filters,
// and transactional existence preconditions. Iteration order is the sorted
// composite key, so paging through Limit and ExclusiveStartKey is
// deterministic.
type fakeDynamoDB struct {
	mu    sync.Mutex
	items map[string]map[string]types.AttributeValue

	// When set, every call fails with this error.
	err error
}

func newFakeDynamoDB() *fakeDynamoDB {
	return &fakeDynamoDB{items: make(map[string]map[string]types.AttributeValue)}
}

func itemKey(item map[string]types.AttributeValue) string {
	return strValue(item["PK"]) + "|" + strValue(item["SK"])
}

func keyOf(key map[string]types.AttributeValue) string {
	return strValue(key["PK"]) + "|" + strValue(key["SK"])
}

func strValue(av types.AttributeValue) string {
	if s, ok := av.(*types.AttributeValueMemberS); ok {
		return s.Value
	}
	return ""
}

func copyItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}

func (f *fakeDynamoDB) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func (f *fakeDynamoDB) GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[keyOf(params.Key)]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: copyItem(item)}, nil
}

func (f *fakeDynamoDB) PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.items[itemKey(params.Item)] = copyItem(params.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeDynamoDB) UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	key := keyOf(params.Key)
	item, ok := f.items[key]
	if !ok {
		item = copyItem(params.Key)
		f.items[key] = item
	}

	expr := aws.ToString(params.UpdateExpression)
	switch {
	case strings.HasPrefix(expr, "ADD "):
		if err := applyAdd(item, expr[len("ADD "):], params.ExpressionAttributeNames, params.ExpressionAttributeValues); err != nil {
			return nil, err
		}
	case strings.HasPrefix(expr, "SET "):
		if err := applySet(item, expr[len("SET "):], params.ExpressionAttributeNames, params.ExpressionAttributeValues); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("fake: unsupported update expression %q", expr)
	}

	out := &dynamodb.UpdateItemOutput{}
	if params.ReturnValues == types.ReturnValueAllNew {
		out.Attributes = copyItem(item)
	}
	return out, nil
}

func applyAdd(item map[string]types.AttributeValue, clause string, names map[string]string, values map[string]types.AttributeValue) error {
	parts := strings.Fields(clause)
	if len(parts) != 2 {
		return fmt.Errorf("fake: unsupported ADD clause %q", clause)
	}
	attr := resolveName(parts[0], names)
	delta, err := numValue(values[parts[1]])
	if err != nil {
		return err
	}
	current := 0
	if existing, ok := item[attr]; ok {
		if current, err = numValue(existing); err != nil {
			return err
		}
	}
	item[attr] = &types.AttributeValueMemberN{Value: strconv.Itoa(current + delta)}
	return nil
}

func applySet(item map[string]types.AttributeValue, clause string, names map[string]string, values map[string]types.AttributeValue) error {
	for _, assign := range strings.Split(clause, ", ") {
		sides := strings.SplitN(assign, " = ", 2)
		if len(sides) != 2 {
			return fmt.Errorf("fake: unsupported SET clause %q", assign)
		}
		attr := resolveName(strings.TrimSpace(sides[0]), names)
		value, ok := values[strings.TrimSpace(sides[1])]
		if !ok {
			return fmt.Errorf("fake: missing value for %q", assign)
		}
		item[attr] = value
	}
	return nil
}

func resolveName(name string, names map[string]string) string {
	if strings.HasPrefix(name, "#") {
		return names[name]
	}
	return name
}

func numValue(av types.AttributeValue) (int, error) {
	n, ok := av.(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("fake: expected numeric attribute, got %T", av)
	}
	return strconv.Atoi(n.Value)
}

// Query serves single-equality key conditions against a sparse index: rows
// missing the partition attribute are invisible, matches come back ordered
// by the index sort attribute.
func (f *fakeDynamoDB) Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	cond := aws.ToString(params.KeyConditionExpression)
	sides := strings.SplitN(cond, " = ", 2)
	if len(sides) != 2 {
		return nil, fmt.Errorf("fake: unsupported key condition %q", cond)
	}
	pkAttr := resolveName(sides[0], params.ExpressionAttributeNames)
	pkValue := strValue(params.ExpressionAttributeValues[strings.TrimSpace(sides[1])])
	skAttr := strings.TrimSuffix(pkAttr, "_PK") + "_SK"

	var matched []map[string]types.AttributeValue
	for _, item := range f.items {
		if strValue(item[pkAttr]) == pkValue {
			matched = append(matched, item)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := strValue(matched[i][skAttr]), strValue(matched[j][skAttr])
		if a != b {
			return a < b
		}
		return itemKey(matched[i]) < itemKey(matched[j])
	})

	items, lastKey := window(matched, params.ExclusiveStartKey, params.Limit)
	return &dynamodb.QueryOutput{Items: items, LastEvaluatedKey: lastKey, Count: int32(len(items))}, nil
}

// Scan walks the whole table in composite-key order. Like the real store,
// Limit bounds rows examined before the filter runs, so a filtered scan can
// return fewer rows than Limit while still handing back a cursor.
func (f *fakeDynamoDB) Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	all := make([]map[string]types.AttributeValue, 0, len(f.items))
	for _, item := range f.items {
		all = append(all, item)
	}
	sort.Slice(all, func(i, j int) bool { return itemKey(all[i]) < itemKey(all[j]) })

	examined, lastKey := window(all, params.ExclusiveStartKey, params.Limit)

	items := examined
	if params.FilterExpression != nil {
		filter := aws.ToString(params.FilterExpression)
		sides := strings.SplitN(filter, " = ", 2)
		if len(sides) != 2 {
			return nil, fmt.Errorf("fake: unsupported filter %q", filter)
		}
		attr := resolveName(sides[0], params.ExpressionAttributeNames)
		want := strValue(params.ExpressionAttributeValues[strings.TrimSpace(sides[1])])

		items = nil
		for _, item := range examined {
			if strValue(item[attr]) == want {
				items = append(items, item)
			}
		}
	}

	return &dynamodb.ScanOutput{Items: items, LastEvaluatedKey: lastKey, Count: int32(len(items))}, nil
}

// window applies ExclusiveStartKey and Limit over an ordered slice and
// returns the page plus the cursor for the next one.
func window(ordered []map[string]types.AttributeValue, start map[string]types.AttributeValue, limit *int32) ([]map[string]types.AttributeValue, map[string]types.AttributeValue) {
	begin := 0
	if len(start) > 0 {
		resume := keyOf(start)
		for i, item := range ordered {
			if itemKey(item) == resume {
				begin = i + 1
				break
			}
		}
	}

	end := len(ordered)
	if limit != nil && begin+int(*limit) < end {
		end = begin + int(*limit)
	}

	page := make([]map[string]types.AttributeValue, 0, end-begin)
	for _, item := range ordered[begin:end] {
		page = append(page, copyItem(item))
	}

	var lastKey map[string]types.AttributeValue
	if end < len(ordered) && len(page) > 0 {
		last := ordered[end-1]
		lastKey = map[string]types.AttributeValue{
			"PK": last["PK"],
			"SK": last["SK"],
		}
	}
	return page, lastKey
}

// TransactWriteItems validates every precondition first and applies the
// puts only when all pass, mirroring the store's all-or-nothing contract.
func (f *fakeDynamoDB) TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}

	reasons := make([]types.CancellationReason, len(params.TransactItems))
	failed := false
	seen := make(map[string]struct{})

	for i, ti := range params.TransactItems {
		reasons[i] = types.CancellationReason{Code: aws.String("None")}
		switch {
		case ti.Put != nil:
			key := itemKey(ti.Put.Item)
			_, exists := f.items[key]
			_, dup := seen[key]
			seen[key] = struct{}{}
			if aws.ToString(ti.Put.ConditionExpression) == "attribute_not_exists(PK)" && (exists || dup) {
				reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
				failed = true
			}
		case ti.ConditionCheck != nil:
			key := keyOf(ti.ConditionCheck.Key)
			if _, exists := f.items[key]; !exists {
				reasons[i] = types.CancellationReason{Code: aws.String("ConditionalCheckFailed")}
				failed = true
			}
		default:
			return nil, fmt.Errorf("fake: unsupported transact item at index %d", i)
		}
	}

	if failed {
		return nil, &types.TransactionCanceledException{
			Message:             aws.String("Transaction cancelled"),
			CancellationReasons: reasons,
		}
	}

	for _, ti := range params.TransactItems {
		if ti.Put != nil {
			f.items[itemKey(ti.Put.Item)] = copyItem(ti.Put.Item)
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

var _ DynamoDBAPI = (*fakeDynamoDB)(nil)
