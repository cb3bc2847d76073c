package storage

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/johnwmail/flashclip/internal/ident"
)

// dynamoAPI is the subset of the DynamoDB client used by DynamoStore
type dynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// DynamoStore implements Store using DynamoDB. The table must have TTL
// enabled on the expires_at attribute (unix seconds, rounded up). DynamoDB
// deletes expired items lazily, so reads also filter on expires_at_ms.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	now       func() time.Time
}

// NewDynamoStore creates a new DynamoDB storage backend
func NewDynamoStore(ctx context.Context, tableName, region string) (*DynamoStore, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &DynamoStore{
		client:    dynamodb.NewFromConfig(cfg),
		tableName: tableName,
		now:       time.Now,
	}, nil
}

// Put saves the value with its expiry in seconds for the TTL sweeper and
// in milliseconds for reads
func (d *DynamoStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	expiresAtMs := d.now().Add(ttl).UnixMilli()
	expiresAt := (expiresAtMs + 999) / 1000

	_, err := d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item: map[string]types.AttributeValue{
			"id":         &types.AttributeValueMemberS{Value: key},
			"value":      &types.AttributeValueMemberS{Value: string(value)},
			"expires_at":    &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAt, 10)},
			"expires_at_ms": &types.AttributeValueMemberN{Value: strconv.FormatInt(expiresAtMs, 10)},
		},
	})
	if err != nil {
		return fmt.Errorf("dynamodb put %s: %w", ident.Redact(key), err)
	}
	return nil
}

// Get retrieves a live value by key
func (d *DynamoStore) Get(ctx context.Context, key string) ([]byte, error) {
	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(d.tableName),
		Key:            d.itemKey(key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get %s: %w", ident.Redact(key), err)
	}
	return d.liveValue(result.Item), nil
}

// Take deletes the item and returns its previous value in one request
func (d *DynamoStore) Take(ctx context.Context, key string) ([]byte, error) {
	result, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(d.tableName),
		Key:          d.itemKey(key),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb take %s: %w", ident.Redact(key), err)
	}
	return d.liveValue(result.Attributes), nil
}

// Delete removes an item from DynamoDB
func (d *DynamoStore) Delete(ctx context.Context, key string) error {
	_, err := d.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(d.tableName),
		Key:       d.itemKey(key),
	})
	if err != nil {
		return fmt.Errorf("dynamodb delete %s: %w", ident.Redact(key), err)
	}
	return nil
}

// Close is a no-op for DynamoDB
func (d *DynamoStore) Close() error {
	return nil
}

func (d *DynamoStore) itemKey(key string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: key},
	}
}

// liveValue extracts the value from an item, treating expired or
// malformed items as absent
func (d *DynamoStore) liveValue(item map[string]types.AttributeValue) []byte {
	if item == nil {
		return nil
	}

	if expiresAtMs, ok := numberAttr(item, "expires_at_ms"); ok {
		if d.now().UnixMilli() >= expiresAtMs {
			return nil
		}
	} else if expiresAt, ok := numberAttr(item, "expires_at"); ok {
		if d.now().UnixMilli() >= expiresAt*1000 {
			return nil
		}
	}

	value, ok := item["value"].(*types.AttributeValueMemberS)
	if !ok {
		return nil
	}
	return []byte(value.Value)
}

func numberAttr(item map[string]types.AttributeValue, name string) (int64, bool) {
	attr, ok := item[name].(*types.AttributeValueMemberN)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(attr.Value, 10, 64)
	return n, err == nil
}
