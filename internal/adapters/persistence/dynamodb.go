package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jsamuelsen/quote-engine/internal/adapters/wire"
	"github.com/jsamuelsen/quote-engine/internal/domain"
	"github.com/jsamuelsen/quote-engine/internal/platform/config"
)

const dynamoStoreName = "dynamodb"

// DynamoAPI is the subset of *dynamodb.Client the store calls.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}

// quotationItem is the table layout. PK: id (string).
type quotationItem struct {
	ID         string  `dynamodbav:"id"`
	Document   string  `dynamodbav:"document"`
	GrandTotal float64 `dynamodbav:"grand_total"`
	UpdatedAt  string  `dynamodbav:"updated_at"`
}

// DynamoStore persists quotations as single DynamoDB items.
type DynamoStore struct {
	api   DynamoAPI
	table string
	now   func() time.Time
}

// NewDynamoStore creates a store over api.
func NewDynamoStore(api DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{api: api, table: table, now: time.Now}
}

// NewDynamoConfig builds an AWS config from region and static credentials.
// DynamoDB Local ignores the credentials but the SDK still requires them.
func NewDynamoConfig(ctx context.Context, cfg *config.PersistenceConfig) (aws.Config, error) {
	accessKey, secretKey := cfg.AccessKeyID, cfg.SecretAccessKey
	if accessKey == "" {
		accessKey = "local"
	}
	if secretKey == "" {
		secretKey = "local"
	}

	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
	)
}

// NewDynamoClient creates a client, pointed at cfg.Endpoint when set.
func NewDynamoClient(ctx context.Context, cfg *config.PersistenceConfig) (*dynamodb.Client, error) {
	awsCfg, err := NewDynamoConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}

// Name implements ports.QuotationStore.
func (s *DynamoStore) Name() string { return dynamoStoreName }

// Sync puts the item for q.ID, replacing any previous one.
func (s *DynamoStore) Sync(ctx context.Context, q *domain.Quotation) error {
	if q == nil {
		return domain.NewValidationError("quotation", "is required")
	}

	doc, err := wire.Marshal(q)
	if err != nil {
		return fmt.Errorf("encoding quotation %s: %w", q.ID, err)
	}

	av, err := attributevalue.MarshalMap(quotationItem{
		ID:         q.ID,
		Document:   string(doc),
		GrandTotal: q.GrandTotal,
		UpdatedAt:  s.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("marshaling item %s: %w", q.ID, err)
	}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return domain.NewUnavailableError(dynamoStoreName, err.Error())
	}

	return nil
}

// Load reads the item for id with a consistent read.
func (s *DynamoStore) Load(ctx context.Context, id string) (*domain.Quotation, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, domain.NewUnavailableError(dynamoStoreName, err.Error())
	}

	if len(out.Item) == 0 {
		return nil, domain.NewNotFoundError("quotation", id)
	}

	var it quotationItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshaling item %s: %w", id, err)
	}

	q, err := wire.Unmarshal([]byte(it.Document))
	if err != nil {
		return nil, fmt.Errorf("decoding quotation %s: %w", id, err)
	}

	q.ID = it.ID

	return q, nil
}

// Check describes the table.
func (s *DynamoStore) Check(ctx context.Context) error {
	_, err := s.api.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})

	return err
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *DynamoStore) Close() error { return nil }
