package dal

import (
	"context"
	"errors"
	"fmt"

	"prcontacts-backend/models"
	"prcontacts-backend/utils/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
)

// ErrConditionFailed is returned when a conditional write finds no item to replace
var ErrConditionFailed = errors.New("conditional check failed")

type DynamoDBClient struct {
	client *dynamodb.Client
	config *models.Config
	logger logger.Logger
}

// NewDynamoDBClient creates a new DynamoDB client
func NewDynamoDBClient(ctx context.Context, cfg *models.Config, log logger.Logger) (*DynamoDBClient, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Use static credentials if provided
	if cfg.AWSAccessKeyID != "" && cfg.AWSSecretAccessKey != "" {
		awsCfg.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKeyID,
			cfg.AWSSecretAccessKey,
			"", // session token
		))
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		// Local DynamoDB
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	})

	log.Infof("DynamoDB client initialized (region=%s, endpoint=%q)", cfg.AWSRegion, cfg.DynamoDBEndpoint)
	return &DynamoDBClient{
		client: client,
		config: cfg,
		logger: log,
	}, nil
}

// GetItem retrieves an item by its string key. found is false when no item exists.
func (db *DynamoDBClient) GetItem(ctx context.Context, tableName, key, value string, result interface{}) (bool, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			key: &types.AttributeValueMemberS{Value: value},
		},
	}

	output, err := db.client.GetItem(ctx, input)
	if err != nil {
		db.logger.Errorf("Failed to get item from %s: %v", tableName, err)
		return false, err
	}

	if len(output.Item) == 0 {
		return false, nil
	}

	return true, attributevalue.UnmarshalMap(output.Item, result)
}

// PutItem stores an item in DynamoDB
func (db *DynamoDBClient) PutItem(ctx context.Context, tableName string, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName: aws.String(tableName),
		Item:      av,
	}

	_, err = db.client.PutItem(ctx, input)
	return err
}

// ReplaceItem overwrites an existing item. Returns ErrConditionFailed when the key is absent.
func (db *DynamoDBClient) ReplaceItem(ctx context.Context, tableName, key string, item interface{}) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:                aws.String(tableName),
		Item:                     av,
		ConditionExpression:      aws.String("attribute_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": key},
	}

	_, err = db.client.PutItem(ctx, input)
	if IsConditionalCheckFailed(err) {
		return ErrConditionFailed
	}
	return err
}

// DeleteItem deletes an item and decodes its previous value into old.
// deleted is false when no item existed under the key.
func (db *DynamoDBClient) DeleteItem(ctx context.Context, tableName, key, value string, old interface{}) (bool, error) {
	input := &dynamodb.DeleteItemInput{
		TableName: aws.String(tableName),
		Key: map[string]types.AttributeValue{
			key: &types.AttributeValueMemberS{Value: value},
		},
		ReturnValues: types.ReturnValueAllOld,
	}

	output, err := db.client.DeleteItem(ctx, input)
	if err != nil {
		return false, err
	}
	if len(output.Attributes) == 0 {
		return false, nil
	}
	if old != nil {
		if err := attributevalue.UnmarshalMap(output.Attributes, old); err != nil {
			return true, fmt.Errorf("failed to unmarshal deleted item: %w", err)
		}
	}
	return true, nil
}

// QueryByIndex queries items using a global secondary index
func (db *DynamoDBClient) QueryByIndex(ctx context.Context, tableName, indexName, keyName, keyValue string, results interface{}) error {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(tableName),
		IndexName:              aws.String(indexName),
		KeyConditionExpression: aws.String("#kn0 = :kv0"),
		ExpressionAttributeNames: map[string]string{
			"#kn0": keyName,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":kv0": &types.AttributeValueMemberS{Value: keyValue},
		},
	}

	output, err := db.client.Query(ctx, input)
	if err != nil {
		return err
	}

	return attributevalue.UnmarshalListOfMaps(output.Items, results)
}

// Scan reads every page of the table
func (db *DynamoDBClient) Scan(ctx context.Context, tableName string, results interface{}) error {
	paginator := dynamodb.NewScanPaginator(db.client, &dynamodb.ScanInput{
		TableName: aws.String(tableName),
	})

	var items []map[string]types.AttributeValue
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		items = append(items, page.Items...)
	}

	db.logger.Debugf("Scanned %d items from %s", len(items), tableName)
	return attributevalue.UnmarshalListOfMaps(items, results)
}

// CreateTable creates a table
func (db *DynamoDBClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	_, err := db.client.CreateTable(ctx, input)
	return err
}

// DescribeTable describes a table
func (db *DynamoDBClient) DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error) {
	input := &dynamodb.DescribeTableInput{
		TableName: aws.String(tableName),
	}
	return db.client.DescribeTable(ctx, input)
}

// IsConditionalCheckFailed reports whether err is DynamoDB rejecting a condition expression
func IsConditionalCheckFailed(err error) bool {
	if err == nil {
		return false
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ConditionalCheckFailedException"
}

// IsResourceNotFound reports whether err is DynamoDB reporting a missing table
func IsResourceNotFound(err error) bool {
	if err == nil {
		return false
	}
	var rnf *types.ResourceNotFoundException
	if errors.As(err, &rnf) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "ResourceNotFoundException"
}
