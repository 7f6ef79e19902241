package dal

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// DatabaseClientInterface defines the contract for database operations
type DatabaseClientInterface interface {
	// Core CRUD operations
	GetItem(ctx context.Context, tableName, key, value string, result interface{}) (bool, error)
	PutItem(ctx context.Context, tableName string, item interface{}) error
	ReplaceItem(ctx context.Context, tableName, key string, item interface{}) error
	DeleteItem(ctx context.Context, tableName, key, value string, old interface{}) (bool, error)

	// Query and Scan operations
	QueryByIndex(ctx context.Context, tableName, indexName, keyName, keyValue string, results interface{}) error
	Scan(ctx context.Context, tableName string, results interface{}) error

	// Table management operations
	CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error
	DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error)
}
