package daltest

import (
	"context"

	"prcontacts-backend/dal"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/stretchr/testify/mock"
)

// MockDatabaseClient implements DatabaseClientInterface for testing
type MockDatabaseClient struct {
	mock.Mock
}

var _ dal.DatabaseClientInterface = (*MockDatabaseClient)(nil)

func (m *MockDatabaseClient) GetItem(ctx context.Context, tableName, key, value string, result interface{}) (bool, error) {
	args := m.Called(ctx, tableName, key, value, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockDatabaseClient) PutItem(ctx context.Context, tableName string, item interface{}) error {
	args := m.Called(ctx, tableName, item)
	return args.Error(0)
}

func (m *MockDatabaseClient) ReplaceItem(ctx context.Context, tableName, key string, item interface{}) error {
	args := m.Called(ctx, tableName, key, item)
	return args.Error(0)
}

func (m *MockDatabaseClient) DeleteItem(ctx context.Context, tableName, key, value string, old interface{}) (bool, error) {
	args := m.Called(ctx, tableName, key, value, old)
	return args.Bool(0), args.Error(1)
}

func (m *MockDatabaseClient) QueryByIndex(ctx context.Context, tableName, indexName, keyName, keyValue string, results interface{}) error {
	args := m.Called(ctx, tableName, indexName, keyName, keyValue, results)
	return args.Error(0)
}

func (m *MockDatabaseClient) Scan(ctx context.Context, tableName string, results interface{}) error {
	args := m.Called(ctx, tableName, results)
	return args.Error(0)
}

func (m *MockDatabaseClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

func (m *MockDatabaseClient) DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error) {
	args := m.Called(ctx, tableName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dynamodb.DescribeTableOutput), args.Error(1)
}
