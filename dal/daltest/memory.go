// Package daltest provides in-memory and mock implementations of dal.DatabaseClientInterface for tests.
package daltest

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"prcontacts-backend/dal"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type item = map[string]types.AttributeValue

type table struct {
	hashKey string
	items   map[string]item
}

// MemoryClient stores items in memory using the same attributevalue encoding as DynamoDB
type MemoryClient struct {
	mu     sync.Mutex
	tables map[string]*table
}

var _ dal.DatabaseClientInterface = (*MemoryClient)(nil)

// NewMemoryClient creates a client with the given tables, all hashed on "id"
func NewMemoryClient(tables ...string) *MemoryClient {
	c := &MemoryClient{tables: map[string]*table{}}
	for _, name := range tables {
		c.tables[name] = &table{hashKey: "id", items: map[string]item{}}
	}
	return c
}

func (c *MemoryClient) table(name string) (*table, error) {
	t, ok := c.tables[name]
	if !ok {
		return nil, &types.ResourceNotFoundException{Message: aws.String("Requested resource not found: " + name)}
	}
	return t, nil
}

func keyOf(t *table, av item) (string, error) {
	s, ok := av[t.hashKey].(*types.AttributeValueMemberS)
	if !ok || s.Value == "" {
		return "", fmt.Errorf("item has no string %q attribute", t.hashKey)
	}
	return s.Value, nil
}

func (c *MemoryClient) GetItem(ctx context.Context, tableName, key, value string, result interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.table(tableName)
	if err != nil {
		return false, err
	}
	av, ok := t.items[value]
	if !ok {
		return false, nil
	}
	return true, attributevalue.UnmarshalMap(av, result)
}

func (c *MemoryClient) PutItem(ctx context.Context, tableName string, in interface{}) error {
	av, err := attributevalue.MarshalMap(in)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.table(tableName)
	if err != nil {
		return err
	}
	k, err := keyOf(t, av)
	if err != nil {
		return err
	}
	t.items[k] = av
	return nil
}

func (c *MemoryClient) ReplaceItem(ctx context.Context, tableName, key string, in interface{}) error {
	av, err := attributevalue.MarshalMap(in)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.table(tableName)
	if err != nil {
		return err
	}
	k, err := keyOf(t, av)
	if err != nil {
		return err
	}
	if _, ok := t.items[k]; !ok {
		return dal.ErrConditionFailed
	}
	t.items[k] = av
	return nil
}

func (c *MemoryClient) DeleteItem(ctx context.Context, tableName, key, value string, old interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.table(tableName)
	if err != nil {
		return false, err
	}
	av, ok := t.items[value]
	if !ok {
		return false, nil
	}
	delete(t.items, value)
	if old != nil {
		return true, attributevalue.UnmarshalMap(av, old)
	}
	return true, nil
}

func (c *MemoryClient) QueryByIndex(ctx context.Context, tableName, indexName, keyName, keyValue string, results interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.table(tableName)
	if err != nil {
		return err
	}
	var matched []item
	for _, k := range sortedKeys(t) {
		av := t.items[k]
		if s, ok := av[keyName].(*types.AttributeValueMemberS); ok && s.Value == keyValue {
			matched = append(matched, av)
		}
	}
	return attributevalue.UnmarshalListOfMaps(matched, results)
}

func (c *MemoryClient) Scan(ctx context.Context, tableName string, results interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.table(tableName)
	if err != nil {
		return err
	}
	all := make([]item, 0, len(t.items))
	for _, k := range sortedKeys(t) {
		all = append(all, t.items[k])
	}
	return attributevalue.UnmarshalListOfMaps(all, results)
}

func (c *MemoryClient) CreateTable(ctx context.Context, input *dynamodb.CreateTableInput) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	name := aws.ToString(input.TableName)
	if _, ok := c.tables[name]; ok {
		return &types.ResourceInUseException{Message: aws.String("Table already exists: " + name)}
	}
	hashKey := "id"
	for _, k := range input.KeySchema {
		if k.KeyType == types.KeyTypeHash {
			hashKey = aws.ToString(k.AttributeName)
		}
	}
	c.tables[name] = &table{hashKey: hashKey, items: map[string]item{}}
	return nil
}

func (c *MemoryClient) DescribeTable(ctx context.Context, tableName string) (*dynamodb.DescribeTableOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, err := c.table(tableName)
	if err != nil {
		return nil, err
	}
	return &dynamodb.DescribeTableOutput{
		Table: &types.TableDescription{
			TableName:   aws.String(tableName),
			TableStatus: types.TableStatusActive,
			ItemCount:   aws.Int64(int64(len(t.items))),
		},
	}, nil
}

// TableNames lists the tables that exist
func (c *MemoryClient) TableNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func sortedKeys(t *table) []string {
	keys := make([]string, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
