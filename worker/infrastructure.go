package worker

import (
	"context"
	"fmt"
	"time"

	"prcontacts-backend/dal"
	"prcontacts-backend/infrastructure"
	"prcontacts-backend/models"
	"prcontacts-backend/utils/logger"
)

// InfrastructureSetup creates the DynamoDB tables the contact and user stores need
type InfrastructureSetup struct {
	db         dal.DatabaseClientInterface
	config     *models.Config
	logger     logger.Logger
	maxRetries int
	baseDelay  time.Duration
}

// NewInfrastructureSetup creates a new infrastructure setup handler
func NewInfrastructureSetup(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *InfrastructureSetup {
	return &InfrastructureSetup{
		db:         db,
		config:     cfg,
		logger:     log,
		maxRetries: 3,
		baseDelay:  5 * time.Second,
	}
}

// Execute ensures every configured table exists and returns the ones it created
func (is *InfrastructureSetup) Execute(ctx context.Context) ([]string, error) {
	is.logger.Info("Starting infrastructure setup...")

	var created []string
	// sequential to avoid throttling
	for _, base := range is.config.Tables {
		tableName := is.config.TableName(base)
		wasCreated, err := is.createTableWithRetry(ctx, tableName)
		if err != nil {
			is.logger.Errorf("Failed to create table %s: %v", tableName, err)
			return created, err
		}
		if wasCreated {
			created = append(created, tableName)
			is.logger.Infof("Successfully created table: %s", tableName)
		}
	}

	is.logger.Infof("Infrastructure setup finished, %d table(s) created", len(created))
	return created, nil
}

// createTableWithRetry creates a table unless it exists, backing off linearly between attempts
func (is *InfrastructureSetup) createTableWithRetry(ctx context.Context, tableName string) (bool, error) {
	var lastErr error
	for attempt := 0; attempt <= is.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * is.baseDelay
			is.logger.Infof("Retrying table creation for %s in %v (attempt %d/%d)", tableName, delay, attempt+1, is.maxRetries+1)

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return false, ctx.Err()
			}
		}

		exists, err := is.tableExists(ctx, tableName)
		if err != nil {
			lastErr = err
			is.logger.Errorf("Failed to check if table exists: %v", err)
			continue
		}
		if exists {
			is.logger.Debugf("Table %s already exists, skipping creation", tableName)
			return false, nil
		}

		if err := is.createTable(ctx, tableName); err != nil {
			lastErr = err
			is.logger.Errorf("Attempt %d failed to create table %s: %v", attempt+1, tableName, err)
			continue
		}
		return true, nil
	}

	return false, fmt.Errorf("failed to create table %s after %d attempts: %w", tableName, is.maxRetries+1, lastErr)
}

func (is *InfrastructureSetup) createTable(ctx context.Context, tableName string) error {
	input, err := infrastructure.GetTables(tableName)
	if err != nil {
		return fmt.Errorf("failed to get table input: %w", err)
	}
	if err := is.db.CreateTable(ctx, input); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (is *InfrastructureSetup) tableExists(ctx context.Context, tableName string) (bool, error) {
	_, err := is.db.DescribeTable(ctx, tableName)
	if err != nil {
		if dal.IsResourceNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
