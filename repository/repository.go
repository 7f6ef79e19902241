package repository

import (
	"context"
	"fmt"

	"prcontacts-backend/dal"
	"prcontacts-backend/models"
	"prcontacts-backend/utils/logger"
)

// Repository bundles the stores the services depend on
type Repository struct {
	Contact ContactRepositoryInterface
	User    UserRepositoryInterface

	closer func() error
}

// NewRepository builds DynamoDB-backed repositories over an existing client
func NewRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *Repository {
	return &Repository{
		Contact: NewContactRepository(db, cfg, log),
		User:    NewUserRepository(db, cfg, log),
	}
}

// NewSQLiteRepository builds repositories over a SQLite store
func NewSQLiteRepository(store *SQLiteStore) *Repository {
	return &Repository{
		Contact: store.Contacts(),
		User:    store.Users(),
		closer:  store.Close,
	}
}

// Open selects the storage driver named in the configuration
func Open(ctx context.Context, cfg *models.Config, log logger.Logger) (*Repository, *dal.DynamoDBClient, error) {
	switch cfg.StorageDriver {
	case models.StorageDriverSQLite:
		store, err := NewSQLiteStore(cfg.SQLitePath, log)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteRepository(store), nil, nil
	case models.StorageDriverDynamoDB, "":
		client, err := dal.NewDynamoDBClient(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return NewRepository(client, cfg, log), client, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

func (r *Repository) GetContactRepository() ContactRepositoryInterface {
	return r.Contact
}

func (r *Repository) GetUserRepository() UserRepositoryInterface {
	return r.User
}

// Close releases the underlying store, if it holds one
func (r *Repository) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}
