package repository

import (
	"context"

	"prcontacts-backend/models"
)

// ContactRepositoryInterface is the durable contact record store
type ContactRepositoryInterface interface {
	Insert(ctx context.Context, contact *models.Contact) (*models.Contact, error)
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	ReplaceByID(ctx context.Context, id string, contact *models.Contact) (*models.Contact, error)
	DeleteByID(ctx context.Context, id string) (*models.Contact, error)

	// Query returns the requested window of matches ordered by sort, and the total match count
	Query(ctx context.Context, predicate models.ContactPredicate, sort models.Sort, skip, limit int) ([]*models.Contact, int, error)
	// DistinctValues returns the sorted, non-empty distinct values of tags or organization
	DistinctValues(ctx context.Context, field models.DistinctField) ([]string, error)
	// All returns every contact, newest first
	All(ctx context.Context) ([]*models.Contact, error)
}

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// RepositoryContainerInterface defines the contract for the repository container
type RepositoryContainerInterface interface {
	GetContactRepository() ContactRepositoryInterface
	GetUserRepository() UserRepositoryInterface
}
