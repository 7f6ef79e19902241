package services

import (
	"context"

	"prcontacts-backend/models"
)

// ContactServiceInterface defines the contract for contact service
type ContactServiceInterface interface {
	CreateContact(ctx context.Context, input *models.ContactInput) (*models.Contact, error)
	GetContact(ctx context.Context, id string) (*models.Contact, error)
	UpdateContact(ctx context.Context, id string, patch *models.ContactPatch) (*models.Contact, error)
	DeleteContact(ctx context.Context, id string) (*models.Contact, error)
	ListContacts(ctx context.Context, params models.ListParams) (*models.ContactPage, error)
	GetTags(ctx context.Context) ([]string, error)
	GetOrganizations(ctx context.Context) ([]string, error)
	ExportContacts(ctx context.Context) ([]*models.Contact, error)
}

// UserServiceInterface defines the contract for user service
type UserServiceInterface interface {
	Register(ctx context.Context, req *models.RegisterUser) (*models.User, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// ServiceContainerInterface defines the main service container contract
type ServiceContainerInterface interface {
	GetContactService() ContactServiceInterface
	GetUserService() UserServiceInterface
}
