package services

import (
	"prcontacts-backend/models"
	"prcontacts-backend/repository"
	"prcontacts-backend/utils/logger"
)

// Service implements ServiceContainerInterface
type Service struct {
	contactService ContactServiceInterface
	userService    UserServiceInterface
}

// NewService creates a new service container with all dependencies injected
func NewService(
	repoContainer repository.RepositoryContainerInterface,
	tokens TokenIssuer,
	logger logger.Logger,
	config *models.Config,
) ServiceContainerInterface {
	return &Service{
		contactService: NewContactService(repoContainer.GetContactRepository(), logger),
		userService:    NewUserService(repoContainer.GetUserRepository(), tokens, config, logger),
	}
}

// GetContactService returns the contact service interface
func (s *Service) GetContactService() ContactServiceInterface {
	return s.contactService
}

// GetUserService returns the user service interface
func (s *Service) GetUserService() UserServiceInterface {
	return s.userService
}
