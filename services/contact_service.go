package services

import (
	"context"

	"prcontacts-backend/models"
	"prcontacts-backend/repository"
	"prcontacts-backend/utils/logger"
)

type ContactService struct {
	repo   repository.ContactRepositoryInterface
	logger logger.Logger
}

func NewContactService(repo repository.ContactRepositoryInterface, log logger.Logger) *ContactService {
	return &ContactService{
		repo:   repo,
		logger: log,
	}
}

func (s *ContactService) CreateContact(ctx context.Context, input *models.ContactInput) (*models.Contact, error) {
	if input == nil {
		return nil, models.NewValidationError("", "request body is required")
	}
	return s.repo.Insert(ctx, input.ToContact())
}

func (s *ContactService) GetContact(ctx context.Context, id string) (*models.Contact, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateContact merges the patch over the stored record and replaces it. Concurrent updates: last write wins.
func (s *ContactService) UpdateContact(ctx context.Context, id string, patch *models.ContactPatch) (*models.Contact, error) {
	if patch == nil {
		return nil, models.NewValidationError("", "request body is required")
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.ReplaceByID(ctx, id, patch.Apply(existing))
}

func (s *ContactService) DeleteContact(ctx context.Context, id string) (*models.Contact, error) {
	return s.repo.DeleteByID(ctx, id)
}

func (s *ContactService) ListContacts(ctx context.Context, params models.ListParams) (*models.ContactPage, error) {
	order, err := models.ParseSort(params.Sort)
	if err != nil {
		return nil, err
	}

	predicate := ComposePredicate(params.Search, params.Tags, params.Organization)
	s.logger.Debugf("Listing contacts page=%d limit=%d predicate=%+v sort=%s", params.Page, params.Limit, predicate, order)

	return Paginate(ctx, s.repo, predicate, models.PageRequest{
		Page:  params.Page,
		Limit: params.Limit,
		Sort:  order,
	})
}

func (s *ContactService) GetTags(ctx context.Context) ([]string, error) {
	return s.repo.DistinctValues(ctx, models.DistinctTags)
}

func (s *ContactService) GetOrganizations(ctx context.Context) ([]string, error) {
	return s.repo.DistinctValues(ctx, models.DistinctOrganization)
}

func (s *ContactService) ExportContacts(ctx context.Context) ([]*models.Contact, error) {
	contacts, err := s.repo.All(ctx)
	if err != nil {
		return nil, err
	}
	s.logger.Infof("Exporting %d contacts", len(contacts))
	return contacts, nil
}
