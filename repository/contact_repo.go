package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"prcontacts-backend/dal"
	"prcontacts-backend/models"
	"prcontacts-backend/utils"
	"prcontacts-backend/utils/logger"
)

const contactsTable = "contacts"

// ContactRepository stores contacts in DynamoDB
type ContactRepository struct {
	db     dal.DatabaseClientInterface
	config *models.Config
	logger logger.Logger
	now    func() time.Time
}

func NewContactRepository(db dal.DatabaseClientInterface, cfg *models.Config, log logger.Logger) *ContactRepository {
	return &ContactRepository{
		db:     db,
		config: cfg,
		logger: log,
		now:    time.Now,
	}
}

func (r *ContactRepository) table() string {
	return r.config.TableName(contactsTable)
}

func (r *ContactRepository) Insert(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if contact == nil {
		return nil, models.NewValidationError("", "contact is required")
	}
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	r.logger.Infof("Creating contact: %s", contact.Name)

	item := prepareInsert(contact, r.now())
	if err := r.db.PutItem(ctx, r.table(), item); err != nil {
		r.logger.Errorf("Failed to create contact: %v", err)
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	r.logger.Infof("Contact created successfully: %s", item.ID)
	return item.Clone(), nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	if id == "" {
		return nil, models.NewValidationError("id", "contact id is required")
	}

	contact := &models.Contact{}
	found, err := r.db.GetItem(ctx, r.table(), "id", id, contact)
	if err != nil {
		r.logger.Errorf("Failed to get contact %s: %v", id, err)
		return nil, fmt.Errorf("failed to get contact %s: %w", id, err)
	}
	if !found {
		return nil, models.NewNotFoundError("Contact", id)
	}
	normalizeLoaded(contact)
	return contact, nil
}

func (r *ContactRepository) ReplaceByID(ctx context.Context, id string, contact *models.Contact) (*models.Contact, error) {
	if contact == nil {
		return nil, models.NewValidationError("", "contact is required")
	}
	if err := contact.Validate(); err != nil {
		return nil, err
	}
	r.logger.Infof("Updating contact: %s", id)

	existing, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	item := prepareReplace(existing, contact, r.now())
	err = r.db.ReplaceItem(ctx, r.table(), "id", item)
	if errors.Is(err, dal.ErrConditionFailed) {
		// deleted between the read and the write
		return nil, models.NewNotFoundError("Contact", id)
	}
	if err != nil {
		r.logger.Errorf("Failed to update contact: %v", err)
		return nil, fmt.Errorf("failed to update contact %s: %w", id, err)
	}

	r.logger.Infof("Contact updated successfully: %s", id)
	return item.Clone(), nil
}

func (r *ContactRepository) DeleteByID(ctx context.Context, id string) (*models.Contact, error) {
	if id == "" {
		return nil, models.NewValidationError("id", "contact id is required")
	}
	r.logger.Infof("Deleting contact: %s", id)

	old := &models.Contact{}
	deleted, err := r.db.DeleteItem(ctx, r.table(), "id", id, old)
	if err != nil {
		r.logger.Errorf("Failed to delete contact: %v", err)
		return nil, fmt.Errorf("failed to delete contact %s: %w", id, err)
	}
	if !deleted {
		return nil, models.NewNotFoundError("Contact", id)
	}

	r.logger.Infof("Contact deleted successfully: %s", id)
	normalizeLoaded(old)
	return old, nil
}

func (r *ContactRepository) Query(ctx context.Context, predicate models.ContactPredicate, order models.Sort, skip, limit int) ([]*models.Contact, int, error) {
	all, err := r.scan(ctx)
	if err != nil {
		return nil, 0, err
	}

	matched := make([]*models.Contact, 0, len(all))
	for _, c := range all {
		if predicate.Matches(c) {
			matched = append(matched, c)
		}
	}

	r.logger.Debugf("Contact query matched %d of %d", len(matched), len(all))
	return window(matched, order, skip, limit), len(matched), nil
}

func (r *ContactRepository) DistinctValues(ctx context.Context, field models.DistinctField) ([]string, error) {
	all, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	return distinct(all, field)
}

func (r *ContactRepository) All(ctx context.Context) ([]*models.Contact, error) {
	all, err := r.scan(ctx)
	if err != nil {
		return nil, err
	}
	sortContacts(all, models.DefaultSort)
	return all, nil
}

func (r *ContactRepository) scan(ctx context.Context) ([]*models.Contact, error) {
	var contacts []*models.Contact
	if err := r.db.Scan(ctx, r.table(), &contacts); err != nil {
		r.logger.Errorf("Failed to scan contacts: %v", err)
		return nil, fmt.Errorf("failed to scan contacts: %w", err)
	}
	for _, c := range contacts {
		normalizeLoaded(c)
	}
	return contacts, nil
}

// prepareInsert copies the contact and stamps identity and timestamps
func prepareInsert(contact *models.Contact, now time.Time) *models.Contact {
	item := contact.Clone()
	item.ID = utils.GenerateUUID()
	item.CreatedAt = now.UTC()
	item.UpdatedAt = item.CreatedAt
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return item
}

// prepareReplace keeps the stored identity and creation time, refreshing updatedAt
func prepareReplace(existing, contact *models.Contact, now time.Time) *models.Contact {
	item := contact.Clone()
	item.ID = existing.ID
	item.CreatedAt = existing.CreatedAt
	item.UpdatedAt = now.UTC()
	if item.Tags == nil {
		item.Tags = []string{}
	}
	return item
}

func normalizeLoaded(c *models.Contact) {
	if c.Tags == nil {
		c.Tags = []string{}
	}
}

func sortContacts(contacts []*models.Contact, order models.Sort) {
	sort.SliceStable(contacts, func(i, j int) bool {
		return order.Less(contacts[i], contacts[j])
	})
}

// window sorts and slices the matches down to [skip, skip+limit)
func window(matched []*models.Contact, order models.Sort, skip, limit int) []*models.Contact {
	sortContacts(matched, order)
	if skip < 0 || limit <= 0 || skip >= len(matched) {
		return []*models.Contact{}
	}
	end := len(matched)
	if limit < end-skip {
		end = skip + limit
	}
	return matched[skip:end]
}

func distinct(contacts []*models.Contact, field models.DistinctField) ([]string, error) {
	if err := checkDistinctField(field); err != nil {
		return nil, err
	}
	seen := map[string]struct{}{}
	add := func(v string) {
		if v != "" {
			seen[v] = struct{}{}
		}
	}
	for _, c := range contacts {
		switch field {
		case models.DistinctTags:
			for _, t := range c.Tags {
				add(t)
			}
		case models.DistinctOrganization:
			add(c.Organization)
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out, nil
}

func checkDistinctField(field models.DistinctField) error {
	switch field {
	case models.DistinctTags, models.DistinctOrganization:
		return nil
	}
	return models.NewValidationError("field", "unsupported distinct field "+string(field))
}
