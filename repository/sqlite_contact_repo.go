package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"prcontacts-backend/models"
	"prcontacts-backend/utils/logger"
)

const contactColumns = `id, name, position, organization, email, phone, wikipedia_url,
	tags, notes, contact_person, created_at, updated_at`

// SQLiteContactRepository stores contacts in SQLite
type SQLiteContactRepository struct {
	db     *sql.DB
	logger logger.Logger
	now    func() time.Time
}

func (r *SQLiteContactRepository) Insert(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if contact == nil {
		return nil, models.NewValidationError("", "contact is required")
	}
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	item := prepareInsert(contact, r.now())
	args, err := contactArgs(item)
	if err != nil {
		return nil, err
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO contacts (`+contactColumns+`, search_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, args...)
	if err != nil {
		r.logger.Errorf("Failed to create contact: %v", err)
		return nil, fmt.Errorf("failed to create contact: %w", err)
	}

	r.logger.Infof("Contact created successfully: %s", item.ID)
	return item.Clone(), nil
}

func (r *SQLiteContactRepository) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	if id == "" {
		return nil, models.NewValidationError("id", "contact id is required")
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	contact, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFoundError("Contact", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact %s: %w", id, err)
	}
	return contact, nil
}

func (r *SQLiteContactRepository) ReplaceByID(ctx context.Context, id string, contact *models.Contact) (*models.Contact, error) {
	if contact == nil {
		return nil, models.NewValidationError("", "contact is required")
	}
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	item := contact.Clone()
	item.ID = id
	item.UpdatedAt = r.now().UTC()
	if item.Tags == nil {
		item.Tags = []string{}
	}
	tags, person, err := encodeContactJSON(item)
	if err != nil {
		return nil, err
	}

	row := r.db.QueryRowContext(ctx, `UPDATE contacts SET
			name = ?, position = ?, organization = ?, email = ?, phone = ?, wikipedia_url = ?,
			tags = ?, notes = ?, contact_person = ?, search_text = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+contactColumns,
		item.Name, item.Position, item.Organization, item.Email, item.Phone, item.WikipediaURL,
		tags, item.Notes, person, item.SearchText(), toUnixNano(item.UpdatedAt), id)

	updated, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFoundError("Contact", id)
	}
	if err != nil {
		r.logger.Errorf("Failed to update contact: %v", err)
		return nil, fmt.Errorf("failed to update contact %s: %w", id, err)
	}

	r.logger.Infof("Contact updated successfully: %s", id)
	return updated, nil
}

func (r *SQLiteContactRepository) DeleteByID(ctx context.Context, id string) (*models.Contact, error) {
	if id == "" {
		return nil, models.NewValidationError("id", "contact id is required")
	}

	row := r.db.QueryRowContext(ctx, `DELETE FROM contacts WHERE id = ? RETURNING `+contactColumns, id)
	deleted, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFoundError("Contact", id)
	}
	if err != nil {
		r.logger.Errorf("Failed to delete contact: %v", err)
		return nil, fmt.Errorf("failed to delete contact %s: %w", id, err)
	}

	r.logger.Infof("Contact deleted successfully: %s", id)
	return deleted, nil
}

func (r *SQLiteContactRepository) Query(ctx context.Context, predicate models.ContactPredicate, order models.Sort, skip, limit int) ([]*models.Contact, int, error) {
	where, args := compilePredicate(predicate)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	if skip < 0 || limit <= 0 || skip >= total {
		return []*models.Contact{}, total, nil
	}

	query := `SELECT ` + contactColumns + ` FROM contacts` + where + orderBy(order) + ` LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, limit, skip)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer rows.Close()

	docs, err := scanContacts(rows)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

func (r *SQLiteContactRepository) DistinctValues(ctx context.Context, field models.DistinctField) ([]string, error) {
	if err := checkDistinctField(field); err != nil {
		return nil, err
	}

	query := `SELECT DISTINCT organization FROM contacts WHERE organization <> '' ORDER BY organization`
	if field == models.DistinctTags {
		query = `SELECT DISTINCT t.value FROM contacts, json_each(contacts.tags) AS t
			WHERE t.value <> '' ORDER BY t.value`
	}

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to read distinct %s: %w", field, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (r *SQLiteContactRepository) All(ctx context.Context) ([]*models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts`+orderBy(models.DefaultSort))
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()
	return scanContacts(rows)
}

// compilePredicate renders the predicate as a WHERE clause with the same
// semantics as ContactPredicate.Matches
func compilePredicate(p models.ContactPredicate) (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if p.Organization != "" {
		clauses = append(clauses, "organization = ?")
		args = append(args, p.Organization)
	}

	if len(p.Tags) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(p.Tags)), ", ")
		clauses = append(clauses, "EXISTS (SELECT 1 FROM json_each(contacts.tags) AS t WHERE t.value IN ("+placeholders+"))")
		for _, tag := range p.Tags {
			args = append(args, tag)
		}
	}

	if len(p.SearchTerms) > 0 {
		var terms []string
		for _, term := range p.SearchTerms {
			terms = append(terms, "instr(search_text, ?) > 0")
			args = append(args, term)
		}
		clauses = append(clauses, "("+strings.Join(terms, " OR ")+")")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func orderBy(order models.Sort) string {
	column := "created_at"
	switch order.Field {
	case models.SortByName:
		column = "name"
	case models.SortByUpdatedAt:
		column = "updated_at"
	}
	dir := "ASC"
	if order.Descending {
		dir = "DESC"
	}
	return " ORDER BY " + column + " " + dir + ", id ASC"
}

func encodeContactJSON(c *models.Contact) (tags string, person sql.NullString, err error) {
	raw, err := json.Marshal(c.Tags)
	if err != nil {
		return "", person, fmt.Errorf("failed to encode tags: %w", err)
	}
	if c.ContactPerson != nil {
		p, err := json.Marshal(c.ContactPerson)
		if err != nil {
			return "", person, fmt.Errorf("failed to encode contact person: %w", err)
		}
		person = sql.NullString{String: string(p), Valid: true}
	}
	return string(raw), person, nil
}

// contactArgs lists insert values in contactColumns order, then search_text.
// search_text is lowercased in Go; SQLite's lower() folds ASCII only.
func contactArgs(c *models.Contact) ([]interface{}, error) {
	tags, person, err := encodeContactJSON(c)
	if err != nil {
		return nil, err
	}
	return []interface{}{
		c.ID, c.Name, c.Position, c.Organization, c.Email, c.Phone, c.WikipediaURL,
		tags, c.Notes, person, toUnixNano(c.CreatedAt), toUnixNano(c.UpdatedAt), c.SearchText(),
	}, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanContact(row rowScanner) (*models.Contact, error) {
	var (
		c         models.Contact
		tags      string
		person    sql.NullString
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&c.ID, &c.Name, &c.Position, &c.Organization, &c.Email, &c.Phone, &c.WikipediaURL,
		&tags, &c.Notes, &person, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	c.Tags = []string{}
	if err := json.Unmarshal([]byte(tags), &c.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags of %s: %w", c.ID, err)
	}
	if person.Valid && person.String != "" {
		c.ContactPerson = &models.ContactPerson{}
		if err := json.Unmarshal([]byte(person.String), c.ContactPerson); err != nil {
			return nil, fmt.Errorf("failed to decode contact person of %s: %w", c.ID, err)
		}
	}
	c.CreatedAt = fromUnixNano(createdAt)
	c.UpdatedAt = fromUnixNano(updatedAt)
	return &c, nil
}

func scanContacts(rows *sql.Rows) ([]*models.Contact, error) {
	contacts := []*models.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}
