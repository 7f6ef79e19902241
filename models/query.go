package models

import (
	"math"
	"strings"
)

// ContactPredicate is the composed filter over contacts. The zero value matches everything.
type ContactPredicate struct {
	// SearchTerms are lowercase tokens; any one appearing in an indexed field is a match
	SearchTerms []string `json:"searchTerms,omitempty"`
	// Tags match when the contact carries at least one of them
	Tags []string `json:"tags,omitempty"`
	// Organization must equal the contact's organization exactly
	Organization string `json:"organization,omitempty"`
}

// IsEmpty reports whether the predicate imposes no constraint
func (p ContactPredicate) IsEmpty() bool {
	return len(p.SearchTerms) == 0 && len(p.Tags) == 0 && p.Organization == ""
}

// Matches evaluates the predicate against a single contact
func (p ContactPredicate) Matches(c *Contact) bool {
	if c == nil {
		return false
	}
	if p.Organization != "" && c.Organization != p.Organization {
		return false
	}
	if len(p.Tags) > 0 && !hasAnyTag(c.Tags, p.Tags) {
		return false
	}
	if len(p.SearchTerms) > 0 && !matchesText(c, p.SearchTerms) {
		return false
	}
	return true
}

func hasAnyTag(have, want []string) bool {
	for _, w := range want {
		for _, h := range have {
			if h == w {
				return true
			}
		}
	}
	return false
}

// SearchableFields returns the text fields registered for search
func (c *Contact) SearchableFields() []string {
	fields := make([]string, 0, 4+len(c.Tags))
	fields = append(fields, c.Name, c.Organization, c.Notes)
	fields = append(fields, c.Tags...)
	if c.ContactPerson != nil {
		fields = append(fields, c.ContactPerson.Name)
	}
	return fields
}

// SearchText is the lowercased searchable fields, one per line, as stored for
// drivers that match search terms in the database
func (c *Contact) SearchText() string {
	fields := c.SearchableFields()
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return strings.Join(fields, "\n")
}

func matchesText(c *Contact, terms []string) bool {
	for _, field := range c.SearchableFields() {
		if field == "" {
			continue
		}
		lower := strings.ToLower(field)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				return true
			}
		}
	}
	return false
}

// SortField is a contact attribute results can be ordered by
type SortField string

const (
	SortByCreatedAt SortField = "createdAt"
	SortByUpdatedAt SortField = "updatedAt"
	SortByName      SortField = "name"
)

// Sort describes result ordering. Ties are always broken by id ascending.
type Sort struct {
	Field      SortField `json:"field"`
	Descending bool      `json:"descending"`
}

// DefaultSort is newest first
var DefaultSort = Sort{Field: SortByCreatedAt, Descending: true}

// ParseSort reads the "-createdAt" / "name" form used on the query string
func ParseSort(raw string) (Sort, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return DefaultSort, nil
	}
	s := Sort{}
	if strings.HasPrefix(raw, "-") {
		s.Descending = true
		raw = raw[1:]
	} else {
		raw = strings.TrimPrefix(raw, "+")
	}
	switch SortField(raw) {
	case SortByCreatedAt, SortByUpdatedAt, SortByName:
		s.Field = SortField(raw)
	default:
		return Sort{}, NewValidationError("sort", "unsupported sort field "+raw)
	}
	return s, nil
}

// String renders the sort in the query string form
func (s Sort) String() string {
	if s.Descending {
		return "-" + string(s.Field)
	}
	return string(s.Field)
}

// Less orders two contacts by s, then by id
func (s Sort) Less(a, b *Contact) bool {
	var cmp int
	switch s.Field {
	case SortByName:
		cmp = strings.Compare(a.Name, b.Name)
	case SortByUpdatedAt:
		cmp = a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	}
	if s.Descending {
		cmp = -cmp
	}
	if cmp != 0 {
		return cmp < 0
	}
	return a.ID < b.ID
}

// DistinctField names a field facets can be derived from
type DistinctField string

const (
	DistinctTags         DistinctField = "tags"
	DistinctOrganization DistinctField = "organization"
)

// PageRequest carries the pagination inputs of a listing
type PageRequest struct {
	Page  int  `json:"page"`
	Limit int  `json:"limit"`
	Sort  Sort `json:"sort"`
}

// Skip is the number of matches preceding the requested page. ok is false when
// that number does not fit in an int; no stored match can sit that far in.
func (r PageRequest) Skip() (skip int, ok bool) {
	if r.Page <= 1 || r.Limit <= 0 {
		return 0, true
	}
	if r.Page-1 > (math.MaxInt-1)/r.Limit {
		return math.MaxInt, false
	}
	return (r.Page - 1) * r.Limit, true
}

// ContactPage is the page envelope returned by GET /contacts
type ContactPage struct {
	Docs          []*Contact `json:"docs"`
	TotalDocs     int        `json:"totalDocs"`
	Limit         int        `json:"limit"`
	Page          int        `json:"page"`
	TotalPages    int        `json:"totalPages"`
	PagingCounter int        `json:"pagingCounter"`
	HasPrevPage   bool       `json:"hasPrevPage"`
	HasNextPage   bool       `json:"hasNextPage"`
	PrevPage      *int       `json:"prevPage"`
	NextPage      *int       `json:"nextPage"`
}

// ListParams are the listing inputs as the API receives them
type ListParams struct {
	Page         int      `json:"page"`
	Limit        int      `json:"limit"`
	Search       string   `json:"search,omitempty"`
	Tags         []string `json:"tags,omitempty"`
	Organization string   `json:"organization,omitempty"`
	Sort         string   `json:"sort,omitempty"`
}
