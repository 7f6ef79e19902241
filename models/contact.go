package models

import (
	"strings"
	"time"
)

// ContactPerson is the optional secondary person attached to a contact
type ContactPerson struct {
	Name         string `json:"name" dynamodbav:"name"`
	Relationship string `json:"relationship,omitempty" dynamodbav:"relationship,omitempty"`
	Email        string `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Phone        string `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
}

// IsEmpty reports whether every field of the contact person is blank
func (p *ContactPerson) IsEmpty() bool {
	return p == nil ||
		strings.TrimSpace(p.Name) == "" &&
			strings.TrimSpace(p.Relationship) == "" &&
			strings.TrimSpace(p.Email) == "" &&
			strings.TrimSpace(p.Phone) == ""
}

// Contact represents a person in the PR contact book
type Contact struct {
	ID            string         `json:"id" dynamodbav:"id"`
	Name          string         `json:"name" dynamodbav:"name"`
	Position      string         `json:"position,omitempty" dynamodbav:"position,omitempty"`
	Organization  string         `json:"organization,omitempty" dynamodbav:"organization,omitempty"`
	Email         string         `json:"email,omitempty" dynamodbav:"email,omitempty"`
	Phone         string         `json:"phone,omitempty" dynamodbav:"phone,omitempty"`
	WikipediaURL  string         `json:"wikipediaUrl,omitempty" dynamodbav:"wikipedia_url,omitempty"`
	Tags          []string       `json:"tags" dynamodbav:"tags"`
	Notes         string         `json:"notes,omitempty" dynamodbav:"notes,omitempty"`
	ContactPerson *ContactPerson `json:"contactPerson,omitempty" dynamodbav:"contact_person,omitempty"`
	CreatedAt     time.Time      `json:"createdAt" dynamodbav:"created_at"`
	UpdatedAt     time.Time      `json:"updatedAt" dynamodbav:"updated_at"`
}

// Validate checks the fields the store enforces. Email and URL shape are not
// checked.
func (c *Contact) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return NewValidationError("name", "name is required")
	}
	if c.ContactPerson != nil && strings.TrimSpace(c.ContactPerson.Name) == "" {
		return NewValidationError("contactPerson.name", "contact person name is required when a contact person is given")
	}
	return nil
}

// Clone returns a deep copy so callers can't alias stored slices
func (c *Contact) Clone() *Contact {
	if c == nil {
		return nil
	}
	out := *c
	if c.Tags != nil {
		out.Tags = make([]string, len(c.Tags))
		copy(out.Tags, c.Tags)
	}
	if c.ContactPerson != nil {
		cp := *c.ContactPerson
		out.ContactPerson = &cp
	}
	return &out
}

// ContactInput is the body accepted by POST /contacts
// @Description Contact creation request
type ContactInput struct {
	Name          string         `json:"name" example:"Jane Doe"`
	Position      string         `json:"position,omitempty" example:"Editor"`
	Organization  string         `json:"organization,omitempty" example:"Daily Planet"`
	Email         string         `json:"email,omitempty" example:"jane@planet.com"`
	Phone         string         `json:"phone,omitempty" example:"+1 555 0100"`
	WikipediaURL  string         `json:"wikipediaUrl,omitempty" example:"https://en.wikipedia.org/wiki/Jane_Doe"`
	Tags          []string       `json:"tags,omitempty"`
	Notes         string         `json:"notes,omitempty"`
	ContactPerson *ContactPerson `json:"contactPerson,omitempty"`
}

// ToContact converts the request body into a new, unsaved contact
func (in *ContactInput) ToContact() *Contact {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	person := in.ContactPerson
	if person.IsEmpty() {
		person = nil
	}
	return &Contact{
		Name:          in.Name,
		Position:      in.Position,
		Organization:  in.Organization,
		Email:         in.Email,
		Phone:         in.Phone,
		WikipediaURL:  in.WikipediaURL,
		Tags:          tags,
		Notes:         in.Notes,
		ContactPerson: person,
	}
}

// ContactPatch is the body accepted by PATCH /contacts/{id}. Nil fields are left untouched.
// @Description Partial contact update
type ContactPatch struct {
	Name          *string        `json:"name,omitempty"`
	Position      *string        `json:"position,omitempty"`
	Organization  *string        `json:"organization,omitempty"`
	Email         *string        `json:"email,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	WikipediaURL  *string        `json:"wikipediaUrl,omitempty"`
	Tags          *[]string      `json:"tags,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
	ContactPerson *ContactPerson `json:"contactPerson,omitempty"`
}

// Apply returns a copy of c with the patch applied
func (p *ContactPatch) Apply(c *Contact) *Contact {
	out := c.Clone()
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Position != nil {
		out.Position = *p.Position
	}
	if p.Organization != nil {
		out.Organization = *p.Organization
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}
	if p.WikipediaURL != nil {
		out.WikipediaURL = *p.WikipediaURL
	}
	if p.Tags != nil {
		out.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	// an all-blank contact person clears it
	if p.ContactPerson != nil {
		out.ContactPerson = nil
		if !p.ContactPerson.IsEmpty() {
			cp := *p.ContactPerson
			out.ContactPerson = &cp
		}
	}
	return out
}
