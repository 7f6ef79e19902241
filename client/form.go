package client

import (
	"strings"

	"prcontacts-backend/models"

	"github.com/go-playground/validator/v10"
)

var formValidator = validator.New()

// FormWarning is advisory feedback on a contact form field. Warnings never block a save.
type FormWarning struct {
	Field   string
	Message string
}

// NormalizeContactForm cleans a contact form before it is sent: fields are
// trimmed, tags containing commas split apart, blank and repeated tags dropped,
// and a contact person without a name removed. It fails only when the contact
// name is empty.
func NormalizeContactForm(in models.ContactInput) (models.ContactInput, []FormWarning, error) {
	out := models.ContactInput{
		Name:         strings.TrimSpace(in.Name),
		Position:     strings.TrimSpace(in.Position),
		Organization: strings.TrimSpace(in.Organization),
		Email:        strings.TrimSpace(in.Email),
		Phone:        strings.TrimSpace(in.Phone),
		WikipediaURL: strings.TrimSpace(in.WikipediaURL),
		Tags:         cleanTags(in.Tags),
		Notes:        strings.TrimSpace(in.Notes),
	}
	if out.Name == "" {
		return out, nil, models.NewValidationError("name", "name is required")
	}

	if p := in.ContactPerson; p != nil && strings.TrimSpace(p.Name) != "" {
		out.ContactPerson = &models.ContactPerson{
			Name:         strings.TrimSpace(p.Name),
			Relationship: strings.TrimSpace(p.Relationship),
			Email:        strings.TrimSpace(p.Email),
			Phone:        strings.TrimSpace(p.Phone),
		}
	}

	var warnings []FormWarning
	if out.Email != "" && !looksLikeEmail(out.Email) {
		warnings = append(warnings, FormWarning{Field: "email", Message: "email address looks malformed"})
	}
	if out.WikipediaURL != "" && !isWebURL(out.WikipediaURL) {
		warnings = append(warnings, FormWarning{Field: "wikipediaUrl", Message: "wikipedia url should be an http or https link"})
	}
	if out.ContactPerson != nil && out.ContactPerson.Email != "" && !looksLikeEmail(out.ContactPerson.Email) {
		warnings = append(warnings, FormWarning{Field: "contactPerson.email", Message: "email address looks malformed"})
	}
	return out, warnings, nil
}

// ParseTagInput splits a comma separated tag field
func ParseTagInput(raw string) []string {
	return cleanTags([]string{raw})
}

// cleanTags splits on commas; the tags filter is sent comma-joined.
func cleanTags(tags []string) []string {
	out := []string{}
	seen := map[string]struct{}{}
	for _, raw := range tags {
		for _, t := range strings.Split(raw, ",") {
			t = strings.TrimSpace(t)
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

func looksLikeEmail(s string) bool {
	return formValidator.Var(s, "email") == nil
}

func isWebURL(s string) bool {
	lower := strings.ToLower(s)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return false
	}
	return formValidator.Var(s, "url") == nil
}
