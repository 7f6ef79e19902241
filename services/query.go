package services

import (
	"strings"

	"prcontacts-backend/models"
)

// ComposePredicate turns the raw listing inputs into a ContactPredicate.
// Blank inputs contribute no constraint.
func ComposePredicate(search string, tags []string, organization string) models.ContactPredicate {
	var p models.ContactPredicate

	for _, term := range strings.Fields(search) {
		p.SearchTerms = appendUnique(p.SearchTerms, strings.ToLower(term))
	}

	for _, tag := range tags {
		if tag = strings.TrimSpace(tag); tag != "" {
			p.Tags = appendUnique(p.Tags, tag)
		}
	}

	p.Organization = strings.TrimSpace(organization)
	return p
}

// SplitTags reads the comma-joined tags query parameter
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func appendUnique(list []string, v string) []string {
	for _, have := range list {
		if have == v {
			return list
		}
	}
	return append(list, v)
}
