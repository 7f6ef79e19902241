package services

import (
	"testing"

	"prcontacts-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestComposePredicate(t *testing.T) {
	tests := []struct {
		name         string
		search       string
		tags         []string
		organization string
		want         models.ContactPredicate
	}{
		{
			name: "blank inputs impose nothing",
			want: models.ContactPredicate{},
		},
		{
			name:   "search is tokenised and lowercased",
			search: "  Jane   PLANET jane ",
			want:   models.ContactPredicate{SearchTerms: []string{"jane", "planet"}},
		},
		{
			name: "tags are trimmed and blanks dropped",
			tags: []string{" press", "", "tv ", "press", "   "},
			want: models.ContactPredicate{Tags: []string{"press", "tv"}},
		},
		{
			name:         "organization is trimmed",
			organization: " Daily Planet ",
			want:         models.ContactPredicate{Organization: "Daily Planet"},
		},
		{
			name:         "all constraints",
			search:       "editor",
			tags:         []string{"vip"},
			organization: "BBC",
			want: models.ContactPredicate{
				SearchTerms:  []string{"editor"},
				Tags:         []string{"vip"},
				Organization: "BBC",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComposePredicate(tt.search, tt.tags, tt.organization)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want.IsEmpty(), got.IsEmpty())
		})
	}
}

func TestSplitTags(t *testing.T) {
	assert.Nil(t, SplitTags(""))
	assert.Nil(t, SplitTags("   "))
	assert.Equal(t, []string{"a"}, SplitTags("a"))
	assert.Equal(t, []string{"a", " b", ""}, SplitTags("a, b,"))

	p := ComposePredicate("", SplitTags("a, b,"), "")
	assert.Equal(t, []string{"a", "b"}, p.Tags)
}
