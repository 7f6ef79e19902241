package client

import (
	"testing"

	"prcontacts-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeContactForm(t *testing.T) {
	out, warnings, err := NormalizeContactForm(models.ContactInput{
		Name:         "  Jane Doe ",
		Organization: " Daily Planet",
		Email:        "jane@planet.com ",
		WikipediaURL: "https://en.wikipedia.org/wiki/Jane_Doe",
		Tags:         []string{" press", "", "press", "tv "},
		ContactPerson: &models.ContactPerson{
			Name:         " Bob ",
			Relationship: "assistant",
		},
	})
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, "Jane Doe", out.Name)
	assert.Equal(t, "Daily Planet", out.Organization)
	assert.Equal(t, "jane@planet.com", out.Email)
	assert.Equal(t, []string{"press", "tv"}, out.Tags)
	require.NotNil(t, out.ContactPerson)
	assert.Equal(t, "Bob", out.ContactPerson.Name)
}

func TestNormalizeContactFormDropsUnnamedPerson(t *testing.T) {
	out, _, err := NormalizeContactForm(models.ContactInput{
		Name:          "Jane",
		ContactPerson: &models.ContactPerson{Name: "  ", Email: "bob@example.com"},
	})
	require.NoError(t, err)
	assert.Nil(t, out.ContactPerson)
	assert.Equal(t, []string{}, out.Tags)
}

func TestNormalizeContactFormRequiresName(t *testing.T) {
	_, _, err := NormalizeContactForm(models.ContactInput{Name: "   ", Email: "jane@planet.com"})
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrValidation)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "name", verr.Field)
}

func TestNormalizeContactFormWarnings(t *testing.T) {
	tests := []struct {
		name   string
		in     models.ContactInput
		fields []string
	}{
		{
			name:   "bad email",
			in:     models.ContactInput{Name: "Jane", Email: "jane-at-planet"},
			fields: []string{"email"},
		},
		{
			name:   "non web url",
			in:     models.ContactInput{Name: "Jane", WikipediaURL: "ftp://example.com/jane"},
			fields: []string{"wikipediaUrl"},
		},
		{
			name:   "relative url",
			in:     models.ContactInput{Name: "Jane", WikipediaURL: "wiki/Jane"},
			fields: []string{"wikipediaUrl"},
		},
		{
			name: "contact person email",
			in: models.ContactInput{
				Name:          "Jane",
				ContactPerson: &models.ContactPerson{Name: "Bob", Email: "bob@"},
			},
			fields: []string{"contactPerson.email"},
		},
		{
			name:   "blank optional fields",
			in:     models.ContactInput{Name: "Jane", Email: " ", WikipediaURL: ""},
			fields: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, warnings, err := NormalizeContactForm(tt.in)
			require.NoError(t, err)

			var fields []string
			for _, w := range warnings {
				fields = append(fields, w.Field)
				assert.NotEmpty(t, w.Message)
			}
			assert.Equal(t, tt.fields, fields)
		})
	}
}

func TestParseTagInput(t *testing.T) {
	assert.Equal(t, []string{"press", "tv", "radio"}, ParseTagInput("press, tv,,radio ,press"))
	assert.Equal(t, []string{}, ParseTagInput("  "))
}

func TestNormalizeContactFormSplitsCommaTags(t *testing.T) {
	out, _, err := NormalizeContactForm(models.ContactInput{
		Name: "Jane Doe",
		Tags: []string{"press, tv", "radio", "tv,", ","},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"press", "tv", "radio"}, out.Tags)
	for _, tag := range out.Tags {
		assert.NotContains(t, tag, ",")
	}
}
