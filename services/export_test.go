package services

import (
	"bytes"
	"io"
	"testing"
	"time"

	"prcontacts-backend/models"

	"github.com/emersion/go-vcard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteVCards(t *testing.T) {
	contacts := []*models.Contact{
		{
			ID:            "c1",
			Name:          "Jane Ann Doe",
			Position:      "Editor",
			Organization:  "Daily Planet",
			Email:         "jane@planet.com",
			Phone:         "+1 555 0100",
			WikipediaURL:  "https://en.wikipedia.org/wiki/Jane_Doe",
			Tags:          []string{"press", "vip"},
			Notes:         "prefers email",
			ContactPerson: &models.ContactPerson{Name: "Sam", Relationship: "assistant"},
			UpdatedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		},
		{ID: "c2", Name: "Cher", Tags: []string{}},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteVCards(&buf, contacts))

	dec := vcard.NewDecoder(&buf)

	first, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, "4.0", first.Value(vcard.FieldVersion))
	assert.Equal(t, "c1", first.Value(vcard.FieldUID))
	assert.Equal(t, "Jane Ann Doe", first.PreferredValue(vcard.FieldFormattedName))
	assert.Equal(t, "Doe", first.Name().FamilyName)
	assert.Equal(t, "Jane Ann", first.Name().GivenName)
	assert.Equal(t, "Daily Planet", first.Value(vcard.FieldOrganization))
	assert.Equal(t, "Editor", first.Value(vcard.FieldTitle))
	assert.Equal(t, "jane@planet.com", first.PreferredValue(vcard.FieldEmail))
	assert.Equal(t, "+1 555 0100", first.PreferredValue(vcard.FieldTelephone))
	assert.Equal(t, []string{"press", "vip"}, first.Categories())
	assert.Equal(t, "Sam", first.Value(vcard.FieldRelated))
	rev, err := first.Revision()
	require.NoError(t, err)
	assert.True(t, rev.Equal(contacts[0].UpdatedAt))

	second, err := dec.Decode()
	require.NoError(t, err)
	assert.Equal(t, "Cher", second.Name().FamilyName)
	assert.Empty(t, second.Value(vcard.FieldOrganization))
	assert.Nil(t, second.Categories())

	_, err = dec.Decode()
	assert.Equal(t, io.EOF, err)
}
