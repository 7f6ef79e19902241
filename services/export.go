package services

import (
	"fmt"
	"io"
	"strings"

	"prcontacts-backend/models"

	"github.com/emersion/go-vcard"
)

// ContactToVCard maps a contact onto a vCard 4.0 card
func ContactToVCard(c *models.Contact) vcard.Card {
	card := vcard.Card{}
	card.SetValue(vcard.FieldUID, c.ID)
	card.SetValue(vcard.FieldFormattedName, c.Name)
	card.SetName(splitName(c.Name))

	if c.Organization != "" {
		card.SetValue(vcard.FieldOrganization, c.Organization)
	}
	if c.Position != "" {
		card.SetValue(vcard.FieldTitle, c.Position)
	}
	if c.Email != "" {
		card.Add(vcard.FieldEmail, &vcard.Field{Value: c.Email})
	}
	if c.Phone != "" {
		card.Add(vcard.FieldTelephone, &vcard.Field{Value: c.Phone})
	}
	if c.WikipediaURL != "" {
		card.Add(vcard.FieldURL, &vcard.Field{Value: c.WikipediaURL})
	}
	if c.Notes != "" {
		card.SetValue(vcard.FieldNote, c.Notes)
	}
	if len(c.Tags) > 0 {
		card.SetCategories(c.Tags)
	}
	if p := c.ContactPerson; p != nil && p.Name != "" {
		params := vcard.Params{"VALUE": {"text"}}
		if p.Relationship != "" {
			params["TYPE"] = []string{p.Relationship}
		}
		card.Add(vcard.FieldRelated, &vcard.Field{Value: p.Name, Params: params})
	}
	if !c.UpdatedAt.IsZero() {
		card.SetRevision(c.UpdatedAt)
	}

	vcard.ToV4(card)
	return card
}

// WriteVCards encodes every contact as one vCard stream
func WriteVCards(w io.Writer, contacts []*models.Contact) error {
	enc := vcard.NewEncoder(w)
	for _, c := range contacts {
		if err := enc.Encode(ContactToVCard(c)); err != nil {
			return fmt.Errorf("failed to encode contact %s: %w", c.ID, err)
		}
	}
	return nil
}

// splitName treats the last word as the family name
func splitName(full string) *vcard.Name {
	full = strings.TrimSpace(full)
	name := &vcard.Name{}
	if i := strings.LastIndex(full, " "); i > 0 {
		name.GivenName = strings.TrimSpace(full[:i])
		name.FamilyName = full[i+1:]
	} else {
		name.FamilyName = full
	}
	return name
}
