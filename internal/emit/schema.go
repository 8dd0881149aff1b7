package emit

import (
	"strconv"

	"github.com/JakeFAU/awards-crawler/internal/award"
)

const (
	listName        = "Australian Web Awards Winners"
	listDescription = "A comprehensive list of Australian Web Awards winners across multiple years and categories"
)

type itemList struct {
	Context     string     `json:"@context"`
	Type        string     `json:"@type"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Elements    []listItem `json:"itemListElement"`
}

type listItem struct {
	Type     string    `json:"@type"`
	Position int       `json:"position"`
	Item     awardItem `json:"item"`
}

type awardItem struct {
	Type        string       `json:"@type"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Image       string       `json:"image"`
	DateAwarded string       `json:"dateAwarded"`
	Recipient   organization `json:"recipient"`
	Awarding    organization `json:"awarding"`
}

type organization struct {
	Type        string  `json:"@type"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

// schemaDocument maps each record to one ListItem, positions starting at 1.
func schemaDocument(records []award.Record) ([]byte, error) {
	doc := itemList{
		Context:     "https://schema.org",
		Type:        "ItemList",
		Name:        listName,
		Description: listDescription,
		Elements:    make([]listItem, 0, len(records)),
	}
	for i, rec := range records {
		description := rec.Description
		if description == "" {
			description = rec.Project + " by " + rec.Agency
		}
		recipientDescription := rec.Description
		doc.Elements = append(doc.Elements, listItem{
			Type:     "ListItem",
			Position: i + 1,
			Item: awardItem{
				Type:        "Award",
				Name:        rec.Category + " Award",
				Description: description,
				Image:       rec.ImageURL,
				DateAwarded: strconv.Itoa(rec.Year),
				Recipient: organization{
					Type:        "Organization",
					Name:        rec.Company,
					Description: &recipientDescription,
				},
				Awarding: organization{Type: "Organization", Name: "Australian Web Awards"},
			},
		})
	}
	return marshalJSON(doc)
}
