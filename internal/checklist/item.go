// Package checklist defines the checklist item record and parses the nested
// checklist document into a flat item list.
package checklist

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/hans-cyfrin/solodit-checklist-matcher/internal/embedding"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Item is one checklist entry. ID and Question are the load-bearing fields;
// everything else enriches the embedding text or the displayed match.
type Item struct {
	ID          string   `json:"id" validate:"required"`
	Category    string   `json:"category"`
	Question    string   `json:"question" validate:"required"`
	Description string   `json:"description"`
	Remediation string   `json:"remediation"`
	References  []string `json:"references,omitempty"`
}

// Validate checks that the item carries the required fields. Items failing
// validation are skipped at the sync boundary rather than aborting it.
func (it Item) Validate() error {
	if err := validate.Struct(it); err != nil {
		return fmt.Errorf("checklist item %q invalid: %w", it.ID, err)
	}
	return nil
}

// EmbeddingText returns the canonical text embedded for this item: question,
// description and remediation joined in salience order, with the category as
// a label prefix when present. An item whose text fields are all blank
// yields the empty string and embeds as the zero sentinel.
func (it Item) EmbeddingText() string {
	return embedding.NormalizeLabeled(it.Category, it.Question, it.Description, it.Remediation)
}
