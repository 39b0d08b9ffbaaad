package forms

import (
	"github.com/driftwatch/driftwatch/pkg/drift"
)

// Report aggregates one form validation pass.
type Report struct {
	Forms   []FormSchema `json:"forms"`
	Results []Result     `json:"results"`

	// Suggestions holds proposed ALTER TABLE statements; they are
	// never executed automatically.
	Suggestions []drift.Suggestion `json:"suggestions,omitempty"`

	// Warnings aggregates non-fatal findings such as unmatched forms.
	Warnings []string `json:"warnings,omitempty"`

	// Skipped lists source files that failed to parse and were
	// passed over with a warning.
	Skipped []string `json:"skipped,omitempty"`
}
