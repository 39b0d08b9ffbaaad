package routes

// Report aggregates one route validation pass.
type Report struct {
	// Routes is the discovered inventory, including synthesized
	// routes for uncovered tables.
	Routes []ApiRoute `json:"routes"`

	// Result carries valid/invalid classification and warnings.
	Result Result `json:"result"`

	// Coverage maps tables to the CRUD actions their routes provide.
	Coverage Coverage `json:"coverage,omitempty"`

	// Stubs lists handler files written during this pass (strict
	// mode only). Existing files are never rewritten.
	Stubs []string `json:"stubs,omitempty"`

	// Skipped lists source files that failed to parse and were
	// passed over with a warning.
	Skipped []string `json:"skipped,omitempty"`
}
