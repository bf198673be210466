package providers

import (
	"context"
)

// DirectoryCategory selects which collection a lookup targets
type DirectoryCategory string

const (
	DirectoryCategoryPatients   DirectoryCategory = "patients"
	DirectoryCategoryDentists   DirectoryCategory = "dentists"
	DirectoryCategoryProcedures DirectoryCategory = "procedures"
)

// DirectoryCandidate is one suggestion row returned by a lookup
type DirectoryCandidate struct {
	ID              string `json:"id"`
	DisplayName     string `json:"display_name"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// DirectorySearchProvider is the optional search-index port for directory
// lookups. When absent, lookups fall back to substring matching against the
// gateway.
type DirectorySearchProvider interface {
	// Suggest returns candidates whose display name matches the query
	Suggest(ctx context.Context, category DirectoryCategory, query string, limit int) ([]DirectoryCandidate, error)

	// Index upserts one directory document
	Index(ctx context.Context, category DirectoryCategory, candidate DirectoryCandidate) error

	// Delete removes one directory document
	Delete(ctx context.Context, category DirectoryCategory, id string) error
}
