package repositories

import (
	"context"

	"github.com/smileworks/clinic-backend/internal/domain/entities"
)

// PersonRepository defines the interface for the shared users table
type PersonRepository interface {
	// Create inserts a new person row
	Create(ctx context.Context, person *entities.Person) error

	// GetByID retrieves a person by ID
	GetByID(ctx context.Context, id string) (*entities.Person, error)

	// Update persists contact fields and the health-history snapshots.
	// Role is immutable and never written by Update.
	Update(ctx context.Context, person *entities.Person) error

	// Delete removes a person row. Callers must delete the person's
	// appointments first; the gateway holds no cascade of its own.
	Delete(ctx context.Context, id string) error

	// SearchByName performs a case-insensitive substring match over
	// full_name, filtered by role, projecting id and display name only
	SearchByName(ctx context.Context, query string, role entities.Role, limit int) ([]*entities.PersonRef, error)

	// ListByRole retrieves all persons with the given role
	ListByRole(ctx context.Context, role entities.Role) ([]*entities.Person, error)
}
