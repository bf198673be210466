package repositories

import (
	"context"

	"github.com/smileworks/clinic-backend/internal/domain/entities"
)

// ProcedureRepository defines the read-only interface for the procedure
// catalog; procedures are seeded externally.
type ProcedureRepository interface {
	// GetByID retrieves a procedure by ID
	GetByID(ctx context.Context, id string) (*entities.Procedure, error)

	// SearchByName performs a case-insensitive substring match over
	// procedure_name
	SearchByName(ctx context.Context, query string, limit int) ([]*entities.Procedure, error)

	// List retrieves the whole catalog
	List(ctx context.Context) ([]*entities.Procedure, error)
}
