package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/repositories"
	"github.com/smileworks/clinic-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/smileworks/clinic-backend/pkg/errors"
)

// ProcedureAdapter implements the ProcedureRepository interface
type ProcedureAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewProcedureAdapter creates a new procedure adapter
func NewProcedureAdapter(client *postgres.Client) repositories.ProcedureRepository {
	return &ProcedureAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// GetByID retrieves a procedure by ID
func (a *ProcedureAdapter) GetByID(ctx context.Context, id string) (*entities.Procedure, error) {
	query, args, err := a.db.Select("procedure_id", "procedure_name", "duration_minutes").
		From("procedure").
		Where(goqu.Ex{"procedure_id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	procedure := &entities.Procedure{}
	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&procedure.ID,
		&procedure.Name,
		&procedure.DurationMinutes,
	)

	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("procedure with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get procedure", err)
	}

	return procedure, nil
}

// SearchByName performs a case-insensitive substring match over procedure_name
func (a *ProcedureAdapter) SearchByName(ctx context.Context, query string, limit int) ([]*entities.Procedure, error) {
	ds := a.db.Select("procedure_id", "procedure_name", "duration_minutes").
		From("procedure").
		Where(goqu.C("procedure_name").ILike("%" + query + "%")).
		Order(goqu.I("procedure_name").Asc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	sqlQuery, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build search query", err)
	}

	return a.queryProcedures(ctx, sqlQuery, args)
}

// List retrieves the whole catalog
func (a *ProcedureAdapter) List(ctx context.Context) ([]*entities.Procedure, error) {
	query, args, err := a.db.Select("procedure_id", "procedure_name", "duration_minutes").
		From("procedure").
		Order(goqu.I("procedure_name").Asc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	return a.queryProcedures(ctx, query, args)
}

func (a *ProcedureAdapter) queryProcedures(ctx context.Context, query string, args []interface{}) ([]*entities.Procedure, error) {
	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to query procedures", err)
	}
	defer rows.Close()

	var procedures []*entities.Procedure
	for rows.Next() {
		procedure := &entities.Procedure{}
		if err := rows.Scan(&procedure.ID, &procedure.Name, &procedure.DurationMinutes); err != nil {
			return nil, apperrors.NewInternalError("failed to scan procedure", err)
		}
		procedures = append(procedures, procedure)
	}

	return procedures, nil
}
