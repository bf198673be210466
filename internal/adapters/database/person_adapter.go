package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/repositories"
	"github.com/smileworks/clinic-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/smileworks/clinic-backend/pkg/errors"
)

const uniqueViolationCode = "23505"

// PersonAdapter implements the PersonRepository interface
type PersonAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPersonAdapter creates a new person adapter
func NewPersonAdapter(client *postgres.Client) repositories.PersonRepository {
	return &PersonAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// isUniqueViolation decides duplicate-key failures by SQLSTATE instead of
// matching error message text.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolationCode
}

// Create inserts a new person row
func (a *PersonAdapter) Create(ctx context.Context, person *entities.Person) error {
	history, err := json.Marshal(person.HealthHistory)
	if err != nil {
		return apperrors.NewInternalError("failed to encode health history", err)
	}

	record := goqu.Record{
		"id":                person.ID,
		"full_name":         person.FullName,
		"email":             person.Email,
		"phone_number":      person.PhoneNumber,
		"date_of_birth":     person.DateOfBirth,
		"gender":            person.Gender,
		"emergency_name":    person.EmergencyName,
		"emergency_contact": person.EmergencyContact,
		"role":              person.Role,
		"health_history":    history,
		"created_at":        person.CreatedAt,
		"updated_at":        person.UpdatedAt,
	}

	query, args, err := a.db.Insert("users").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewDuplicateError("email already exists")
		}
		return apperrors.NewInternalError("failed to create person", err)
	}

	return nil
}

// GetByID retrieves a person by ID
func (a *PersonAdapter) GetByID(ctx context.Context, id string) (*entities.Person, error) {
	query, args, err := a.db.Select(
		"id", "full_name", "email", "phone_number", "date_of_birth",
		"gender", "emergency_name", "emergency_contact", "role",
		"health_history", "created_at", "updated_at",
	).From("users").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	person, err := scanPerson(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("person with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get person", err)
	}

	return person, nil
}

// Update persists contact fields and the health-history snapshots. Role is
// immutable and deliberately left out of the record.
func (a *PersonAdapter) Update(ctx context.Context, person *entities.Person) error {
	person.UpdatedAt = time.Now()

	history, err := json.Marshal(person.HealthHistory)
	if err != nil {
		return apperrors.NewInternalError("failed to encode health history", err)
	}

	record := goqu.Record{
		"full_name":         person.FullName,
		"email":             person.Email,
		"phone_number":      person.PhoneNumber,
		"date_of_birth":     person.DateOfBirth,
		"gender":            person.Gender,
		"emergency_name":    person.EmergencyName,
		"emergency_contact": person.EmergencyContact,
		"health_history":    history,
		"updated_at":        person.UpdatedAt,
	}

	query, args, err := a.db.Update("users").
		Set(record).
		Where(goqu.Ex{"id": person.ID}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.NewDuplicateError("email already exists")
		}
		return apperrors.NewInternalError("failed to update person", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("person with id %s not found", person.ID))
	}

	return nil
}

// Delete removes a person row by primary key
func (a *PersonAdapter) Delete(ctx context.Context, id string) error {
	query, args, err := a.db.Delete("users").
		Where(goqu.Ex{"id": id}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete person", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("person with id %s not found", id))
	}

	return nil
}

// SearchByName performs a case-insensitive substring match over full_name,
// filtered by role, projecting id and display name only
func (a *PersonAdapter) SearchByName(ctx context.Context, query string, role entities.Role, limit int) ([]*entities.PersonRef, error) {
	ds := a.db.Select("id", "full_name").
		From("users").
		Where(
			goqu.C("full_name").ILike("%"+query+"%"),
			goqu.Ex{"role": role},
		).
		Order(goqu.I("full_name").Asc())

	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	sqlQuery, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build search query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to search persons", err)
	}
	defer rows.Close()

	var refs []*entities.PersonRef
	for rows.Next() {
		ref := &entities.PersonRef{}
		if err := rows.Scan(&ref.ID, &ref.FullName); err != nil {
			return nil, apperrors.NewInternalError("failed to scan person", err)
		}
		refs = append(refs, ref)
	}

	return refs, nil
}

// ListByRole retrieves all persons with the given role
func (a *PersonAdapter) ListByRole(ctx context.Context, role entities.Role) ([]*entities.Person, error) {
	query, args, err := a.db.Select(
		"id", "full_name", "email", "phone_number", "date_of_birth",
		"gender", "emergency_name", "emergency_contact", "role",
		"health_history", "created_at", "updated_at",
	).From("users").
		Where(goqu.Ex{"role": role}).
		Order(goqu.I("full_name").Asc()).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list persons", err)
	}
	defer rows.Close()

	var persons []*entities.Person
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan person", err)
		}
		persons = append(persons, person)
	}

	return persons, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPerson(row rowScanner) (*entities.Person, error) {
	person := &entities.Person{}
	var gender, emergencyName, emergencyContact sql.NullString
	var history []byte

	err := row.Scan(
		&person.ID,
		&person.FullName,
		&person.Email,
		&person.PhoneNumber,
		&person.DateOfBirth,
		&gender,
		&emergencyName,
		&emergencyContact,
		&person.Role,
		&history,
		&person.CreatedAt,
		&person.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	person.Gender = gender.String
	person.EmergencyName = emergencyName.String
	person.EmergencyContact = emergencyContact.String

	if len(history) > 0 {
		if err := json.Unmarshal(history, &person.HealthHistory); err != nil {
			return nil, fmt.Errorf("failed to decode health history: %w", err)
		}
	}

	return person, nil
}
