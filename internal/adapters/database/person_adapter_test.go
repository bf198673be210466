package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/smileworks/clinic-backend/internal/adapters/database"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/repositories"
	"github.com/smileworks/clinic-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/smileworks/clinic-backend/pkg/errors"
)

func setupPersonAdapter(t *testing.T) (repositories.PersonRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adapter := database.NewPersonAdapter(postgres.NewClientFromDB(db))
	return adapter, mock
}

func samplePerson() *entities.Person {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	return &entities.Person{
		ID:          "patient-1",
		FullName:    "Jane Mensah",
		Email:       "jane.mensah@example.com",
		PhoneNumber: "0245551234",
		DateOfBirth: time.Date(1991, 7, 22, 0, 0, 0, 0, time.UTC),
		Role:        entities.RolePatient,
		HealthHistory: []entities.HealthHistorySnapshot{
			{Allergies: "penicillin", LastUpdated: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func personColumns() []string {
	return []string{
		"id", "full_name", "email", "phone_number", "date_of_birth",
		"gender", "emergency_name", "emergency_contact", "role",
		"health_history", "created_at", "updated_at",
	}
}

func TestPersonAdapter_Create(t *testing.T) {
	t.Run("inserts a row", func(t *testing.T) {
		adapter, mock := setupPersonAdapter(t)

		mock.ExpectExec(`INSERT INTO "users"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.Create(context.Background(), samplePerson())

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps unique violations to duplicate errors", func(t *testing.T) {
		adapter, mock := setupPersonAdapter(t)

		mock.ExpectExec(`INSERT INTO "users"`).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

		err := adapter.Create(context.Background(), samplePerson())

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeDuplicate))
	})

	t.Run("other database errors stay internal", func(t *testing.T) {
		adapter, mock := setupPersonAdapter(t)

		mock.ExpectExec(`INSERT INTO "users"`).
			WillReturnError(&pq.Error{Code: "53300"})

		err := adapter.Create(context.Background(), samplePerson())

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInternal))
	})
}

func TestPersonAdapter_GetByID(t *testing.T) {
	t.Run("scans the row including health history", func(t *testing.T) {
		adapter, mock := setupPersonAdapter(t)
		now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

		rows := sqlmock.NewRows(personColumns()).AddRow(
			"patient-1", "Jane Mensah", "jane.mensah@example.com", "0245551234",
			time.Date(1991, 7, 22, 0, 0, 0, 0, time.UTC),
			nil, nil, nil, "patient",
			[]byte(`[{"medical_condition":"none","allergies":"penicillin","medications":"","last_updated":"2026-02-01T12:00:00Z"}]`),
			now, now,
		)
		mock.ExpectQuery(`SELECT .+ FROM "users" WHERE \("id" = `).WillReturnRows(rows)

		person, err := adapter.GetByID(context.Background(), "patient-1")

		assert.NoError(t, err)
		assert.Equal(t, "Jane Mensah", person.FullName)
		assert.Equal(t, entities.RolePatient, person.Role)
		require.Len(t, person.HealthHistory, 1)
		assert.Equal(t, "penicillin", person.HealthHistory[0].Allergies)
		assert.Empty(t, person.Gender)
	})

	t.Run("missing row becomes not found", func(t *testing.T) {
		adapter, mock := setupPersonAdapter(t)

		mock.ExpectQuery(`SELECT .+ FROM "users"`).
			WillReturnRows(sqlmock.NewRows(personColumns()))

		_, err := adapter.GetByID(context.Background(), "missing")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestPersonAdapter_Update(t *testing.T) {
	t.Run("updates contact fields", func(t *testing.T) {
		adapter, mock := setupPersonAdapter(t)

		mock.ExpectExec(`UPDATE "users" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.Update(context.Background(), samplePerson())

		assert.NoError(t, err)
	})

	t.Run("zero rows affected becomes not found", func(t *testing.T) {
		adapter, mock := setupPersonAdapter(t)

		mock.ExpectExec(`UPDATE "users" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.Update(context.Background(), samplePerson())

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestPersonAdapter_Delete(t *testing.T) {
	t.Run("deletes by id", func(t *testing.T) {
		adapter, mock := setupPersonAdapter(t)

		mock.ExpectExec(`DELETE FROM "users"`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, adapter.Delete(context.Background(), "patient-1"))
	})

	t.Run("missing row becomes not found", func(t *testing.T) {
		adapter, mock := setupPersonAdapter(t)

		mock.ExpectExec(`DELETE FROM "users"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.Delete(context.Background(), "missing")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestPersonAdapter_SearchByName(t *testing.T) {
	t.Run("projects id and name only", func(t *testing.T) {
		adapter, mock := setupPersonAdapter(t)

		rows := sqlmock.NewRows([]string{"id", "full_name"}).
			AddRow("p1", "Jane Mensah").
			AddRow("p2", "Janet Owusu")
		mock.ExpectQuery(`SELECT "id", "full_name" FROM "users" WHERE \(\("full_name" ILIKE`).
			WillReturnRows(rows)

		refs, err := adapter.SearchByName(context.Background(), "jan", entities.RolePatient, 10)

		assert.NoError(t, err)
		require.Len(t, refs, 2)
		assert.Equal(t, "Jane Mensah", refs[0].FullName)
	})

	t.Run("no matches returns empty", func(t *testing.T) {
		adapter, mock := setupPersonAdapter(t)

		mock.ExpectQuery(`SELECT "id", "full_name" FROM "users"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "full_name"}))

		refs, err := adapter.SearchByName(context.Background(), "zzz", entities.RoleDoctor, 10)

		assert.NoError(t, err)
		assert.Empty(t, refs)
	})
}
