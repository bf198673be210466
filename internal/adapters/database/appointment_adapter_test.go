package database_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/smileworks/clinic-backend/internal/adapters/database"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/repositories"
	"github.com/smileworks/clinic-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/smileworks/clinic-backend/pkg/errors"
)

func setupAppointmentAdapter(t *testing.T) (repositories.AppointmentRepository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	adapter := database.NewAppointmentAdapter(postgres.NewClientFromDB(db))
	return adapter, mock
}

func appointmentColumns() []string {
	return []string{
		"appointment_id", "patient_id", "dentist_id", "procedure_id",
		"appointment_date", "appointment_details", "status", "history",
		"created_at", "updated_at",
		"patient_name", "dentist_name", "procedure_name", "duration_minutes",
	}
}

func appointmentRow(rows *sqlmock.Rows, id string, start time.Time, status string) *sqlmock.Rows {
	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id, "patient-1", "dentist-1", "proc-1",
		start, "sensitive molar", status,
		[]byte(`[{"procedure_name":"Root Canal","notes":"first session","recorded_at":"2026-02-01T12:00:00Z"}]`),
		now, now,
		"Jane Mensah", "Dr. Adjei", "Root Canal", 60,
	)
}

func TestAppointmentAdapter_Create(t *testing.T) {
	adapter, mock := setupAppointmentAdapter(t)

	mock.ExpectExec(`INSERT INTO "appointments"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now()
	err := adapter.Create(context.Background(), &entities.Appointment{
		ID:          "appt-1",
		PatientID:   "patient-1",
		DentistID:   "dentist-1",
		ProcedureID: "proc-1",
		StartTime:   time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Status:      entities.AppointmentStatusScheduled,
		History:     []entities.HistoryEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppointmentAdapter_GetByID(t *testing.T) {
	t.Run("joins names and duration", func(t *testing.T) {
		adapter, mock := setupAppointmentAdapter(t)
		start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

		rows := appointmentRow(sqlmock.NewRows(appointmentColumns()), "appt-1", start, "scheduled")
		mock.ExpectQuery(`SELECT .+ FROM "appointments" AS "a" INNER JOIN "users" AS "p"`).
			WillReturnRows(rows)

		appointment, err := adapter.GetByID(context.Background(), "appt-1")

		assert.NoError(t, err)
		assert.Equal(t, "Jane Mensah", appointment.PatientName)
		assert.Equal(t, "Dr. Adjei", appointment.DentistName)
		assert.Equal(t, 60, appointment.DurationMinutes)
		assert.Equal(t, start.Add(60*time.Minute), appointment.EndTime())
		require.Len(t, appointment.History, 1)
		assert.Equal(t, "first session", appointment.History[0].Notes)
	})

	t.Run("missing row becomes not found", func(t *testing.T) {
		adapter, mock := setupAppointmentAdapter(t)

		mock.ExpectQuery(`SELECT .+ FROM "appointments"`).
			WillReturnRows(sqlmock.NewRows(appointmentColumns()))

		_, err := adapter.GetByID(context.Background(), "missing")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestAppointmentAdapter_List(t *testing.T) {
	t.Run("returns matching appointments", func(t *testing.T) {
		adapter, mock := setupAppointmentAdapter(t)

		rows := sqlmock.NewRows(appointmentColumns())
		appointmentRow(rows, "appt-1", time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), "scheduled")
		appointmentRow(rows, "appt-2", time.Date(2026, 3, 10, 11, 0, 0, 0, time.UTC), "scheduled")
		mock.ExpectQuery(`SELECT .+ FROM "appointments" AS "a"`).WillReturnRows(rows)

		appointments, err := adapter.List(context.Background(), repositories.AppointmentFilter{
			DentistID: "dentist-1",
			Status:    entities.AppointmentStatusScheduled,
		})

		assert.NoError(t, err)
		assert.Len(t, appointments, 2)
	})

	t.Run("empty schedule returns no rows", func(t *testing.T) {
		adapter, mock := setupAppointmentAdapter(t)

		mock.ExpectQuery(`SELECT .+ FROM "appointments" AS "a"`).
			WillReturnRows(sqlmock.NewRows(appointmentColumns()))

		appointments, err := adapter.List(context.Background(), repositories.AppointmentFilter{})

		assert.NoError(t, err)
		assert.Empty(t, appointments)
	})
}

func TestAppointmentAdapter_Updates(t *testing.T) {
	t.Run("update start time", func(t *testing.T) {
		adapter, mock := setupAppointmentAdapter(t)

		mock.ExpectExec(`UPDATE "appointments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.UpdateStartTime(context.Background(), "appt-1", time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC))

		assert.NoError(t, err)
	})

	t.Run("update status on missing row becomes not found", func(t *testing.T) {
		adapter, mock := setupAppointmentAdapter(t)

		mock.ExpectExec(`UPDATE "appointments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.UpdateStatus(context.Background(), "missing", entities.AppointmentStatusCanceled)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("update history rewrites the array", func(t *testing.T) {
		adapter, mock := setupAppointmentAdapter(t)

		mock.ExpectExec(`UPDATE "appointments" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.UpdateHistory(context.Background(), "appt-1", []entities.HistoryEntry{
			{ProcedureName: "Root Canal", Notes: "second session", RecordedAt: time.Now()},
		})

		assert.NoError(t, err)
	})
}

func TestAppointmentAdapter_DeleteByPatient(t *testing.T) {
	t.Run("zero deleted rows is not an error", func(t *testing.T) {
		adapter, mock := setupAppointmentAdapter(t)

		mock.ExpectExec(`DELETE FROM "appointments"`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, adapter.DeleteByPatient(context.Background(), "patient-1"))
	})
}
