package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/repositories"
	"github.com/smileworks/clinic-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/smileworks/clinic-backend/pkg/errors"
)

// AppointmentAdapter implements the AppointmentRepository interface
type AppointmentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewAppointmentAdapter creates a new appointment adapter
func NewAppointmentAdapter(client *postgres.Client) repositories.AppointmentRepository {
	return &AppointmentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new appointment row
func (a *AppointmentAdapter) Create(ctx context.Context, appointment *entities.Appointment) error {
	history, err := json.Marshal(appointment.History)
	if err != nil {
		return apperrors.NewInternalError("failed to encode history", err)
	}

	record := goqu.Record{
		"appointment_id":      appointment.ID,
		"patient_id":          appointment.PatientID,
		"dentist_id":          appointment.DentistID,
		"procedure_id":        appointment.ProcedureID,
		"appointment_date":    appointment.StartTime,
		"appointment_details": nullableString(appointment.Details),
		"status":              appointment.Status,
		"history":             history,
		"created_at":          appointment.CreatedAt,
		"updated_at":          appointment.UpdatedAt,
	}

	query, args, err := a.db.Insert("appointments").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create appointment", err)
	}

	return nil
}

// selectWithJoins projects appointment rows together with patient and
// dentist names and the procedure name + duration, mirroring the gateway's
// foreign-key expansion.
func (a *AppointmentAdapter) selectWithJoins() *goqu.SelectDataset {
	return a.db.Select(
		goqu.I("a.appointment_id"),
		goqu.I("a.patient_id"),
		goqu.I("a.dentist_id"),
		goqu.I("a.procedure_id"),
		goqu.I("a.appointment_date"),
		goqu.I("a.appointment_details"),
		goqu.I("a.status"),
		goqu.I("a.history"),
		goqu.I("a.created_at"),
		goqu.I("a.updated_at"),
		goqu.I("p.full_name").As("patient_name"),
		goqu.I("d.full_name").As("dentist_name"),
		goqu.I("pr.procedure_name"),
		goqu.I("pr.duration_minutes"),
	).From(goqu.T("appointments").As("a")).
		Join(goqu.T("users").As("p"), goqu.On(goqu.I("a.patient_id").Eq(goqu.I("p.id")))).
		Join(goqu.T("users").As("d"), goqu.On(goqu.I("a.dentist_id").Eq(goqu.I("d.id")))).
		Join(goqu.T("procedure").As("pr"), goqu.On(goqu.I("a.procedure_id").Eq(goqu.I("pr.procedure_id"))))
}

// GetByID retrieves an appointment with joined names and duration
func (a *AppointmentAdapter) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	query, args, err := a.selectWithJoins().
		Where(goqu.I("a.appointment_id").Eq(id)).
		ToSQL()

	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	appointment, err := scanAppointment(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get appointment", err)
	}

	return appointment, nil
}

// List retrieves appointments matching the filter
func (a *AppointmentAdapter) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	ds := a.selectWithJoins()

	if filter.DentistID != "" {
		ds = ds.Where(goqu.I("a.dentist_id").Eq(filter.DentistID))
	}
	if filter.PatientID != "" {
		ds = ds.Where(goqu.I("a.patient_id").Eq(filter.PatientID))
	}
	if filter.Status != "" {
		ds = ds.Where(goqu.I("a.status").Eq(filter.Status))
	}
	if filter.From != nil {
		ds = ds.Where(goqu.I("a.appointment_date").Gte(*filter.From))
	}
	if filter.To != nil {
		ds = ds.Where(goqu.I("a.appointment_date").Lt(*filter.To))
	}

	if filter.Ascending {
		ds = ds.Order(goqu.I("a.appointment_date").Asc())
	} else {
		ds = ds.Order(goqu.I("a.appointment_date").Desc())
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list appointments", err)
	}
	defer rows.Close()

	var appointments []*entities.Appointment
	for rows.Next() {
		appointment, err := scanAppointment(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan appointment", err)
		}
		appointments = append(appointments, appointment)
	}

	return appointments, nil
}

// UpdateStartTime moves an appointment; nothing else changes
func (a *AppointmentAdapter) UpdateStartTime(ctx context.Context, id string, start time.Time) error {
	return a.updateByID(ctx, id, goqu.Record{
		"appointment_date": start,
		"updated_at":       time.Now(),
	})
}

// UpdateStatus overwrites the status by primary key
func (a *AppointmentAdapter) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) error {
	return a.updateByID(ctx, id, goqu.Record{
		"status":     status,
		"updated_at": time.Now(),
	})
}

// UpdateHistory rewrites the full history array
func (a *AppointmentAdapter) UpdateHistory(ctx context.Context, id string, history []entities.HistoryEntry) error {
	encoded, err := json.Marshal(history)
	if err != nil {
		return apperrors.NewInternalError("failed to encode history", err)
	}

	return a.updateByID(ctx, id, goqu.Record{
		"history":    encoded,
		"updated_at": time.Now(),
	})
}

// DeleteByPatient removes every appointment referencing the patient
func (a *AppointmentAdapter) DeleteByPatient(ctx context.Context, patientID string) error {
	query, args, err := a.db.Delete("appointments").
		Where(goqu.Ex{"patient_id": patientID}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	// Zero rows affected is fine here: a patient without appointments is
	// still deletable.
	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete appointments", err)
	}

	return nil
}

func (a *AppointmentAdapter) updateByID(ctx context.Context, id string, record goqu.Record) error {
	query, args, err := a.db.Update("appointments").
		Set(record).
		Where(goqu.Ex{"appointment_id": id}).
		ToSQL()

	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update appointment", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("appointment with id %s not found", id))
	}

	return nil
}

func scanAppointment(row rowScanner) (*entities.Appointment, error) {
	appointment := &entities.Appointment{}
	var details sql.NullString
	var history []byte

	err := row.Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.DentistID,
		&appointment.ProcedureID,
		&appointment.StartTime,
		&details,
		&appointment.Status,
		&history,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
		&appointment.PatientName,
		&appointment.DentistName,
		&appointment.ProcedureName,
		&appointment.DurationMinutes,
	)
	if err != nil {
		return nil, err
	}

	appointment.Details = details.String

	if len(history) > 0 {
		if err := json.Unmarshal(history, &appointment.History); err != nil {
			return nil, fmt.Errorf("failed to decode history: %w", err)
		}
	}

	return appointment, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
