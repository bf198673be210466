package repositories

import (
	"context"
	"time"

	"github.com/smileworks/clinic-backend/internal/domain/entities"
)

// AppointmentFilter defines filters for listing appointments. Reads always
// join patient and dentist names plus the procedure name and duration.
type AppointmentFilter struct {
	DentistID string
	PatientID string
	Status    entities.AppointmentStatus
	From      *time.Time
	To        *time.Time
	Ascending bool
}

// AppointmentRepository defines the interface for appointment data
// operations. Every call is an independent gateway request; no transaction
// spans multiple calls.
type AppointmentRepository interface {
	// Create inserts a new appointment row
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment with joined names and duration
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// List retrieves appointments matching the filter
	List(ctx context.Context, filter AppointmentFilter) ([]*entities.Appointment, error)

	// UpdateStartTime moves an appointment; nothing else changes
	UpdateStartTime(ctx context.Context, id string, start time.Time) error

	// UpdateStatus overwrites the status by primary key
	UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) error

	// UpdateHistory rewrites the full history array. The lifecycle
	// manager only ever appends before calling this.
	UpdateHistory(ctx context.Context, id string, history []entities.HistoryEntry) error

	// DeleteByPatient removes every appointment referencing the patient
	DeleteByPatient(ctx context.Context, patientID string) error
}
