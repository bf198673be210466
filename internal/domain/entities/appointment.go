package entities

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCanceled  AppointmentStatus = "canceled"
)

// DefaultProcedureDurationMinutes is assumed whenever an appointment's
// procedure carries no duration.
const DefaultProcedureDurationMinutes = 30

// CanTransitionTo reports whether the status change is legal. Completed and
// canceled are terminal; the only real transitions are scheduled→completed
// and scheduled→canceled. Writing the same status again is allowed so that
// repeated cancels stay idempotent in effect.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s == next {
		return true
	}
	if s != AppointmentStatusScheduled {
		return false
	}
	return next == AppointmentStatusCompleted || next == AppointmentStatusCanceled
}

// HistoryEntry is one immutable treatment-history record appended to an
// appointment after a visit. Entries are never edited or removed.
type HistoryEntry struct {
	ProcedureName      string    `json:"procedure_name"`
	Notes              string    `json:"notes,omitempty"`
	FileURL            string    `json:"file_url,omitempty"`
	ProcedureDetails   string    `json:"procedure_details,omitempty"`
	TreatmentMaterials string    `json:"treatment_materials,omitempty"`
	RecordedAt         time.Time `json:"recorded_at"`
}

// Empty reports whether the entry carries no treatment information at all
func (e HistoryEntry) Empty() bool {
	return e.Notes == "" && e.FileURL == "" && e.ProcedureDetails == "" && e.TreatmentMaterials == ""
}

// Appointment associates one patient, one dentist, one procedure and a start
// instant. The end is always derived from start + procedure duration and is
// never stored.
type Appointment struct {
	ID          string            `json:"appointment_id" db:"appointment_id"`
	PatientID   string            `json:"patient_id" db:"patient_id"`
	DentistID   string            `json:"dentist_id" db:"dentist_id"`
	ProcedureID string            `json:"procedure_id" db:"procedure_id"`
	StartTime   time.Time         `json:"appointment_date" db:"appointment_date"`
	Details     string            `json:"appointment_details,omitempty" db:"appointment_details"`
	Status      AppointmentStatus `json:"status" db:"status"`
	History     []HistoryEntry    `json:"history" db:"history"`

	// Joined from the users and procedure tables on reads
	PatientName     string `json:"patient_name,omitempty" db:"-"`
	DentistName     string `json:"dentist_name,omitempty" db:"-"`
	ProcedureName   string `json:"procedure_name,omitempty" db:"-"`
	DurationMinutes int    `json:"duration_minutes,omitempty" db:"-"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// EndTime derives the end of the appointment from its start and the joined
// procedure duration, falling back to the default duration.
func (a *Appointment) EndTime() time.Time {
	d := a.DurationMinutes
	if d <= 0 {
		d = DefaultProcedureDurationMinutes
	}
	return a.StartTime.Add(time.Duration(d) * time.Minute)
}
