package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/providers"
	"github.com/smileworks/clinic-backend/internal/domain/repositories"
	apperrors "github.com/smileworks/clinic-backend/pkg/errors"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

// CreateAppointmentInput carries the booking form fields. Date and Time are
// kept separate because that is how the booking form submits them.
type CreateAppointmentInput struct {
	PatientID   string `json:"patient_id"`
	DentistID   string `json:"dentist_id"`
	ProcedureID string `json:"procedure_id"`
	Date        string `json:"appointment_date"`
	Time        string `json:"appointment_time"`
	Details     string `json:"appointment_details"`
}

// AppointmentService handles the appointment booking lifecycle
type AppointmentService struct {
	repo            repositories.AppointmentRepository
	procedureRepo   repositories.ProcedureRepository
	conflictChecker *ConflictChecker
	eventBus        providers.EventBus

	// RecheckOnReschedule re-runs conflict detection when an appointment is
	// moved. Off by default: moving an appointment trusts the caller picked
	// a free slot, matching how the booking form behaves.
	RecheckOnReschedule bool
}

// NewAppointmentService creates a new appointment service
func NewAppointmentService(
	repo repositories.AppointmentRepository,
	procedureRepo repositories.ProcedureRepository,
	conflictChecker *ConflictChecker,
	eventBus providers.EventBus,
) *AppointmentService {
	return &AppointmentService{
		repo:            repo,
		procedureRepo:   procedureRepo,
		conflictChecker: conflictChecker,
		eventBus:        eventBus,
	}
}

// Create validates the booking form, checks the dentist's schedule for
// overlaps and inserts a new scheduled appointment.
func (s *AppointmentService) Create(ctx context.Context, input CreateAppointmentInput) (*entities.Appointment, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	start, err := parseStartTime(input.Date, input.Time)
	if err != nil {
		return nil, err
	}

	procedure, err := s.procedureRepo.GetByID(ctx, input.ProcedureID)
	if err != nil {
		return nil, err
	}

	conflict, err := s.conflictChecker.HasConflict(ctx, input.DentistID, start, procedure.DurationMinutes)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperrors.NewConflictError("time slot is already booked")
	}

	now := time.Now()
	appointment := &entities.Appointment{
		ID:          uuid.New().String(),
		PatientID:   input.PatientID,
		DentistID:   input.DentistID,
		ProcedureID: input.ProcedureID,
		StartTime:   start,
		Details:     strings.TrimSpace(input.Details),
		Status:      entities.AppointmentStatusScheduled,
		History:     []entities.HistoryEntry{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, entities.AppointmentEventCreated, appointment.ID, appointment.DentistID, appointment.Status)
	return appointment, nil
}

// GetByID retrieves one appointment with joined names and duration
func (s *AppointmentService) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves appointments matching the filter
func (s *AppointmentService) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	return s.repo.List(ctx, filter)
}

// Reschedule moves an appointment to a new start time. Only the start moves;
// participants, procedure and status are untouched.
func (s *AppointmentService) Reschedule(ctx context.Context, id, date, timeOfDay string) (*entities.Appointment, error) {
	start, err := parseStartTime(date, timeOfDay)
	if err != nil {
		return nil, err
	}

	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.RecheckOnReschedule {
		conflict, err := s.conflictChecker.HasConflictExcluding(ctx, appointment.DentistID, start, appointment.DurationMinutes, appointment.ID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, apperrors.NewConflictError("time slot is already booked")
		}
	}

	if err := s.repo.UpdateStartTime(ctx, id, start); err != nil {
		return nil, err
	}

	appointment.StartTime = start
	s.publishEvent(ctx, entities.AppointmentEventRescheduled, appointment.ID, appointment.DentistID, appointment.Status)
	return appointment, nil
}

// Cancel marks an appointment canceled. Canceling an already-canceled
// appointment succeeds and writes the status again; a completed appointment
// is terminal and cannot be canceled.
func (s *AppointmentService) Cancel(ctx context.Context, id string) error {
	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !appointment.Status.CanTransitionTo(entities.AppointmentStatusCanceled) {
		return apperrors.NewValidationError(fmt.Sprintf("cannot cancel a %s appointment", appointment.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, entities.AppointmentStatusCanceled); err != nil {
		return err
	}

	s.publishEvent(ctx, entities.AppointmentEventCanceled, id, appointment.DentistID, entities.AppointmentStatusCanceled)
	return nil
}

// ChangeStatus applies a status transition. Completed and canceled are
// terminal states and cannot move back to scheduled.
func (s *AppointmentService) ChangeStatus(ctx context.Context, id string, status entities.AppointmentStatus) (*entities.Appointment, error) {
	switch status {
	case entities.AppointmentStatusScheduled, entities.AppointmentStatusCompleted, entities.AppointmentStatusCanceled:
	default:
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", status))
	}

	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !appointment.Status.CanTransitionTo(status) {
		return nil, apperrors.NewValidationError(fmt.Sprintf("cannot change status from %s to %s", appointment.Status, status))
	}

	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return nil, err
	}

	appointment.Status = status
	s.publishEvent(ctx, entities.AppointmentEventStatusChanged, id, appointment.DentistID, status)
	return appointment, nil
}

// AppendHistory records one treatment-history entry on an appointment.
// Entries are append-only; existing entries are never edited or removed.
func (s *AppointmentService) AppendHistory(ctx context.Context, id string, entry entities.HistoryEntry) (*entities.Appointment, error) {
	if entry.Empty() {
		return nil, apperrors.NewValidationError("history entry must carry at least one field")
	}

	appointment, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if entry.ProcedureName == "" {
		entry.ProcedureName = appointment.ProcedureName
	}
	entry.RecordedAt = time.Now()

	history := append(appointment.History, entry)
	if err := s.repo.UpdateHistory(ctx, id, history); err != nil {
		return nil, err
	}

	appointment.History = history
	return appointment, nil
}

func (s *AppointmentService) publishEvent(ctx context.Context, eventType entities.AppointmentEventType, appointmentID, dentistID string, status entities.AppointmentStatus) {
	if s.eventBus == nil {
		return
	}

	event := &entities.AppointmentEvent{
		ID:            uuid.New().String(),
		Type:          eventType,
		AppointmentID: appointmentID,
		DentistID:     dentistID,
		Status:        status,
		OccurredAt:    time.Now(),
	}

	// Delivery is best effort; a booked appointment stays booked even if
	// open calendar views miss the refresh signal.
	for _, channel := range []string{providers.EventChannelScheduleUpdates, providers.GetDentistChannel(dentistID)} {
		if err := s.eventBus.Publish(ctx, channel, event); err != nil {
			log.Warn().Err(err).Str("channel", channel).Str("event", string(eventType)).Msg("failed to publish schedule event")
		}
	}
}

func validateCreateInput(input CreateAppointmentInput) error {
	missing := []string{}
	if strings.TrimSpace(input.PatientID) == "" {
		missing = append(missing, "patient_id")
	}
	if strings.TrimSpace(input.DentistID) == "" {
		missing = append(missing, "dentist_id")
	}
	if strings.TrimSpace(input.ProcedureID) == "" {
		missing = append(missing, "procedure_id")
	}
	if strings.TrimSpace(input.Date) == "" {
		missing = append(missing, "appointment_date")
	}
	if strings.TrimSpace(input.Time) == "" {
		missing = append(missing, "appointment_time")
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

func parseStartTime(date, timeOfDay string) (time.Time, error) {
	start, err := time.ParseInLocation(dateLayout+" "+timeLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(timeOfDay), time.UTC)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("invalid appointment date/time: %s %s", date, timeOfDay))
	}
	return start, nil
}
