package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/repositories"
	apperrors "github.com/smileworks/clinic-backend/pkg/errors"
)

// Calendar event colors
const (
	colorScheduled = "#00aee8"
	colorCompleted = "#80cb0f"
	colorCanceled  = "#FF0000"
)

// ColorPolicy selects how calendar events are colored
type ColorPolicy string

const (
	// ColorPolicyStatus colors events by appointment status
	ColorPolicyStatus ColorPolicy = "status"

	// ColorPolicyCategory colors events by procedure category, keying off
	// the procedure name
	ColorPolicyCategory ColorPolicy = "category"
)

// CalendarQuery filters the event feed
type CalendarQuery struct {
	DentistID string
	Status    entities.AppointmentStatus
	From      *time.Time
	To        *time.Time
}

// CalendarService projects appointments into the event shape the calendar
// view renders directly.
type CalendarService struct {
	repo        repositories.AppointmentRepository
	colorPolicy ColorPolicy
}

// NewCalendarService creates a new calendar service
func NewCalendarService(repo repositories.AppointmentRepository, colorPolicy ColorPolicy) *CalendarService {
	if colorPolicy == "" {
		colorPolicy = ColorPolicyStatus
	}
	return &CalendarService{repo: repo, colorPolicy: colorPolicy}
}

// ListEvents returns calendar events for the matching appointments
func (s *CalendarService) ListEvents(ctx context.Context, query CalendarQuery) ([]*entities.CalendarEvent, error) {
	if query.Status != "" {
		switch query.Status {
		case entities.AppointmentStatusScheduled, entities.AppointmentStatusCompleted, entities.AppointmentStatusCanceled:
		default:
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", query.Status))
		}
	}

	appointments, err := s.repo.List(ctx, repositories.AppointmentFilter{
		DentistID: query.DentistID,
		Status:    query.Status,
		From:      query.From,
		To:        query.To,
		Ascending: true,
	})
	if err != nil {
		return nil, err
	}

	events := make([]*entities.CalendarEvent, 0, len(appointments))
	for _, appointment := range appointments {
		events = append(events, s.toEvent(appointment))
	}
	return events, nil
}

func (s *CalendarService) toEvent(appointment *entities.Appointment) *entities.CalendarEvent {
	return &entities.CalendarEvent{
		ID:              appointment.ID,
		Title:           fmt.Sprintf("%s - %s", appointment.ProcedureName, appointment.PatientName),
		Start:           appointment.StartTime,
		End:             appointment.EndTime(),
		BackgroundColor: s.eventColor(appointment),
		ExtendedProps: entities.CalendarEventExtension{
			AppointmentID: appointment.ID,
			DentistID:     appointment.DentistID,
			Status:        appointment.Status,
		},
	}
}

func (s *CalendarService) eventColor(appointment *entities.Appointment) string {
	if s.colorPolicy == ColorPolicyCategory {
		name := strings.ToLower(appointment.ProcedureName)
		switch {
		case strings.Contains(name, "emergency"):
			return colorCanceled
		case strings.Contains(name, "check-up"):
			return colorCompleted
		default:
			return colorScheduled
		}
	}

	switch appointment.Status {
	case entities.AppointmentStatusCompleted:
		return colorCompleted
	case entities.AppointmentStatusCanceled:
		return colorCanceled
	default:
		return colorScheduled
	}
}
