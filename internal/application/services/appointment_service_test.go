package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/smileworks/clinic-backend/internal/application/services"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	apperrors "github.com/smileworks/clinic-backend/pkg/errors"
)

func newAppointmentService(repo *MockAppointmentRepository, procedureRepo *MockProcedureRepository, bus *MockEventBus) *services.AppointmentService {
	return services.NewAppointmentService(repo, procedureRepo, services.NewConflictChecker(repo), bus)
}

func validCreateInput() services.CreateAppointmentInput {
	return services.CreateAppointmentInput{
		PatientID:   "patient-1",
		DentistID:   "dentist-1",
		ProcedureID: "proc-1",
		Date:        "2026-03-10",
		Time:        "09:00",
		Details:     "sensitive molar",
	}
}

func TestAppointmentService_Create(t *testing.T) {
	t.Run("books a free slot", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		procedureRepo := new(MockProcedureRepository)
		bus := new(MockEventBus)
		service := newAppointmentService(repo, procedureRepo, bus)

		procedureRepo.On("GetByID", mock.Anything, "proc-1").
			Return(&entities.Procedure{ID: "proc-1", Name: "Root Canal", DurationMinutes: 60}, nil)
		repo.On("List", mock.Anything, mock.Anything).Return([]*entities.Appointment{}, nil)
		repo.On("Create", mock.Anything, mock.MatchedBy(func(a *entities.Appointment) bool {
			return a.ID != "" &&
				a.Status == entities.AppointmentStatusScheduled &&
				a.StartTime.Equal(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)) &&
				len(a.History) == 0
		})).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.MatchedBy(func(e *entities.AppointmentEvent) bool {
			return e.Type == entities.AppointmentEventCreated && e.DentistID == "dentist-1"
		})).Return(nil)

		appointment, err := service.Create(context.Background(), validCreateInput())

		assert.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusScheduled, appointment.Status)
		repo.AssertExpectations(t)
	})

	t.Run("rejects missing fields before touching the gateway", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		procedureRepo := new(MockProcedureRepository)
		service := newAppointmentService(repo, procedureRepo, new(MockEventBus))

		input := validCreateInput()
		input.DentistID = ""
		input.Time = ""

		_, err := service.Create(context.Background(), input)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		assert.Contains(t, err.Error(), "dentist_id")
		assert.Contains(t, err.Error(), "appointment_time")
		procedureRepo.AssertNotCalled(t, "GetByID")
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("rejects malformed date", func(t *testing.T) {
		service := newAppointmentService(new(MockAppointmentRepository), new(MockProcedureRepository), new(MockEventBus))

		input := validCreateInput()
		input.Date = "10-03-2026"

		_, err := service.Create(context.Background(), input)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
	})

	t.Run("refuses an occupied slot", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		procedureRepo := new(MockProcedureRepository)
		service := newAppointmentService(repo, procedureRepo, new(MockEventBus))

		procedureRepo.On("GetByID", mock.Anything, "proc-1").
			Return(&entities.Procedure{ID: "proc-1", DurationMinutes: 60}, nil)
		repo.On("List", mock.Anything, mock.Anything).Return([]*entities.Appointment{
			{
				ID:              "existing",
				DentistID:       "dentist-1",
				StartTime:       time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC),
				Status:          entities.AppointmentStatusScheduled,
				DurationMinutes: 30,
			},
		}, nil)

		_, err := service.Create(context.Background(), validCreateInput())

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("unknown procedure surfaces as not found", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		procedureRepo := new(MockProcedureRepository)
		service := newAppointmentService(repo, procedureRepo, new(MockEventBus))

		procedureRepo.On("GetByID", mock.Anything, "proc-1").
			Return(nil, apperrors.NewNotFoundError("procedure with id proc-1 not found"))

		_, err := service.Create(context.Background(), validCreateInput())

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})

	t.Run("booking survives a failed event publish", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		procedureRepo := new(MockProcedureRepository)
		bus := new(MockEventBus)
		service := newAppointmentService(repo, procedureRepo, bus)

		procedureRepo.On("GetByID", mock.Anything, "proc-1").
			Return(&entities.Procedure{ID: "proc-1", DurationMinutes: 30}, nil)
		repo.On("List", mock.Anything, mock.Anything).Return([]*entities.Appointment{}, nil)
		repo.On("Create", mock.Anything, mock.Anything).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

		appointment, err := service.Create(context.Background(), validCreateInput())

		assert.NoError(t, err)
		assert.NotNil(t, appointment)
	})
}

func TestAppointmentService_Reschedule(t *testing.T) {
	existing := func() *entities.Appointment {
		return &entities.Appointment{
			ID:              "appt-1",
			DentistID:       "dentist-1",
			StartTime:       time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			Status:          entities.AppointmentStatusScheduled,
			DurationMinutes: 30,
		}
	}

	t.Run("moves only the start time", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newAppointmentService(repo, new(MockProcedureRepository), bus)

		newStart := time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC)
		repo.On("GetByID", mock.Anything, "appt-1").Return(existing(), nil)
		repo.On("UpdateStartTime", mock.Anything, "appt-1", newStart).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.MatchedBy(func(e *entities.AppointmentEvent) bool {
			return e.Type == entities.AppointmentEventRescheduled
		})).Return(nil)

		appointment, err := service.Reschedule(context.Background(), "appt-1", "2026-03-11", "14:00")

		assert.NoError(t, err)
		assert.Equal(t, newStart, appointment.StartTime)
		repo.AssertNotCalled(t, "List")
		repo.AssertExpectations(t)
	})

	t.Run("recheck flag excludes the appointment's own slot", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newAppointmentService(repo, new(MockProcedureRepository), bus)
		service.RecheckOnReschedule = true

		repo.On("GetByID", mock.Anything, "appt-1").Return(existing(), nil)
		repo.On("List", mock.Anything, mock.Anything).Return([]*entities.Appointment{existing()}, nil)
		repo.On("UpdateStartTime", mock.Anything, "appt-1", mock.Anything).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		// Rebooking the very slot it already holds must not conflict
		_, err := service.Reschedule(context.Background(), "appt-1", "2026-03-10", "09:00")

		assert.NoError(t, err)
	})

	t.Run("recheck flag refuses another dentist booking", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		service := newAppointmentService(repo, new(MockProcedureRepository), new(MockEventBus))
		service.RecheckOnReschedule = true

		other := existing()
		other.ID = "appt-2"
		other.StartTime = time.Date(2026, 3, 11, 14, 0, 0, 0, time.UTC)

		repo.On("GetByID", mock.Anything, "appt-1").Return(existing(), nil)
		repo.On("List", mock.Anything, mock.Anything).Return([]*entities.Appointment{other}, nil)

		_, err := service.Reschedule(context.Background(), "appt-1", "2026-03-11", "14:00")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeConflict))
		repo.AssertNotCalled(t, "UpdateStartTime")
	})

	t.Run("unknown appointment", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		service := newAppointmentService(repo, new(MockProcedureRepository), new(MockEventBus))

		repo.On("GetByID", mock.Anything, "missing").
			Return(nil, apperrors.NewNotFoundError("appointment with id missing not found"))

		_, err := service.Reschedule(context.Background(), "missing", "2026-03-11", "14:00")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
	})
}

func TestAppointmentService_Cancel(t *testing.T) {
	t.Run("cancels a scheduled appointment", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newAppointmentService(repo, new(MockProcedureRepository), bus)

		repo.On("GetByID", mock.Anything, "appt-1").Return(&entities.Appointment{
			ID:        "appt-1",
			DentistID: "dentist-1",
			Status:    entities.AppointmentStatusScheduled,
		}, nil)
		repo.On("UpdateStatus", mock.Anything, "appt-1", entities.AppointmentStatusCanceled).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.MatchedBy(func(e *entities.AppointmentEvent) bool {
			return e.Type == entities.AppointmentEventCanceled && e.Status == entities.AppointmentStatusCanceled
		})).Return(nil)

		err := service.Cancel(context.Background(), "appt-1")

		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("canceling twice still writes the status", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newAppointmentService(repo, new(MockProcedureRepository), bus)

		repo.On("GetByID", mock.Anything, "appt-1").Return(&entities.Appointment{
			ID:     "appt-1",
			Status: entities.AppointmentStatusCanceled,
		}, nil)
		repo.On("UpdateStatus", mock.Anything, "appt-1", entities.AppointmentStatusCanceled).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		err := service.Cancel(context.Background(), "appt-1")

		assert.NoError(t, err)
		repo.AssertCalled(t, "UpdateStatus", mock.Anything, "appt-1", entities.AppointmentStatusCanceled)
	})

	t.Run("a completed appointment cannot be canceled", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		service := newAppointmentService(repo, new(MockProcedureRepository), new(MockEventBus))

		repo.On("GetByID", mock.Anything, "appt-1").Return(&entities.Appointment{
			ID:     "appt-1",
			Status: entities.AppointmentStatusCompleted,
		}, nil)

		err := service.Cancel(context.Background(), "appt-1")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		repo.AssertNotCalled(t, "UpdateStatus")
	})
}

func TestAppointmentService_ChangeStatus(t *testing.T) {
	t.Run("completes a scheduled appointment", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		bus := new(MockEventBus)
		service := newAppointmentService(repo, new(MockProcedureRepository), bus)

		repo.On("GetByID", mock.Anything, "appt-1").Return(&entities.Appointment{
			ID:     "appt-1",
			Status: entities.AppointmentStatusScheduled,
		}, nil)
		repo.On("UpdateStatus", mock.Anything, "appt-1", entities.AppointmentStatusCompleted).Return(nil)
		bus.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		appointment, err := service.ChangeStatus(context.Background(), "appt-1", entities.AppointmentStatusCompleted)

		assert.NoError(t, err)
		assert.Equal(t, entities.AppointmentStatusCompleted, appointment.Status)
	})

	t.Run("completed cannot go back to scheduled", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		service := newAppointmentService(repo, new(MockProcedureRepository), new(MockEventBus))

		repo.On("GetByID", mock.Anything, "appt-1").Return(&entities.Appointment{
			ID:     "appt-1",
			Status: entities.AppointmentStatusCompleted,
		}, nil)

		_, err := service.ChangeStatus(context.Background(), "appt-1", entities.AppointmentStatusScheduled)

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		repo.AssertNotCalled(t, "UpdateStatus")
	})

	t.Run("rejects unknown status values", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		service := newAppointmentService(repo, new(MockProcedureRepository), new(MockEventBus))

		_, err := service.ChangeStatus(context.Background(), "appt-1", "archived")

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		repo.AssertNotCalled(t, "GetByID")
	})
}

func TestAppointmentService_AppendHistory(t *testing.T) {
	t.Run("appends and preserves earlier entries", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		service := newAppointmentService(repo, new(MockProcedureRepository), new(MockEventBus))

		earlier := entities.HistoryEntry{
			ProcedureName: "Cleaning",
			Notes:         "initial visit",
			RecordedAt:    time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC),
		}
		repo.On("GetByID", mock.Anything, "appt-1").Return(&entities.Appointment{
			ID:            "appt-1",
			ProcedureName: "Root Canal",
			History:       []entities.HistoryEntry{earlier},
		}, nil)
		repo.On("UpdateHistory", mock.Anything, "appt-1", mock.MatchedBy(func(h []entities.HistoryEntry) bool {
			return len(h) == 2 && h[0] == earlier && h[1].Notes == "second session" && !h[1].RecordedAt.IsZero()
		})).Return(nil)

		appointment, err := service.AppendHistory(context.Background(), "appt-1", entities.HistoryEntry{Notes: "second session"})

		assert.NoError(t, err)
		assert.Len(t, appointment.History, 2)
		// Entry inherits the appointment's procedure name when omitted
		assert.Equal(t, "Root Canal", appointment.History[1].ProcedureName)
		repo.AssertExpectations(t)
	})

	t.Run("rejects an empty entry", func(t *testing.T) {
		repo := new(MockAppointmentRepository)
		service := newAppointmentService(repo, new(MockProcedureRepository), new(MockEventBus))

		_, err := service.AppendHistory(context.Background(), "appt-1", entities.HistoryEntry{})

		assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeValidation))
		repo.AssertNotCalled(t, "GetByID")
	})
}
