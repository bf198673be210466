package services_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/providers"
	"github.com/smileworks/clinic-backend/internal/domain/repositories"
)

// Mocks shared by the service tests

type MockAppointmentRepository struct {
	mock.Mock
}

func (m *MockAppointmentRepository) Create(ctx context.Context, appointment *entities.Appointment) error {
	args := m.Called(ctx, appointment)
	return args.Error(0)
}

func (m *MockAppointmentRepository) GetByID(ctx context.Context, id string) (*entities.Appointment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) List(ctx context.Context, filter repositories.AppointmentFilter) ([]*entities.Appointment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Appointment), args.Error(1)
}

func (m *MockAppointmentRepository) UpdateStartTime(ctx context.Context, id string, start time.Time) error {
	args := m.Called(ctx, id, start)
	return args.Error(0)
}

func (m *MockAppointmentRepository) UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockAppointmentRepository) UpdateHistory(ctx context.Context, id string, history []entities.HistoryEntry) error {
	args := m.Called(ctx, id, history)
	return args.Error(0)
}

func (m *MockAppointmentRepository) DeleteByPatient(ctx context.Context, patientID string) error {
	args := m.Called(ctx, patientID)
	return args.Error(0)
}

type MockPersonRepository struct {
	mock.Mock
}

func (m *MockPersonRepository) Create(ctx context.Context, person *entities.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

func (m *MockPersonRepository) GetByID(ctx context.Context, id string) (*entities.Person, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Person), args.Error(1)
}

func (m *MockPersonRepository) Update(ctx context.Context, person *entities.Person) error {
	args := m.Called(ctx, person)
	return args.Error(0)
}

func (m *MockPersonRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockPersonRepository) SearchByName(ctx context.Context, query string, role entities.Role, limit int) ([]*entities.PersonRef, error) {
	args := m.Called(ctx, query, role, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.PersonRef), args.Error(1)
}

func (m *MockPersonRepository) ListByRole(ctx context.Context, role entities.Role) ([]*entities.Person, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Person), args.Error(1)
}

type MockProcedureRepository struct {
	mock.Mock
}

func (m *MockProcedureRepository) GetByID(ctx context.Context, id string) (*entities.Procedure, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Procedure), args.Error(1)
}

func (m *MockProcedureRepository) SearchByName(ctx context.Context, query string, limit int) ([]*entities.Procedure, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Procedure), args.Error(1)
}

func (m *MockProcedureRepository) List(ctx context.Context) ([]*entities.Procedure, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Procedure), args.Error(1)
}

type MockEventBus struct {
	mock.Mock
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error {
	args := m.Called(ctx, channel, event)
	return args.Error(0)
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan *entities.AppointmentEvent), args.Error(1)
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockEventBus) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockSearchProvider struct {
	mock.Mock
}

func (m *MockSearchProvider) Suggest(ctx context.Context, category providers.DirectoryCategory, query string, limit int) ([]providers.DirectoryCandidate, error) {
	args := m.Called(ctx, category, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]providers.DirectoryCandidate), args.Error(1)
}

func (m *MockSearchProvider) Index(ctx context.Context, category providers.DirectoryCategory, candidate providers.DirectoryCandidate) error {
	args := m.Called(ctx, category, candidate)
	return args.Error(0)
}

func (m *MockSearchProvider) Delete(ctx context.Context, category providers.DirectoryCategory, id string) error {
	args := m.Called(ctx, category, id)
	return args.Error(0)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendWelcome(ctx context.Context, toEmail, fullName string) error {
	args := m.Called(ctx, toEmail, fullName)
	return args.Error(0)
}
