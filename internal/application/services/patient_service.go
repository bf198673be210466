package services

import (
	"context"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
	"github.com/smileworks/clinic-backend/internal/domain/providers"
	"github.com/smileworks/clinic-backend/internal/domain/repositories"
	apperrors "github.com/smileworks/clinic-backend/pkg/errors"
)

const minPhoneDigits = 10

// RegisterPatientInput carries the registration form fields
type RegisterPatientInput struct {
	FullName         string `json:"full_name"`
	Email            string `json:"email"`
	PhoneNumber      string `json:"phone_number"`
	DateOfBirth      string `json:"date_of_birth"`
	Gender           string `json:"gender"`
	EmergencyName    string `json:"emergency_name"`
	EmergencyContact string `json:"emergency_contact"`
	MedicalCondition string `json:"medical_condition"`
	Allergies        string `json:"allergies"`
	Medications      string `json:"medications"`
}

// UpdateProfileInput carries the editable profile fields. A nil pointer
// leaves the field untouched.
type UpdateProfileInput struct {
	FullName         *string `json:"full_name"`
	PhoneNumber      *string `json:"phone_number"`
	Gender           *string `json:"gender"`
	EmergencyName    *string `json:"emergency_name"`
	EmergencyContact *string `json:"emergency_contact"`
	MedicalCondition *string `json:"medical_condition"`
	Allergies        *string `json:"allergies"`
	Medications      *string `json:"medications"`
}

// PatientProfile bundles a patient with their appointment history
type PatientProfile struct {
	Person       *entities.Person        `json:"patient"`
	Appointments []*entities.Appointment `json:"appointments"`
}

// PatientService handles patient registration and profile management
type PatientService struct {
	personRepo      repositories.PersonRepository
	appointmentRepo repositories.AppointmentRepository
	mailer          providers.Mailer
	searchProvider  providers.DirectorySearchProvider
}

// NewPatientService creates a new patient service. Mailer and search
// provider may be nil; both are best-effort side channels.
func NewPatientService(
	personRepo repositories.PersonRepository,
	appointmentRepo repositories.AppointmentRepository,
	mailer providers.Mailer,
	searchProvider providers.DirectorySearchProvider,
) *PatientService {
	return &PatientService{
		personRepo:      personRepo,
		appointmentRepo: appointmentRepo,
		mailer:          mailer,
		searchProvider:  searchProvider,
	}
}

// Register validates the registration form and creates a new patient with
// an initial health-history snapshot.
func (s *PatientService) Register(ctx context.Context, input RegisterPatientInput) (*entities.Person, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, apperrors.NewValidationError("full name is required")
	}

	email := strings.TrimSpace(strings.ToLower(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.NewValidationError("invalid email address")
	}

	if countDigits(input.PhoneNumber) < minPhoneDigits {
		return nil, apperrors.NewValidationError("phone number must contain at least 10 digits")
	}

	dob, err := time.ParseInLocation(dateLayout, strings.TrimSpace(input.DateOfBirth), time.UTC)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid date of birth, expected YYYY-MM-DD")
	}

	now := time.Now()
	person := &entities.Person{
		ID:               uuid.New().String(),
		FullName:         fullName,
		Email:            email,
		PhoneNumber:      strings.TrimSpace(input.PhoneNumber),
		DateOfBirth:      dob,
		Gender:           strings.TrimSpace(input.Gender),
		EmergencyName:    strings.TrimSpace(input.EmergencyName),
		EmergencyContact: strings.TrimSpace(input.EmergencyContact),
		Role:             entities.RolePatient,
		HealthHistory: []entities.HealthHistorySnapshot{
			{
				MedicalCondition: strings.TrimSpace(input.MedicalCondition),
				Allergies:        strings.TrimSpace(input.Allergies),
				Medications:      strings.TrimSpace(input.Medications),
				LastUpdated:      now,
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.personRepo.Create(ctx, person); err != nil {
		return nil, err
	}

	// Welcome mail and index updates must not fail a successful registration
	if s.mailer != nil {
		if err := s.mailer.SendWelcome(ctx, person.Email, person.FullName); err != nil {
			log.Warn().Err(err).Str("patient_id", person.ID).Msg("failed to send welcome email")
		}
	}
	s.indexPatient(ctx, person)

	return person, nil
}

// GetProfile retrieves a patient together with their appointments in
// chronological order.
func (s *PatientService) GetProfile(ctx context.Context, id string) (*PatientProfile, error) {
	person, err := s.personRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	appointments, err := s.appointmentRepo.List(ctx, repositories.AppointmentFilter{
		PatientID: id,
		Ascending: true,
	})
	if err != nil {
		return nil, err
	}

	return &PatientProfile{Person: person, Appointments: appointments}, nil
}

// UpdateProfile applies contact-field edits and replaces the latest
// health-history snapshot. Role and email stay fixed.
func (s *PatientService) UpdateProfile(ctx context.Context, id string, input UpdateProfileInput) (*entities.Person, error) {
	person, err := s.personRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, apperrors.NewValidationError("full name cannot be empty")
		}
		person.FullName = name
	}
	if input.PhoneNumber != nil {
		if countDigits(*input.PhoneNumber) < minPhoneDigits {
			return nil, apperrors.NewValidationError("phone number must contain at least 10 digits")
		}
		person.PhoneNumber = strings.TrimSpace(*input.PhoneNumber)
	}
	if input.Gender != nil {
		person.Gender = strings.TrimSpace(*input.Gender)
	}
	if input.EmergencyName != nil {
		person.EmergencyName = strings.TrimSpace(*input.EmergencyName)
	}
	if input.EmergencyContact != nil {
		person.EmergencyContact = strings.TrimSpace(*input.EmergencyContact)
	}

	if input.MedicalCondition != nil || input.Allergies != nil || input.Medications != nil {
		snapshot := latestSnapshot(person.HealthHistory)
		if input.MedicalCondition != nil {
			snapshot.MedicalCondition = strings.TrimSpace(*input.MedicalCondition)
		}
		if input.Allergies != nil {
			snapshot.Allergies = strings.TrimSpace(*input.Allergies)
		}
		if input.Medications != nil {
			snapshot.Medications = strings.TrimSpace(*input.Medications)
		}
		snapshot.LastUpdated = time.Now()

		if len(person.HealthHistory) == 0 {
			person.HealthHistory = []entities.HealthHistorySnapshot{snapshot}
		} else {
			person.HealthHistory[len(person.HealthHistory)-1] = snapshot
		}
	}

	person.UpdatedAt = time.Now()
	if err := s.personRepo.Update(ctx, person); err != nil {
		return nil, err
	}

	s.indexPatient(ctx, person)
	return person, nil
}

// Delete removes a patient and every appointment referencing them. The
// gateway holds no cascade, so appointments go first.
func (s *PatientService) Delete(ctx context.Context, id string) error {
	person, err := s.personRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if person.Role != entities.RolePatient {
		return apperrors.NewValidationError("only patient records can be deleted")
	}

	if err := s.appointmentRepo.DeleteByPatient(ctx, id); err != nil {
		return err
	}
	if err := s.personRepo.Delete(ctx, id); err != nil {
		return err
	}

	if s.searchProvider != nil {
		if err := s.searchProvider.Delete(ctx, providers.DirectoryCategoryPatients, id); err != nil {
			log.Warn().Err(err).Str("patient_id", id).Msg("failed to remove patient from directory index")
		}
	}

	return nil
}

func (s *PatientService) indexPatient(ctx context.Context, person *entities.Person) {
	if s.searchProvider == nil {
		return
	}
	candidate := providers.DirectoryCandidate{ID: person.ID, DisplayName: person.FullName}
	if err := s.searchProvider.Index(ctx, providers.DirectoryCategoryPatients, candidate); err != nil {
		log.Warn().Err(err).Str("patient_id", person.ID).Msg("failed to index patient in directory")
	}
}

func latestSnapshot(history []entities.HealthHistorySnapshot) entities.HealthHistorySnapshot {
	if len(history) == 0 {
		return entities.HealthHistorySnapshot{}
	}
	return history[len(history)-1]
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
