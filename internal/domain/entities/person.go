package entities

import (
	"time"
)

// Role discriminates the shared users table into patients and dentists
type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
)

// HealthHistorySnapshot is one health-history intake record embedded in a
// patient row. Profile edits replace the latest snapshot rather than append.
type HealthHistorySnapshot struct {
	MedicalCondition string    `json:"medical_condition"`
	Allergies        string    `json:"allergies"`
	Medications      string    `json:"medications"`
	LastUpdated      time.Time `json:"last_updated"`
}

// Person represents a human record in the shared directory. Role is
// immutable after creation.
type Person struct {
	ID               string                  `json:"id" db:"id"`
	FullName         string                  `json:"full_name" db:"full_name"`
	Email            string                  `json:"email" db:"email"`
	PhoneNumber      string                  `json:"phone_number" db:"phone_number"`
	DateOfBirth      time.Time               `json:"date_of_birth" db:"date_of_birth"`
	Gender           string                  `json:"gender" db:"gender"`
	EmergencyName    string                  `json:"emergency_name" db:"emergency_name"`
	EmergencyContact string                  `json:"emergency_contact" db:"emergency_contact"`
	Role             Role                    `json:"role" db:"role"`
	HealthHistory    []HealthHistorySnapshot `json:"health_history" db:"health_history"`
	CreatedAt        time.Time               `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at" db:"updated_at"`
}

// PersonRef is the projection returned by directory lookups
type PersonRef struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
}
