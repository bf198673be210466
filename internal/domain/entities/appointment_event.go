package entities

import (
	"time"
)

// AppointmentEventType identifies what happened to an appointment
type AppointmentEventType string

const (
	AppointmentEventCreated       AppointmentEventType = "appointment.created"
	AppointmentEventRescheduled   AppointmentEventType = "appointment.rescheduled"
	AppointmentEventCanceled      AppointmentEventType = "appointment.canceled"
	AppointmentEventStatusChanged AppointmentEventType = "appointment.status_changed"
)

// AppointmentEvent is published on the event bus whenever the schedule
// changes, so open calendar views can refresh without polling.
type AppointmentEvent struct {
	ID            string               `json:"id"`
	Type          AppointmentEventType `json:"type"`
	AppointmentID string               `json:"appointment_id"`
	DentistID     string               `json:"dentist_id"`
	Status        AppointmentStatus    `json:"status,omitempty"`
	OccurredAt    time.Time            `json:"occurred_at"`
}
