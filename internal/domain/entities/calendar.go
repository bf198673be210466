package entities

import (
	"time"
)

// CalendarEvent is the shape the calendar widget consumes: an event list of
// id, title, time span, color and extended properties. The widget's click,
// drop and date-click callbacks route back into the appointment endpoints.
type CalendarEvent struct {
	ID              string                 `json:"id"`
	Title           string                 `json:"title"`
	Start           time.Time              `json:"start"`
	End             time.Time              `json:"end"`
	BackgroundColor string                 `json:"backgroundColor"`
	ExtendedProps   CalendarEventExtension `json:"extendedProps"`
}

// CalendarEventExtension carries the appointment fields the widget callbacks
// need without refetching.
type CalendarEventExtension struct {
	AppointmentID string            `json:"appointment_id"`
	DentistID     string            `json:"dentist_id"`
	Status        AppointmentStatus `json:"status"`
}
