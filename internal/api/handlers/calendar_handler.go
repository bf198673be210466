package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/smileworks/clinic-backend/internal/application/services"
	"github.com/smileworks/clinic-backend/internal/domain/entities"
)

// CalendarService defines the interface for the calendar event feed
type CalendarService interface {
	ListEvents(ctx context.Context, query services.CalendarQuery) ([]*entities.CalendarEvent, error)
}

// CalendarHandler serves the event feed the calendar view renders directly
type CalendarHandler struct {
	service CalendarService
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(service CalendarService) *CalendarHandler {
	return &CalendarHandler{
		service: service,
	}
}

// ListEvents handles GET /api/calendar/events
func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	query := services.CalendarQuery{
		DentistID: r.URL.Query().Get("dentist_id"),
		Status:    entities.AppointmentStatus(r.URL.Query().Get("status")),
	}

	if fromStr := r.URL.Query().Get("from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid from date format (use RFC3339)")
			return
		}
		query.From = &from
	}
	if toStr := r.URL.Query().Get("to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid to date format (use RFC3339)")
			return
		}
		query.To = &to
	}

	events, err := h.service.ListEvents(r.Context(), query)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, events)
}
