package routes

import (
	"net/http"

	"github.com/smileworks/clinic-backend/internal/api/handlers"
	"github.com/smileworks/clinic-backend/internal/api/middleware"
	"github.com/smileworks/clinic-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	appointmentHandler *handlers.AppointmentHandler
	patientHandler     *handlers.PatientHandler
	directoryHandler   *handlers.DirectoryHandler
	calendarHandler    *handlers.CalendarHandler
	eventsHandler      *handlers.EventsHandler

	auth    *middleware.AuthMiddleware
	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	appointmentHandler *handlers.AppointmentHandler,
	patientHandler *handlers.PatientHandler,
	directoryHandler *handlers.DirectoryHandler,
	calendarHandler *handlers.CalendarHandler,
	eventsHandler *handlers.EventsHandler,
	auth *middleware.AuthMiddleware,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		appointmentHandler: appointmentHandler,
		patientHandler:     patientHandler,
		directoryHandler:   directoryHandler,
		calendarHandler:    calendarHandler,
		eventsHandler:      eventsHandler,

		auth:    auth,
		metrics: metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)

		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Appointment endpoints
	r.mux.HandleFunc("POST /api/appointments", r.appointmentHandler.CreateAppointment)
	r.mux.HandleFunc("GET /api/appointments", r.appointmentHandler.ListAppointments)
	r.mux.HandleFunc("GET /api/appointments/{id}", r.appointmentHandler.GetAppointment)
	r.mux.HandleFunc("PATCH /api/appointments/{id}/start", r.appointmentHandler.RescheduleAppointment)
	r.mux.HandleFunc("POST /api/appointments/{id}/cancel", r.appointmentHandler.CancelAppointment)

	// Status changes and treatment history stay with clinicians
	r.mux.Handle("PATCH /api/appointments/{id}/status",
		r.auth.RequireRole("doctor", http.HandlerFunc(r.appointmentHandler.ChangeStatus)))
	r.mux.Handle("POST /api/appointments/{id}/history",
		r.auth.RequireRole("doctor", http.HandlerFunc(r.appointmentHandler.AppendHistory)))

	// Patient endpoints
	r.mux.HandleFunc("POST /api/patients", r.patientHandler.RegisterPatient)
	r.mux.HandleFunc("GET /api/patients/{id}", r.patientHandler.GetPatient)
	r.mux.HandleFunc("PATCH /api/patients/{id}", r.patientHandler.UpdatePatient)
	r.mux.Handle("DELETE /api/patients/{id}",
		r.auth.RequireRole("doctor", http.HandlerFunc(r.patientHandler.DeletePatient)))

	// Directory lookup endpoints
	r.mux.HandleFunc("GET /api/directory/{category}", r.directoryHandler.Suggest)

	// Calendar endpoints
	r.mux.HandleFunc("GET /api/calendar/events", r.calendarHandler.ListEvents)

	// Schedule event stream
	if r.eventsHandler != nil {
		r.mux.HandleFunc("GET /api/events/stream", r.eventsHandler.StreamScheduleUpdates)
	}

	// Apply middleware in reverse order (last middleware wraps first)
	// CORS must be outermost so error responses also get CORS headers.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
