package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/smileworks/clinic-backend/internal/domain/providers"
)

// EventsHandler streams schedule changes over Server-Sent Events so open
// calendar views refresh without polling.
type EventsHandler struct {
	eventBus providers.EventBus
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(eventBus providers.EventBus) *EventsHandler {
	return &EventsHandler{
		eventBus: eventBus,
	}
}

// StreamScheduleUpdates handles SSE connections for schedule changes
// GET /api/events/stream?dentist_id=X
func (h *EventsHandler) StreamScheduleUpdates(w http.ResponseWriter, r *http.Request) {
	if h.eventBus == nil {
		respondWithError(w, http.StatusServiceUnavailable, "event stream not available")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	channel := providers.EventChannelScheduleUpdates
	if dentistID := r.URL.Query().Get("dentist_id"); dentistID != "" {
		channel = providers.GetDentistChannel(dentistID)
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		log.Warn().Err(err).Str("channel", channel).Msg("failed to subscribe to schedule events")
		respondWithError(w, http.StatusInternalServerError, "failed to subscribe to schedule events")
		return
	}

	h.sendEvent(w, "connected", map[string]interface{}{
		"channel":   channel,
		"timestamp": time.Now(),
	})
	flusher.Flush()

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event, open := <-eventChan:
			if !open {
				return
			}
			if event == nil {
				continue
			}
			h.sendEvent(w, string(event.Type), event)
			flusher.Flush()
		}
	}
}

func (h *EventsHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Warn().Err(err).Str("event", eventType).Msg("failed to marshal sse event")
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
}
