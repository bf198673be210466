package providers

import (
	"context"

	"github.com/smileworks/clinic-backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// appointment events. Open calendar views subscribe through the event
// stream endpoint and refresh when the schedule changes.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

// EventChannel constants for different event scopes
const (
	// EventChannelScheduleUpdates is the channel for all schedule changes
	EventChannelScheduleUpdates = "schedule:updates"

	// EventChannelDentistPrefix is the prefix for dentist-specific channels
	EventChannelDentistPrefix = "schedule:dentist:"
)

// GetDentistChannel returns the channel name for one dentist's schedule
func GetDentistChannel(dentistID string) string {
	return EventChannelDentistPrefix + dentistID
}
