// Package realtime pushes insert events to connected clients so they
// can refresh feeds, conversations, and notification bells without
// polling.
package realtime

import (
	"github.com/lefthq/left-backend/internal/metrics"
)

// InsertEvent announces that a row was inserted into a table a client
// may be watching. Payload carries the inserted row, already shaped for
// the client.
type InsertEvent struct {
	Table   string      `json:"table"`
	Key     string      `json:"key"`
	Payload interface{} `json:"payload,omitempty"`
}

// Bus is where services publish insert events. The hub fans them out;
// tests substitute a recording implementation.
type Bus interface {
	// Publish delivers the event to every subscriber of the affected
	// user. Never blocks the caller.
	Publish(userID string, event InsertEvent)

	// PublishAll delivers the event to all connected clients.
	PublishAll(event InsertEvent)
}

// NopBus drops every event. Used when no hub is wired, e.g. in the
// seeder.
type NopBus struct{}

func (NopBus) Publish(string, InsertEvent) {}
func (NopBus) PublishAll(InsertEvent)      {}

func recordEvent(event InsertEvent) {
	metrics.Get().RealtimeEventsBroadcast.WithLabelValues(event.Table).Inc()
}
