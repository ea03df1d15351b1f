package interfaces

import (
	"context"
	"time"
)

// EventType represents different event types in the system
type EventType string

const (
	EventQueueStats     EventType = "queue.stats"     // fresh queue snapshot available
	EventQueueJob       EventType = "queue.job"       // a job command (retry/remove) completed
	EventAlertTriggered EventType = "alert.triggered" // a price alert tripped
	EventLayoutChanged  EventType = "layout.changed"  // a layout was saved or deleted
	EventLog            EventType = "log"             // streamed log line
)

// Event represents a system event
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// EventHandler is a function that handles events
type EventHandler func(ctx context.Context, event Event) error

// EventService manages the pub/sub event bus
type EventService interface {
	// Subscribe to an event type
	Subscribe(eventType EventType, handler EventHandler) error

	// Publish an event to all subscribers asynchronously
	Publish(ctx context.Context, event Event) error

	// PublishSync publishes an event and waits for all handlers to complete
	PublishSync(ctx context.Context, event Event) error

	// Close shuts down the event service
	Close() error
}
