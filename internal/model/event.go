package model

import "time"

// Domain event types emitted after a committed write.
const (
	EventCustomerCreated    = "customer.created"
	EventCustomerUpdated    = "customer.updated"
	EventCustomerDeleted    = "customer.deleted"
	EventWorkOrderCreated   = "work_order.created"
	EventWorkOrderUpdated   = "work_order.updated"
	EventWorkOrderCompleted = "work_order.completed"
	EventWorkOrderDeleted   = "work_order.deleted"
)

// Event is an immutable domain event handed to the event publisher.
type Event struct {
	Type       string         `json:"event_type"`
	EntityID   string         `json:"entity_id"`
	Payload    map[string]any `json:"payload"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// NewEvent stamps a new event with the current UTC time. The top level of
// payload is copied, so later writes to the caller's map do not reach the event.
func NewEvent(eventType, entityID string, payload map[string]any) Event {
	var snapshot map[string]any
	if payload != nil {
		snapshot = make(map[string]any, len(payload))
		for k, v := range payload {
			snapshot[k] = v
		}
	}
	return Event{
		Type:       eventType,
		EntityID:   entityID,
		Payload:    snapshot,
		OccurredAt: time.Now().UTC(),
	}
}
