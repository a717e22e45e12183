// Package queue defines message payloads exchanged over the message broker
// and the background dispatcher that fans them out to registered webhooks.
package queue

// BookingCreatedEvent is published after a booking transaction commits.
// It carries enough information for downstream consumers (webhook
// targets, Manychat field sync) to act without querying the primary
// database. Publishing happens after commit so a broker failure can
// never roll back or block the booking decision.
type BookingCreatedEvent struct {
	EventID        string  `json:"event_id"`
	BookingID      uint64  `json:"booking_id"`
	ToolID         uint64  `json:"tool_id"`
	ToolName       string  `json:"tool_name"`
	ManychatUserID string  `json:"manychat_user_id"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	Status         string  `json:"status"`
	Notes          *string `json:"notes,omitempty"`
	CreatedAt      string  `json:"created_at"`
}

// EventBookingCreated is the queue name and the event type webhook
// endpoints subscribe to.
const EventBookingCreated = "booking.created"
