package model

import "time"

// Domain event types published to the broker
const (
	EventAppointmentBooked        = "appointment.booked"
	EventAppointmentStatusChanged = "appointment.status_changed"
	EventMessageSent              = "message.sent"
)

// Event is the envelope published for every domain change
type Event struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}
