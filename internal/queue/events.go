package queue

import (
	"context"
	"time"
)

const (
	EventsExchange    = "savora.events"
	NotificationQueue = "savora.notifications"

	RoutingAppointmentStatus = "appointment.status.updated"
)

// AppointmentStatusEvent is published when the back office moves a booking
// through its lifecycle. Downstream notification workers consume it.
type AppointmentStatusEvent struct {
	AppointmentID string    `json:"appointmentId"`
	OldStatus     string    `json:"oldStatus"`
	NewStatus     string    `json:"newStatus"`
	ChangedBy     string    `json:"changedBy"`
	ChangedAt     time.Time `json:"changedAt"`
}

// EnsureTopology declares the exchange/queue pair this service publishes to.
// Multi-segment routing keys need the '#' wildcard.
func EnsureTopology(c *Client) error {
	if err := c.EnsureExchange(EventsExchange); err != nil {
		return err
	}
	if _, err := c.EnsureQueue(NotificationQueue); err != nil {
		return err
	}
	return c.BindQueue(NotificationQueue, EventsExchange, "appointment.#")
}

func (c *Client) PublishAppointmentStatus(ctx context.Context, event AppointmentStatusEvent) error {
	return c.PublishJSON(ctx, EventsExchange, RoutingAppointmentStatus, event)
}
