// Package notify hands domain events to an external delivery channel.
// Rendering and sending e-mail happens outside this service.
package notify

import (
	"context"
	"log/slog"
	"time"
)

// Event types emitted by the platform.
const (
	UserRegistered            = "user.registered"
	OwnerApplicationSubmitted = "owner_application.submitted"
	OwnerApplicationReviewed  = "owner_application.reviewed"
	BookingCreated            = "booking.created"
	BookingStatusChanged      = "booking.status_changed"
	ReservationCreated        = "reservation.created"
	ReservationStatusChanged  = "reservation.status_changed"
)

// Event is one message for the mailer. Data holds template variables.
type Event struct {
	Type       string         `json:"type"`
	Recipient  string         `json:"recipient"`
	Data       map[string]any `json:"data,omitempty"`
	OccurredAt time.Time      `json:"occurred_at"`
}

func NewEvent(typ, recipient string, data map[string]any) Event {
	return Event{Type: typ, Recipient: recipient, Data: data, OccurredAt: time.Now().UTC()}
}

// Notifier delivers events. Implementations never report delivery failures to
// the caller; they log them instead.
type Notifier interface {
	Notify(ctx context.Context, e Event)
}

// LogNotifier writes events to the log. It is used when no broker is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, e Event) {
	n.log.InfoContext(ctx, "notification",
		slog.String("type", e.Type),
		slog.String("recipient", e.Recipient),
		slog.Any("data", e.Data),
	)
}
