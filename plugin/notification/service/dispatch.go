package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ncobase/todox/internal/event"
	"github.com/ncobase/todox/logging/logger"
	"github.com/ncobase/todox/messaging/email"
)

// Dispatcher forwards domain events to the email sender. It runs on the
// event bus workers, decoupled from the mutation path; the breaker
// sheds sends while the provider is failing so a slow SMTP host cannot
// back up the bus.
type Dispatcher struct {
	sender  email.Sender
	emails  Emails
	breaker *gobreaker.CircuitBreaker
	logger  *logger.Logger
}

func NewDispatcher(log *logger.Logger, sender email.Sender, emails Emails) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		emails: emails,
		logger: log,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "notification-email",
			MaxRequests: 100,
			Interval:    5 * time.Second,
			Timeout:     3 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
		}),
	}
}

// Subscribe registers the dispatcher on every event type that carries
// an email-worthy notification.
func (d *Dispatcher) Subscribe(bus *event.Bus) {
	bus.Subscribe(event.EventTypeTodoAssigned, d.handleAssigned)
	bus.Subscribe(event.EventTypeCommentCreated, d.handleCommented)
	bus.Subscribe(event.EventTypeTodoDueSoon, d.handleDueSoon)
	bus.Subscribe(event.EventTypeTodoOverdue, d.handleOverdue)
}

func (d *Dispatcher) handleAssigned(ctx context.Context, e *event.Event) error {
	recipient := payloadString(e, "assignee_id")
	if recipient == "" || recipient == e.ActorID {
		return nil
	}
	title := payloadString(e, "title")
	body := fmt.Sprintf("You were assigned to %q", title)
	if addr := d.resolve(ctx, e.ActorID); addr != "" {
		body = fmt.Sprintf("%s assigned you to %q", addr, title)
	}
	d.send(ctx, recipient, "You were assigned to a todo", body)
	return nil
}

func (d *Dispatcher) handleCommented(ctx context.Context, e *event.Event) error {
	recipient := payloadString(e, "created_by")
	if recipient == "" || recipient == e.ActorID {
		return nil
	}
	title := payloadString(e, "title")
	body := fmt.Sprintf("Someone commented on %q", title)
	if addr := d.resolve(ctx, e.ActorID); addr != "" {
		body = fmt.Sprintf("%s commented on %q", addr, title)
	}
	d.send(ctx, recipient, "New comment on your todo", body)
	return nil
}

func (d *Dispatcher) handleDueSoon(ctx context.Context, e *event.Event) error {
	recipient := payloadString(e, "recipient_id")
	if recipient == "" {
		return nil
	}
	d.send(ctx, recipient, "Todo due soon", fmt.Sprintf("%q is due soon", payloadString(e, "title")))
	return nil
}

func (d *Dispatcher) handleOverdue(ctx context.Context, e *event.Event) error {
	recipient := payloadString(e, "recipient_id")
	if recipient == "" {
		return nil
	}
	d.send(ctx, recipient, "Todo overdue", fmt.Sprintf("%q is overdue", payloadString(e, "title")))
	return nil
}

// send delivers one email through the breaker. Failures are logged and
// swallowed; email is best-effort by contract.
func (d *Dispatcher) send(ctx context.Context, recipientID, subject, body string) {
	if d.sender == nil {
		return
	}
	addr := d.resolve(ctx, recipientID)
	if addr == "" {
		return
	}

	_, err := d.breaker.Execute(func() (any, error) {
		return d.sender.SendTemplateEmail(addr, email.Template{
			Subject:  subject,
			Template: body,
		})
	})
	if err != nil {
		d.logger.Error(ctx, "Failed to send notification email",
			"error", err, "recipient_id", recipientID, "subject", subject)
		return
	}
	d.logger.Debug(ctx, "Notification email sent", "recipient_id", recipientID, "subject", subject)
}

func (d *Dispatcher) resolve(ctx context.Context, userID string) string {
	if d.emails == nil || userID == "" {
		return ""
	}
	addr, err := d.emails.ResolveEmail(ctx, userID)
	if err != nil {
		d.logger.Warn(ctx, "Failed to resolve email address", "user_id", userID, "error", err)
		return ""
	}
	return addr
}

func payloadString(e *event.Event, key string) string {
	v, _ := e.Payload[key].(string)
	return v
}
