package service

import (
	"context"
	"errors"
	"testing"

	"github.com/ncobase/todox/internal/event"
	"github.com/ncobase/todox/messaging/email"
)

type sentEmail struct {
	recipient string
	subject   string
	body      string
}

type recordingSender struct {
	sent []sentEmail
	err  error
}

func (s *recordingSender) SendTemplateEmail(recipientEmail string, template email.Template) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, sentEmail{recipient: recipientEmail, subject: template.Subject, body: template.Template})
	return "msg-id", nil
}

func newTestDispatcher(t *testing.T) (*Dispatcher, *recordingSender) {
	t.Helper()
	sender := &recordingSender{}
	emails := &fakeEmails{addresses: map[string]string{
		"user-alice": "alice@example.com",
		"user-bob":   "bob@example.com",
	}}
	return NewDispatcher(newTestLogger(t), sender, emails), sender
}

func TestDispatcherSendsAssignedEmail(t *testing.T) {
	d, sender := newTestDispatcher(t)

	err := d.handleAssigned(context.Background(), &event.Event{
		Type:    event.EventTypeTodoAssigned,
		ActorID: "user-alice",
		Payload: map[string]any{"assignee_id": "user-bob", "title": "ship release"},
	})
	if err != nil {
		t.Fatalf("handleAssigned() error = %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d emails, want 1", len(sender.sent))
	}
	got := sender.sent[0]
	if got.recipient != "bob@example.com" {
		t.Errorf("recipient = %q, want bob@example.com", got.recipient)
	}
	if want := `alice@example.com assigned you to "ship release"`; got.body != want {
		t.Errorf("body = %q, want %q", got.body, want)
	}
}

func TestDispatcherSkipsSelfAssignment(t *testing.T) {
	d, sender := newTestDispatcher(t)

	err := d.handleAssigned(context.Background(), &event.Event{
		Type:    event.EventTypeTodoAssigned,
		ActorID: "user-bob",
		Payload: map[string]any{"assignee_id": "user-bob", "title": "mine"},
	})
	if err != nil {
		t.Fatalf("handleAssigned() error = %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent = %d emails on self-assignment, want 0", len(sender.sent))
	}
}

func TestDispatcherSkipsUnresolvableRecipient(t *testing.T) {
	d, sender := newTestDispatcher(t)

	err := d.handleCommented(context.Background(), &event.Event{
		Type:    event.EventTypeCommentCreated,
		ActorID: "user-alice",
		Payload: map[string]any{"created_by": "user-ghost", "title": "orphan"},
	})
	if err != nil {
		t.Fatalf("handleCommented() error = %v", err)
	}
	if len(sender.sent) != 0 {
		t.Errorf("sent = %d emails for unknown recipient, want 0", len(sender.sent))
	}
}

func TestDispatcherReminderEmails(t *testing.T) {
	d, sender := newTestDispatcher(t)
	ctx := context.Background()

	if err := d.handleDueSoon(ctx, &event.Event{
		Type:    event.EventTypeTodoDueSoon,
		Payload: map[string]any{"recipient_id": "user-bob", "title": "file taxes"},
	}); err != nil {
		t.Fatalf("handleDueSoon() error = %v", err)
	}
	if err := d.handleOverdue(ctx, &event.Event{
		Type:    event.EventTypeTodoOverdue,
		Payload: map[string]any{"recipient_id": "user-alice", "title": "file taxes"},
	}); err != nil {
		t.Fatalf("handleOverdue() error = %v", err)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("sent = %d emails, want 2", len(sender.sent))
	}
	if sender.sent[0].subject != "Todo due soon" || sender.sent[1].subject != "Todo overdue" {
		t.Errorf("subjects = [%q %q], want due-soon then overdue", sender.sent[0].subject, sender.sent[1].subject)
	}
}

func TestDispatcherSwallowsSendFailures(t *testing.T) {
	d, sender := newTestDispatcher(t)
	sender.err = errors.New("smtp down")

	err := d.handleAssigned(context.Background(), &event.Event{
		Type:    event.EventTypeTodoAssigned,
		ActorID: "user-alice",
		Payload: map[string]any{"assignee_id": "user-bob", "title": "ship release"},
	})
	if err != nil {
		t.Errorf("handleAssigned() error = %v, want nil despite send failure", err)
	}
}

func TestDispatcherNilSenderDisabled(t *testing.T) {
	d := NewDispatcher(newTestLogger(t), nil, &fakeEmails{addresses: map[string]string{}})

	err := d.handleAssigned(context.Background(), &event.Event{
		Type:    event.EventTypeTodoAssigned,
		ActorID: "user-alice",
		Payload: map[string]any{"assignee_id": "user-bob", "title": "no-op"},
	})
	if err != nil {
		t.Errorf("handleAssigned() error = %v, want nil with nil sender", err)
	}
}
