package email

import (
	"testing"
)

func TestNewSenderDisabled(t *testing.T) {
	sender, err := NewSender(nil)
	if err != nil {
		t.Fatalf("NewSender(nil) error = %v", err)
	}
	if sender != nil {
		t.Error("NewSender(nil) = non-nil, want nil sender")
	}

	sender, err = NewSender(&Email{})
	if err != nil {
		t.Fatalf("NewSender(empty) error = %v", err)
	}
	if sender != nil {
		t.Error("NewSender(empty provider) = non-nil, want nil sender")
	}
}

func TestNewSenderLog(t *testing.T) {
	sender, err := NewSender(&Email{Provider: "log"})
	if err != nil {
		t.Fatalf("NewSender(log) error = %v", err)
	}
	if _, ok := sender.(*LogSender); !ok {
		t.Errorf("NewSender(log) = %T, want *LogSender", sender)
	}

	if _, err := sender.SendTemplateEmail("user@example.com", Template{Subject: "hi"}); err != nil {
		t.Errorf("SendTemplateEmail() error = %v", err)
	}
}

func TestNewSenderSMTPInvalid(t *testing.T) {
	if _, err := NewSender(&Email{Provider: "smtp", SMTP: &SMTPConfig{}}); err == nil {
		t.Error("NewSender(smtp, empty config) expected error, got nil")
	}
}

func TestNewSenderUnknownProvider(t *testing.T) {
	if _, err := NewSender(&Email{Provider: "pigeon"}); err == nil {
		t.Error("NewSender(pigeon) expected error, got nil")
	}
}
