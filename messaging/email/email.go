package email

import (
	"fmt"
)

// Email holds the configuration for all email providers
type Email struct {
	Provider string      `json:"provider" yaml:"provider"`
	SMTP     *SMTPConfig `json:"smtp" yaml:"smtp"`
}

// Template represents the email template
type Template struct {
	Subject  string `json:"subject"`
	Template string `json:"template"`
	Keyword  string `json:"keyword"`
	URL      string `json:"url"`
	Data     any    `json:"data"`
}

// Sender is a generic interface for sending emails
type Sender interface {
	SendTemplateEmail(recipientEmail string, template Template) (string, error)
}

// NewSender returns a Sender for the configured provider.
// An empty provider yields a nil Sender, which callers treat as disabled.
func NewSender(e *Email) (Sender, error) {
	if e == nil || e.Provider == "" {
		return nil, nil
	}

	switch e.Provider {
	case "smtp":
		if err := validateSMTPConfig(e.SMTP); err != nil {
			return nil, err
		}
		return &LocalSMTPSender{Config: e.SMTP}, nil
	case "log":
		return &LogSender{}, nil
	default:
		return nil, fmt.Errorf("unknown email provider: %s", e.Provider)
	}
}
