package email

import (
	"log"
)

// LogSender implements Sender by writing messages to the process log.
// Intended for development and test environments.
type LogSender struct{}

func (s *LogSender) SendTemplateEmail(recipientEmail string, template Template) (string, error) {
	log.Printf("email to=%s subject=%q body=%q", recipientEmail, template.Subject, template.Template)
	return "", nil
}
