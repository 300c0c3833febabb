package mailer

import (
	"context"
	"log"
)

// Sender delivers notification emails. Implementations must be safe for
// concurrent use; the waiting list and the sweeper both send from their own
// goroutines.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogSender writes emails to the process log instead of delivering them.
// Used in development and in tests when SMTP is not configured.
type LogSender struct{}

func NewLogSender() *LogSender {
	return &LogSender{}
}

func (s *LogSender) Send(ctx context.Context, to, subject, body string) error {
	log.Printf("mail to=%s subject=%q\n%s", to, subject, body)
	return nil
}
