package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"
)

// EmailSender is the outbound mail collaborator. Implementations must honor
// the context deadline; callers treat failures as retryable upstream errors.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type SendGridSender struct {
	key     string
	from    string
	timeout time.Duration
}

func NewSendGridSender(key, from string, timeout time.Duration) *SendGridSender {
	return &SendGridSender{key: key, from: from, timeout: timeout}
}

func (s *SendGridSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	from := mail.NewEmail("", s.from)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, htmlBody, htmlBody)

	client := sendgrid.NewSendClient(s.key)
	response, err := client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}

	if response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}

	logrus.WithFields(logrus.Fields{
		"to":     to,
		"status": response.StatusCode,
	}).Debug("Email sent")
	return nil
}
