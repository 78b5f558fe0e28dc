// Package notify delivers plaintext stop-codes out-of-band, per spec.md's
// reserved-but-unspecified delivery transport. SendGrid-backed when an API
// key is configured; a logging no-op otherwise.
package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"github.com/seu-repo/csms/internal/ports"
)

const stopCodeSubject = "Your charging session stop code"

type sendGridNotifier struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	log       *zap.Logger
}

// NewSendGridNotifier builds a ports.Notifier backed by the SendGrid API.
func NewSendGridNotifier(apiKey, fromEmail, fromName string, log *zap.Logger) ports.Notifier {
	return &sendGridNotifier{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		log:       log,
	}
}

func (n *sendGridNotifier) SendStopCode(ctx context.Context, email, plaintextCode string) error {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail("", email)
	body := fmt.Sprintf("Your stop code is %s. Use it to end your charging session at any time.", plaintextCode)
	message := mail.NewSingleEmail(from, stopCodeSubject, to, body, "")

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid error: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", resp.StatusCode, resp.Body)
	}

	n.log.Info("stop code delivered", zap.String("email", email))
	return nil
}
