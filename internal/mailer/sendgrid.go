// Package mailer delivers journey emails through SendGrid dynamic templates.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/jimbobirecode/streamsong-dashboard/internal/journey"
)

// Sender implements journey.Notifier over the SendGrid v3 mail API.
// Nil-safe: when not configured, Send reports journey.ErrNotConfigured.
type Sender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    *slog.Logger
}

// New creates a SendGrid sender. Returns nil if the API key or from address
// is empty (sending disabled; dry runs still work).
func New(apiKey, fromEmail, fromName string, logger *slog.Logger) *Sender {
	if apiKey == "" || fromEmail == "" {
		return nil
	}
	return &Sender{
		client:    sendgrid.NewSendClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
		logger:    logger,
	}
}

// Send delivers one templated email. SendGrid acknowledges accepted mail
// with 200 or 202; anything else is a transport failure with the response
// body as detail.
func (s *Sender) Send(ctx context.Context, recipient, templateID string, fields journey.Fields) error {
	if s == nil {
		return journey.ErrNotConfigured
	}
	if templateID == "" {
		return fmt.Errorf("%w: empty template id", journey.ErrNotConfigured)
	}

	msg := mail.NewV3Mail()
	msg.SetFrom(mail.NewEmail(s.fromName, s.fromEmail))
	msg.SetTemplateID(templateID)

	p := mail.NewPersonalization()
	p.AddTos(mail.NewEmail("", recipient))
	for k, v := range fields {
		p.SetDynamicTemplateData(k, v)
	}
	msg.AddPersonalizations(p)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("sendgrid: status %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}

	s.logger.Info("email accepted", "to", recipient, "template_id", templateID)
	return nil
}
