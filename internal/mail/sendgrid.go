package mail

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridClient часть *sendgrid.Client, нужная для отправки.
type SendGridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

// SendGridProvider отправляет письма через HTTP API SendGrid.
type SendGridProvider struct {
	client SendGridClient
	from   Address
}

// NewSendGridProvider создает провайдера. nil client означает, что ключ API не задан.
func NewSendGridProvider(client SendGridClient, from Address) *SendGridProvider {
	return &SendGridProvider{client: client, from: from}
}

func (p *SendGridProvider) Name() string { return "sendgrid" }

func (p *SendGridProvider) Configured() bool { return p.client != nil }

func (p *SendGridProvider) Send(ctx context.Context, msg Message) error {
	const op = "mail.SendGridProvider.Send"
	if !p.Configured() {
		return fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	email := sgmail.NewSingleEmail(
		sgmail.NewEmail(p.from.Name, p.from.Email),
		msg.Subject,
		sgmail.NewEmail("", msg.To),
		"",
		msg.HTML,
	)
	for _, a := range msg.Attachments {
		att := sgmail.NewAttachment().
			SetContent(base64.StdEncoding.EncodeToString(a.Content)).
			SetType(a.ContentType).
			SetFilename(a.Filename)
		if a.ContentID != "" {
			att.SetDisposition("inline").SetContentID(a.ContentID)
		} else {
			att.SetDisposition("attachment")
		}
		email.AddAttachment(att)
	}

	resp, err := p.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s: unexpected status %d: %s", op, resp.StatusCode, resp.Body)
	}
	return nil
}
