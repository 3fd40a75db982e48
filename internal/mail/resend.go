package mail

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// ResendEmails часть resend.EmailsSvc, нужная для отправки.
type ResendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendProvider отправляет письма через HTTP API Resend.
type ResendProvider struct {
	emails ResendEmails
	from   Address
}

// NewResendProvider создает провайдера. nil emails означает, что ключ API не задан.
func NewResendProvider(emails ResendEmails, from Address) *ResendProvider {
	return &ResendProvider{emails: emails, from: from}
}

func (p *ResendProvider) Name() string { return "resend" }

func (p *ResendProvider) Configured() bool { return p.emails != nil }

func (p *ResendProvider) Send(ctx context.Context, msg Message) error {
	const op = "mail.ResendProvider.Send"
	if !p.Configured() {
		return fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}
	req := &resend.SendEmailRequest{
		From:    p.from.String(),
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Content:     a.Content,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			ContentId:   a.ContentID,
		})
	}
	if _, err := p.emails.SendWithContext(ctx, req); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
