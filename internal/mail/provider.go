package mail

import (
	"context"
	"errors"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"github.com/sendgrid/sendgrid-go"

	"github.com/magabrotheeeer/notegenius/internal/config"
	"github.com/magabrotheeeer/notegenius/internal/lib/smtp"
)

// ErrNotConfigured у провайдера нет учетных данных.
var ErrNotConfigured = errors.New("mail provider is not configured")

// Provider канал доставки писем.
type Provider interface {
	// Name короткое имя для логов и метрик.
	Name() string
	// Configured сообщает, заданы ли учетные данные провайдера.
	Configured() bool
	Send(ctx context.Context, msg Message) error
}

// NewProviders возвращает провайдеров в порядке приоритета: Resend, SendGrid, SMTP.
func NewProviders(cfg config.Mail, log *slog.Logger) []Provider {
	from := Address{Name: cfg.FromName, Email: cfg.FromAddress}

	var providers []Provider
	if cfg.ResendAPIKey != "" {
		providers = append(providers, NewResendProvider(resend.NewClient(cfg.ResendAPIKey).Emails, from))
	} else {
		providers = append(providers, NewResendProvider(nil, from))
	}
	if cfg.SendGridAPIKey != "" {
		providers = append(providers, NewSendGridProvider(sendgrid.NewSendClient(cfg.SendGridAPIKey), from))
	} else {
		providers = append(providers, NewSendGridProvider(nil, from))
	}

	var transport smtp.TransportInterface
	if cfg.SMTPHost != "" && cfg.SMTPUser != "" && cfg.SMTPPass != "" {
		transport = smtp.NewTransport(cfg, log)
	}
	providers = append(providers, NewSMTPProvider(transport, cfg.FromName))
	return providers
}

// Address отправитель письма.
type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return a.Name + " <" + a.Email + ">"
}
