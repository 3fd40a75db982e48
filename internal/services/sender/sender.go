// Package sender обрабатывает письма из очереди уведомлений.
package sender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
	"github.com/magabrotheeeer/notegenius/internal/mail"
)

var (
	// ErrEmptyRecipient у письма из очереди не указан получатель.
	ErrEmptyRecipient = errors.New("message has no recipient")
	// ErrNotDelivered ни один провайдер не отправил письмо.
	ErrNotDelivered = errors.New("email was not delivered")
)

// Notifier отправляет письмо через настроенный провайдер.
type Notifier interface {
	Send(ctx context.Context, msg mail.Message) bool
}

// SenderService доставляет письма, опубликованные API.
type SenderService struct {
	notifier Notifier
	log      *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, notifier Notifier) *SenderService {
	return &SenderService{
		notifier: notifier,
		log:      log,
	}
}

// SendEmail декодирует письмо из тела сообщения очереди и отправляет его.
// Ошибка приводит к отклонению сообщения без повторной постановки.
func (s *SenderService) SendEmail(ctx context.Context, body []byte) error {
	const op = "sender.SendEmail"
	var msg mail.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal message body", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if msg.To == "" {
		return fmt.Errorf("%s: %w", op, ErrEmptyRecipient)
	}

	if !s.notifier.Send(ctx, msg) {
		return fmt.Errorf("%s: %w", op, ErrNotDelivered)
	}
	s.log.Info("email sent successfully", slog.String("op", op), slog.String("subject", msg.Subject))
	return nil
}
