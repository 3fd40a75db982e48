// Package sender собирает воркер, который отправляет письма из очереди RabbitMQ.
package sender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/notegenius/internal/config"
	"github.com/magabrotheeeer/notegenius/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
	"github.com/magabrotheeeer/notegenius/internal/mail"
	senderservice "github.com/magabrotheeeer/notegenius/internal/services/sender"
)

var (
	// ErrBrokerNotConfigured воркеру не задан адрес RabbitMQ.
	ErrBrokerNotConfigured = errors.New("rabbitmq url is not configured")
	// ErrConsumerStopped потребитель завершился без отмены контекста.
	ErrConsumerStopped = errors.New("email consumer stopped")
)

// App воркер отправки писем.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.SenderService
	sendTimeout   time.Duration
	logger        *slog.Logger
}

// New подключается к брокеру и настраивает провайдер почты.
func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg.RabbitMQ.URL == "" {
		return nil, ErrBrokerNotConfigured
	}
	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		return nil, err
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GetNotificationQueues())
	if err != nil {
		conn.Close()
		return nil, err
	}

	notifier := mail.NewNotifier(logger, nil, mail.NewProviders(cfg.Mail, logger)...)
	if p := notifier.Active(); p != nil {
		logger.Info("email provider selected", slog.String("provider", p.Name()))
	} else {
		logger.Warn("no email provider configured, queued emails will be dropped")
	}

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.NewSenderService(logger, notifier),
		sendTimeout:   cfg.Mail.SendTimeout,
		logger:        logger,
	}, nil
}

// Run обрабатывает очередь писем до отмены ctx. Если брокер прекратил доставку
// раньше, возвращает ошибку, чтобы процесс был перезапущен.
func (a *App) Run(ctx context.Context) error {
	const op = "app.sender.Run"
	done, err := rabbitmq.ConsumerMessage(ctx, a.logger, a.ch, rabbitmq.EmailQueue, a.sendTimeout, a.senderService.SendEmail)
	if err != nil {
		a.logger.Error("failed to start email consumer", sl.Err(err))
		return err
	}

	runErr := waitConsumer(ctx, a.logger, done)

	if err := a.ch.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if runErr != nil {
		return fmt.Errorf("%s: %w", op, runErr)
	}
	return nil
}

// waitConsumer ждет отмены ctx или остановки потребителя и возвращает его результат.
func waitConsumer(ctx context.Context, log *slog.Logger, done <-chan error) error {
	select {
	case <-ctx.Done():
		log.Info("Sender service shutting down gracefully")
		return <-done
	case err := <-done:
		if err == nil {
			if ctx.Err() != nil {
				return nil
			}
			return ErrConsumerStopped
		}
		log.Error("email consumer stopped", sl.Err(err))
		return err
	}
}
