package mail

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
)

const defaultSendTimeout = 30 * time.Second

// Sender синхронная отправка письма.
type Sender interface {
	Send(ctx context.Context, msg Message) bool
}

// Publisher ставит письмо в очередь брокера.
type Publisher interface {
	Publish(ctx context.Context, message any) error
}

// Dispatcher решает, как доставить письмо: синхронно, через очередь или в фоне.
type Dispatcher struct {
	sender    Sender
	publisher Publisher
	log       *slog.Logger
	timeout   time.Duration
	wg        sync.WaitGroup
}

// NewDispatcher создает Dispatcher. publisher может быть nil, тогда фоновые
// письма отправляются в горутине с таймаутом timeout.
func NewDispatcher(log *slog.Logger, sender Sender, publisher Publisher, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Dispatcher{sender: sender, publisher: publisher, log: log, timeout: timeout}
}

// Deliver доставляет msg. При awaitDelivery результат равен исходу отправки,
// иначе true означает, что письмо принято в очередь или фоновую отправку.
func (d *Dispatcher) Deliver(ctx context.Context, msg Message, awaitDelivery bool) bool {
	const op = "mail.Dispatcher.Deliver"
	if awaitDelivery {
		return d.sender.Send(ctx, msg)
	}

	if d.publisher != nil {
		err := d.publisher.Publish(ctx, msg)
		if err == nil {
			return true
		}
		d.log.Error("failed to enqueue email, sending in background",
			slog.String("op", op), sl.Err(err))
	}

	bg := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		sendCtx, cancel := context.WithTimeout(bg, d.timeout)
		defer cancel()
		d.sender.Send(sendCtx, msg)
	}()
	return true
}

// Wait ждет завершения фоновых отправок.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
