package rabbitmq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
)

// ErrDeliveryClosed брокер закрыл канал доставки до отмены ctx.
var ErrDeliveryClosed = errors.New("delivery channel closed by broker")

// ConsumerMessage запускает потребителя очереди queueName. Каждое сообщение
// обрабатывается handler в отдельной горутине, одновременно не больше PrefetchCount.
// Обработчик получает контекст, не отменяемый вместе с ctx, с лимитом timeout
// (0 без лимита), поэтому начатая отправка завершается и при остановке.
// Сообщение подтверждается при успехе и отклоняется без возврата в очередь при ошибке.
// В возвращаемый канал пишется nil после отмены ctx или ErrDeliveryClosed,
// если доставка прекратилась раньше; канал закрывается после завершения всех обработчиков.
func ConsumerMessage(ctx context.Context, log *slog.Logger, ch *amqp.Channel, queueName string, timeout time.Duration, handler func(context.Context, []byte) error) (<-chan error, error) {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- consume(ctx, log, delivery, timeout, handler)
	}()
	return done, nil
}

func consume(ctx context.Context, log *slog.Logger, delivery <-chan amqp.Delivery, timeout time.Duration, handler func(context.Context, []byte) error) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	sem := make(chan struct{}, PrefetchCount)
	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrDeliveryClosed
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer func() { <-sem }()
				hctx, cancel := handlerContext(ctx, timeout)
				defer cancel()
				handleDelivery(hctx, log, d, handler)
			}(d)
		case <-ctx.Done():
			return nil
		}
	}
}

func handlerContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	hctx := context.WithoutCancel(ctx)
	if timeout <= 0 {
		return hctx, func() {}
	}
	return context.WithTimeout(hctx, timeout)
}

func handleDelivery(ctx context.Context, log *slog.Logger, d amqp.Delivery, handler func(context.Context, []byte) error) {
	if err := handler(ctx, d.Body); err != nil {
		log.Error("failed to handle message", slog.Uint64("delivery_tag", d.DeliveryTag), sl.Err(err))
		if nackErr := d.Nack(false, false); nackErr != nil {
			log.Error("failed to nack message", sl.Err(nackErr))
		}
		return
	}
	if ackErr := d.Ack(false); ackErr != nil {
		log.Error("failed to ack message", sl.Err(ackErr))
	}
}
