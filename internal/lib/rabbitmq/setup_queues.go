package rabbitmq

const (
	// ExchangeName direct exchange для уведомлений.
	ExchangeName = "notifications"
	// EmailQueue очередь писем для воркера sender.
	EmailQueue = "notifications.email"
	// EmailRoutingKey ключ маршрутизации писем.
	EmailRoutingKey = "email"
	// PrefetchCount ограничение неподтвержденных сообщений на канал.
	PrefetchCount = 10
)

// QueueConfig описывает очередь и ключ, которым она привязана к ExchangeName.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// GetNotificationQueues возвращает очереди, которые нужно объявить при старте.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: EmailQueue, RoutingKey: EmailRoutingKey},
	}
}
