// Package mail отправляет письма сервиса: верификация почты и сброс пароля.
//
// Письмо уходит через первый провайдер, для которого заданы учетные данные
// (Resend, SendGrid, SMTP). Dispatcher решает, ждать доставки или отправить
// письмо в фоне (через RabbitMQ, если брокер настроен).
package mail

// Attachment вложение письма. Непустой ContentID делает вложение inline,
// на него можно сослаться из HTML как cid:<ContentID>.
type Attachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	ContentID   string `json:"content_id,omitempty"`
	Content     []byte `json:"content"`
}

// Message письмо для одного получателя.
type Message struct {
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments,omitempty"`
}
