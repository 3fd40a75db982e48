package mail

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
)

// Recorder учитывает исход отправки.
type Recorder interface {
	EmailSent(provider string, ok bool)
}

// Notifier отправляет письмо через первый настроенный провайдер.
// Повторов и перехода на следующий провайдер нет.
type Notifier struct {
	providers []Provider
	log       *slog.Logger
	recorder  Recorder
}

// NewNotifier создает Notifier. recorder может быть nil.
func NewNotifier(log *slog.Logger, recorder Recorder, providers ...Provider) *Notifier {
	return &Notifier{providers: providers, log: log, recorder: recorder}
}

// Active возвращает провайдера, через которого уйдет письмо, или nil.
func (n *Notifier) Active() Provider {
	for _, p := range n.providers {
		if p.Configured() {
			return p
		}
	}
	return nil
}

// Send отправляет msg и сообщает об успехе. Ошибки только логируются.
func (n *Notifier) Send(ctx context.Context, msg Message) bool {
	const op = "mail.Notifier.Send"
	log := n.log.With(slog.String("op", op), slog.String("subject", msg.Subject))

	p := n.Active()
	if p == nil {
		log.Error("no mail provider configured")
		n.record("none", false)
		return false
	}
	log = log.With(slog.String("provider", p.Name()))

	if err := p.Send(ctx, msg); err != nil {
		log.Error("failed to send email", sl.Err(err))
		n.record(p.Name(), false)
		return false
	}
	log.Info("email sent")
	n.record(p.Name(), true)
	return true
}

func (n *Notifier) record(provider string, ok bool) {
	if n.recorder != nil {
		n.recorder.EmailSent(provider, ok)
	}
}
