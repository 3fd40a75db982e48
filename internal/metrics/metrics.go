// Package metrics счетчики prometheus для auth, почты и конспектов.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор счетчиков сервиса. Методы безопасны для nil получателя.
type Metrics struct {
	authEvents   *prometheus.CounterVec
	emails       *prometheus.CounterVec
	notes        *prometheus.CounterVec
	historyCache *prometheus.CounterVec
}

// New регистрирует счетчики в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		authEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notegenius",
			Name:      "auth_events_total",
			Help:      "Auth flow outcomes by operation.",
		}, []string{"operation", "outcome"}),
		emails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notegenius",
			Name:      "emails_sent_total",
			Help:      "Email delivery attempts by provider and result.",
		}, []string{"provider", "success"}),
		notes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notegenius",
			Name:      "notes_generated_total",
			Help:      "Note generation attempts by result.",
		}, []string{"outcome"}),
		historyCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "notegenius",
			Name:      "history_cache_lookups_total",
			Help:      "History cache lookups by result.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.authEvents, m.emails, m.notes, m.historyCache)
	return m
}

// AuthEvent учитывает исход операции auth (например register/success).
func (m *Metrics) AuthEvent(operation, outcome string) {
	if m == nil {
		return
	}
	m.authEvents.WithLabelValues(operation, outcome).Inc()
}

// EmailSent учитывает попытку отправки письма.
func (m *Metrics) EmailSent(provider string, ok bool) {
	if m == nil {
		return
	}
	m.emails.WithLabelValues(provider, strconv.FormatBool(ok)).Inc()
}

// NoteGenerated учитывает попытку генерации конспекта.
func (m *Metrics) NoteGenerated(outcome string) {
	if m == nil {
		return
	}
	m.notes.WithLabelValues(outcome).Inc()
}

// HistoryCache учитывает результат чтения кэша истории: hit, miss или error.
func (m *Metrics) HistoryCache(result string) {
	if m == nil {
		return
	}
	m.historyCache.WithLabelValues(result).Inc()
}
