// Package health реализует проверку готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/notegenius/internal/http/response"
	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
)

const checkTimeout = 2 * time.Second

// Checker проверяет доступность зависимости.
type Checker interface {
	Ping(ctx context.Context) error
}

// Response тело ответа проверки.
type Response struct {
	Status string            `json:"status" example:"ok"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Handler отвечает 200, пока все зависимости доступны.
type Handler struct {
	log      *slog.Logger
	checkers map[string]Checker
}

// New создает Handler. checkers ключуются именем зависимости.
func New(log *slog.Logger, checkers map[string]Checker) *Handler {
	return &Handler{log: log, checkers: checkers}
}

// ServeHTTP отвечает 200, если все зависимости доступны, иначе 503 с результатами проверок.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), checkTimeout)
	defer cancel()

	resp := Response{Status: "ok", Checks: make(map[string]string, len(h.checkers))}
	for name, c := range h.checkers {
		if err := c.Ping(ctx); err != nil {
			h.log.Warn("health check failed", slog.String("dependency", name), sl.Err(err))
			resp.Checks[name] = response.StatusError
			resp.Status = "degraded"
			continue
		}
		resp.Checks[name] = "ok"
	}

	if resp.Status != "ok" {
		render.Status(r, http.StatusServiceUnavailable)
	}
	render.JSON(w, r, resp)
}
