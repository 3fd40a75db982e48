// Package history реализует HTTP-обработчик истории конспектов пользователя.
package history

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/notegenius/internal/http/middlewarectx"
	"github.com/magabrotheeeer/notegenius/internal/http/response"
	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
	"github.com/magabrotheeeer/notegenius/internal/models"
)

// Service описывает бизнес-логику чтения истории.
type Service interface {
	History(ctx context.Context, userID string) ([]models.Note, error)
}

// Handler обрабатывает запросы истории конспектов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary История конспектов
// @Description Возвращает конспекты пользователя, новые первыми.
// @Tags Notes
// @Produce  json
// @Security BearerAuth
// @Success 200 {array} models.Note
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /notes/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.notes.history"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user identification missing")
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Not authorized"))
		return
	}

	list, err := h.service.History(r.Context(), userID)
	if err != nil {
		log.Error("failed to fetch history", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Error fetching history"))
		return
	}
	if list == nil {
		list = []models.Note{}
	}

	render.JSON(w, r, list)
}
