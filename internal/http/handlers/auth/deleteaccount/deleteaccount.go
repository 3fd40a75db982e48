// Package deleteaccount реализует HTTP-обработчик удаления аккаунта текущего пользователя.
package deleteaccount

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/notegenius/internal/http/middlewarectx"
	"github.com/magabrotheeeer/notegenius/internal/http/response"
	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
	"github.com/magabrotheeeer/notegenius/internal/services/auth"
)

// Service описывает бизнес-логику удаления аккаунта.
type Service interface {
	DeleteAccount(ctx context.Context, userID string) error
}

// Handler обрабатывает запросы удаления аккаунта.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Удаление аккаунта
// @Description Удаляет пользователя вместе со всеми конспектами.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.MessageResponse
// @Failure 401 {object} response.ErrorResponse "Не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/delete-account [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.deleteaccount"

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

	err := h.service.DeleteAccount(r.Context(), userID)
	switch {
	case errors.Is(err, auth.ErrNotFound):
		log.Warn("account already gone", slog.String("user_id", userID))
		render.Status(r, http.StatusUnauthorized)
		render.JSON(w, r, response.Error("Not authorized"))
		return
	case err != nil:
		log.Error("delete account failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Error deleting account"))
		return
	}

	log.Info("account deleted", slog.String("user_id", userID))
	render.JSON(w, r, response.Message("Account deleted successfully"))
}
