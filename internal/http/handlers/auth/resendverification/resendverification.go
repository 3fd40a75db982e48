// Package resendverification реализует HTTP-обработчик повторной отправки письма подтверждения.
package resendverification

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/notegenius/internal/http/response"
	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
	"github.com/magabrotheeeer/notegenius/internal/lib/validate"
	"github.com/magabrotheeeer/notegenius/internal/services/auth"
)

// Request тело запроса.
type Request struct {
	Email string `json:"email" validate:"required,email" example:"alice@example.com"`
}

// Service описывает бизнес-логику повторной отправки.
type Service interface {
	ResendVerification(ctx context.Context, email string) error
}

// Handler обрабатывает запросы повторной отправки письма подтверждения.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validate.New(),
	}
}

// ServeHTTP godoc
// @Summary Повторная отправка письма подтверждения
// @Description Выпускает новый токен подтверждения, предыдущий перестает действовать.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email пользователя"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Пользователь не найден или уже подтвержден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/resend-verification [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.resendverification"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	err := h.service.ResendVerification(r.Context(), req.Email)
	switch {
	case errors.Is(err, auth.ErrNotFound):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("User not found"))
		return
	case errors.Is(err, auth.ErrAlreadyVerified):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Email is already verified"))
		return
	case err != nil:
		log.Error("resend verification failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Error sending verification email"))
		return
	}

	render.JSON(w, r, response.Message("Verification email sent. Please check your inbox."))
}
