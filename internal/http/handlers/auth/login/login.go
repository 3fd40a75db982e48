// Package login реализует HTTP-обработчик входа пользователя.
//
// При успешной проверке учетных данных возвращает JWT сессии и публичные
// данные пользователя.
package login

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
	"github.com/magabrotheeeer/notegenius/internal/models"
	"github.com/magabrotheeeer/notegenius/internal/services/auth"
)

// Request входные данные для входа.
type Request struct {
	Email    string `json:"email" validate:"required,email" example:"alice@example.com"`
	Password string `json:"password" validate:"required" example:"Str0ng!Pass"`
}

// Response тело успешного ответа.
type Response struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// Service описывает бизнес-логику входа.
type Service interface {
	Login(ctx context.Context, email, password string) (string, models.PublicUser, error)
}

// Handler обрабатывает HTTP-запросы входа.
type Handler struct {
	log      *slog.Logger        // Логгер для записи операций и ошибок
	service  Service             // Сервис аутентификации
	validate *validator.Validate // Валидатор входных данных
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
// @Summary Вход пользователя
// @Description Проверяет email и пароль подтвержденного пользователя. Возвращает JWT.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные пользователя"
// @Success 200 {object} Response
// @Failure 400 {object} response.ErrorResponse "Неверные учетные данные или почта не подтверждена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		log.Info("invalid credentials")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid email or password"))
		return
	case errors.Is(err, auth.ErrNotVerified):
		log.Info("email not verified")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Please verify your email first"))
		return
	case err != nil:
		log.Error("login failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Error logging in"))
		return
	}

	log.Info("login success", slog.String("user_id", user.ID))
	render.JSON(w, r, Response{Token: token, User: user})
}
