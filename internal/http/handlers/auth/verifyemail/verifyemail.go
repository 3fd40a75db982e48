// Package verifyemail реализует HTTP-обработчик подтверждения почты по токену из письма.
package verifyemail

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/notegenius/internal/http/response"
	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
	"github.com/magabrotheeeer/notegenius/internal/services/auth"
)

// Request тело запроса подтверждения.
type Request struct {
	Token string `json:"token" example:"9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"`
}

// Service описывает бизнес-логику подтверждения почты.
type Service interface {
	VerifyEmail(ctx context.Context, token string) error
}

// Handler обрабатывает запросы подтверждения почты.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Подтверждение почты
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Токен из письма"
// @Success 200 {object} response.MessageResponse
// @Failure 400 {object} response.ErrorResponse "Токен отсутствует, неизвестен или истек"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/verify-email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.verifyemail"

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
	req.Token = strings.TrimSpace(req.Token)
	if req.Token == "" {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Token is missing"))
		return
	}

	err := h.service.VerifyEmail(r.Context(), req.Token)
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		log.Info("verification token rejected")
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid or expired token"))
		return
	case err != nil:
		log.Error("verification failed", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("Error verifying email"))
		return
	}

	log.Info("email verified")
	render.JSON(w, r, response.Message("Email verified successfully. You can now login."))
}
