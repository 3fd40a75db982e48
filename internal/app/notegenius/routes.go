package notegenius

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/notegenius/internal/http/handlers/auth/deleteaccount"
	"github.com/magabrotheeeer/notegenius/internal/http/handlers/auth/forgotpassword"
	"github.com/magabrotheeeer/notegenius/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/notegenius/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/notegenius/internal/http/handlers/auth/resendverification"
	"github.com/magabrotheeeer/notegenius/internal/http/handlers/auth/resetpassword"
	"github.com/magabrotheeeer/notegenius/internal/http/handlers/auth/verifyemail"
	"github.com/magabrotheeeer/notegenius/internal/http/handlers/health"
	"github.com/magabrotheeeer/notegenius/internal/http/handlers/notes/analyze"
	"github.com/magabrotheeeer/notegenius/internal/http/handlers/notes/history"
	"github.com/magabrotheeeer/notegenius/internal/http/middlewarectx"
	"github.com/magabrotheeeer/notegenius/internal/telemetry"
)

// AuthService бизнес-логика /api/auth.
type AuthService interface {
	register.Service
	verifyemail.Service
	resendverification.Service
	login.Service
	forgotpassword.Service
	resetpassword.Service
	deleteaccount.Service
}

// NotesService бизнес-логика /api/notes.
type NotesService interface {
	analyze.Service
	history.Service
}

// Deps зависимости маршрутов.
type Deps struct {
	Auth           AuthService
	Notes          NotesService
	Tokens         middlewarectx.TokenParser
	Extractor      analyze.TextExtractor
	Limiter        *middlewarectx.RateLimiter
	Checkers       map[string]health.Checker
	Gatherer       prometheus.Gatherer
	MaxUploadBytes int64
	ServiceName    string
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middlewarectx.CapturePeer,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)
	if deps.ServiceName != "" {
		r.Use(telemetry.Middleware(deps.ServiceName))
	}

	requireAuth := middlewarectx.JWTMiddleware(deps.Tokens, logger)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				if deps.Limiter != nil {
					r.Use(middlewarectx.RateLimitMiddleware(logger, deps.Limiter))
				}
				r.Post("/register", register.New(logger, deps.Auth).ServeHTTP)
				r.Post("/verify-email", verifyemail.New(logger, deps.Auth).ServeHTTP)
				r.Post("/resend-verification", resendverification.New(logger, deps.Auth).ServeHTTP)
				r.Post("/login", login.New(logger, deps.Auth).ServeHTTP)
				r.Post("/forgot-password", forgotpassword.New(logger, deps.Auth).ServeHTTP)
				r.Post("/reset-password", resetpassword.New(logger, deps.Auth).ServeHTTP)
			})

			r.With(requireAuth).Delete("/delete-account", deleteaccount.New(logger, deps.Auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Route("/notes", func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/analyze", analyze.New(logger, deps.Notes, deps.Extractor, deps.MaxUploadBytes).ServeHTTP)
			r.Get("/history", history.New(logger, deps.Notes).ServeHTTP)
		})
	})

	r.Get("/health", health.New(logger, deps.Checkers).ServeHTTP)

	var metricsHandler http.Handler = promhttp.Handler()
	if deps.Gatherer != nil {
		metricsHandler = promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})
	}
	r.Handle("/metrics", metricsHandler)
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
