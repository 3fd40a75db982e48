// Package notegenius собирает HTTP API сервиса: хранилище, кэш, почту,
// генерацию конспектов, метрики и трассировку.
package notegenius

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/notegenius/internal/cache"
	"github.com/magabrotheeeer/notegenius/internal/config"
	"github.com/magabrotheeeer/notegenius/internal/http/handlers/health"
	"github.com/magabrotheeeer/notegenius/internal/http/middlewarectx"
	"github.com/magabrotheeeer/notegenius/internal/lib/gemini"
	"github.com/magabrotheeeer/notegenius/internal/lib/jwt"
	"github.com/magabrotheeeer/notegenius/internal/lib/password"
	"github.com/magabrotheeeer/notegenius/internal/lib/pdftext"
	"github.com/magabrotheeeer/notegenius/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
	"github.com/magabrotheeeer/notegenius/internal/lib/token"
	"github.com/magabrotheeeer/notegenius/internal/mail"
	"github.com/magabrotheeeer/notegenius/internal/metrics"
	"github.com/magabrotheeeer/notegenius/internal/migrations"
	authservice "github.com/magabrotheeeer/notegenius/internal/services/auth"
	notesservice "github.com/magabrotheeeer/notegenius/internal/services/notes"
	"github.com/magabrotheeeer/notegenius/internal/storage/repository"
	"github.com/magabrotheeeer/notegenius/internal/telemetry"
)

const shutdownTimeout = 15 * time.Second

// App HTTP API сервиса.
type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	cache      *cache.Cache
	dispatcher *mail.Dispatcher
	amqpConn   *amqp.Connection
	amqpCh     *amqp.Channel
	shutdown   telemetry.Shutdown
}

// New подключает зависимости и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (_ *App, err error) {
	app := &App{logger: logger}
	defer func() {
		if err != nil {
			app.close(context.Background())
		}
	}()

	app.db, err = repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(app.db.DB); err != nil {
		return nil, err
	}
	if err = app.db.CheckDatabaseReady(ctx); err != nil {
		return nil, err
	}

	app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		logger.Warn("redis is unavailable, history will be served from postgres until it recovers", sl.Err(err))
		app.cache = cache.New(cfg.RedisConnection)
		err = nil
	}

	app.shutdown, err = telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	notifier := mail.NewNotifier(logger, m, mail.NewProviders(cfg.Mail, logger)...)
	if p := notifier.Active(); p != nil {
		logger.Info("email provider selected", slog.String("provider", p.Name()))
	} else {
		logger.Warn("no email provider configured, emails will not be sent")
	}

	var publisher mail.Publisher
	if cfg.RabbitMQ.URL != "" {
		app.amqpConn, err = rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.MaxRetries, cfg.RabbitMQ.RetryDelay)
		if err != nil {
			return nil, err
		}
		app.amqpCh, err = rabbitmq.SetupChannel(app.amqpConn, rabbitmq.GetNotificationQueues())
		if err != nil {
			return nil, err
		}
		publisher = rabbitmq.NewPublisher(app.amqpCh, rabbitmq.ExchangeName, rabbitmq.EmailRoutingKey)
	}
	app.dispatcher = mail.NewDispatcher(logger, notifier, publisher, cfg.Mail.SendTimeout)

	logo, err := mail.LoadLogo(cfg.Mail.LogoPath)
	if err != nil {
		logger.Warn("failed to load email logo, sending without it", sl.Err(err))
		err = nil
	}

	generator, err := gemini.New(ctx, cfg.GenAI)
	if err != nil {
		return nil, err
	}

	hasher := password.NewHasher(cfg.Auth.BcryptCost)
	if hasher.Cost() != cfg.Auth.BcryptCost {
		logger.Warn("bcrypt cost out of range, using default",
			slog.Int("configured", cfg.Auth.BcryptCost), slog.Int("cost", hasher.Cost()))
	}

	noteService := notesservice.NewNoteService(app.db, app.cache, generator, m, logger, cfg.Notes.HistoryTTL)
	jwtMaker := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(logger, cfg.Auth, authservice.Deps{
		Users:    app.db,
		Hasher:   hasher,
		Tokens:   token.NewGenerator(token.DefaultSize),
		JWT:      jwtMaker,
		Mailer:   app.dispatcher,
		History:  noteService,
		Recorder: m,
		Logo:     logo,
	})

	limiter := middlewarectx.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	if err = limiter.TrustProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Deps{
		Auth:      authService,
		Notes:     noteService,
		Tokens:    jwtMaker,
		Extractor: pdftext.New(),
		Limiter:   limiter,
		Checkers: map[string]health.Checker{
			"postgres": app.db,
			"redis":    app.cache,
		},
		Gatherer:       registry,
		MaxUploadBytes: cfg.Notes.MaxUploadBytes,
		ServiceName:    cfg.Telemetry.ServiceName,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close(context.Background())
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close(timeoutCtx)
		return err
	}
}

func (a *App) close(ctx context.Context) {
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	if a.amqpCh != nil {
		if err := a.amqpCh.Close(); err != nil {
			a.logger.Error("failed to close channel", sl.Err(err))
		}
	}
	if a.amqpConn != nil {
		if err := a.amqpConn.Close(); err != nil {
			a.logger.Error("failed to close connection", sl.Err(err))
		}
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", sl.Err(err))
		}
	}
	if a.shutdown != nil {
		if err := a.shutdown(ctx); err != nil {
			a.logger.Error("failed to shutdown tracer provider", sl.Err(err))
		}
	}
}
