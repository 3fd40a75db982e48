// Package auth реализует жизненный цикл учетных данных: регистрацию с
// подтверждением почты, вход, сброс пароля и удаление аккаунта.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/notegenius/internal/config"
	"github.com/magabrotheeeer/notegenius/internal/lib/jwt"
	"github.com/magabrotheeeer/notegenius/internal/lib/password"
	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
	"github.com/magabrotheeeer/notegenius/internal/mail"
	"github.com/magabrotheeeer/notegenius/internal/models"
	"github.com/magabrotheeeer/notegenius/internal/storage"
)

// UserRepository описывает контракт хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, user models.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error)
	GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error)
	MarkVerified(ctx context.Context, userID, token string) error
	SetVerificationToken(ctx context.Context, userID, token string, expiresAt *time.Time) error
	SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error
	ResetPassword(ctx context.Context, userID, token, passwordHash string, now time.Time) error
	DeleteUser(ctx context.Context, userID string) error
}

// Hasher хэширует и сверяет пароли.
type Hasher interface {
	GetHash(plain string) (string, error)
	CompareHash(hash, plain string) error
}

// TokenGenerator выпускает непрозрачные токены для писем.
type TokenGenerator interface {
	Generate() (string, error)
}

// Mailer доставляет письма.
type Mailer interface {
	Deliver(ctx context.Context, msg mail.Message, awaitDelivery bool) bool
}

// HistoryInvalidator сбрасывает кэш истории конспектов пользователя.
type HistoryInvalidator interface {
	InvalidateHistory(ctx context.Context, userID string)
}

// Recorder учитывает исходы операций.
type Recorder interface {
	AuthEvent(operation, outcome string)
}

// Deps зависимости AuthService.
type Deps struct {
	Users    UserRepository
	Hasher   Hasher
	Tokens   TokenGenerator
	JWT      jwt.Maker
	Mailer   Mailer
	History  HistoryInvalidator
	Recorder Recorder
	// Logo inline логотип писем, может быть nil.
	Logo *mail.Attachment
}

// AuthService управляет регистрацией, входом и восстановлением доступа.
type AuthService struct {
	Deps
	cfg config.Auth
	log *slog.Logger
	now func() time.Time
}

// NewAuthService создает новый экземпляр AuthService.
func NewAuthService(log *slog.Logger, cfg config.Auth, deps Deps) *AuthService {
	cfg.ClientURL = strings.TrimRight(cfg.ClientURL, "/")
	return &AuthService{
		Deps: deps,
		cfg:  cfg,
		log:  log,
		now:  time.Now,
	}
}

// Register создает неподтвержденного пользователя и отправляет письмо
// подтверждения, не дожидаясь доставки.
func (s *AuthService) Register(ctx context.Context, name, email, rawPassword string) (err error) {
	const op = "auth.Register"
	defer func() { s.observe("register", err) }()

	if _, err = s.Users.GetUserByEmail(ctx, email); err == nil {
		return ErrConflict
	} else if !errors.Is(err, storage.ErrUserNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.Hasher.GetHash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	token, err := s.Tokens.Generate()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Name:                       name,
		Email:                      email,
		PasswordHash:               hash,
		VerificationToken:          &token,
		VerificationTokenExpiresAt: s.verificationExpiry(),
	}
	if _, err = s.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return ErrConflict
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	msg, err := mail.VerificationMessage(email, name, s.link("verify-email", token), s.Logo)
	if err != nil {
		s.log.Error("failed to render verification email", slog.String("op", op), sl.Err(err))
		return nil
	}
	if !s.Mailer.Deliver(ctx, msg, false) {
		s.log.Warn("verification email was not dispatched", slog.String("op", op))
	}
	return nil
}

// VerifyEmail подтверждает почту по токену. Токен одноразовый.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (err error) {
	const op = "auth.VerifyEmail"
	defer func() { s.observe("verify_email", err) }()

	if token == "" {
		return ErrInvalidToken
	}
	user, err := s.Users.GetUserByVerificationToken(ctx, token)
	if errors.Is(err, storage.ErrUserNotFound) {
		return ErrInvalidToken
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if exp := user.VerificationTokenExpiresAt; exp != nil && !s.now().Before(*exp) {
		return ErrInvalidToken
	}

	if err = s.Users.MarkVerified(ctx, user.ID, token); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrInvalidToken
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Login проверяет учетные данные и выпускает сессионный JWT.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (token string, user models.PublicUser, err error) {
	const op = "auth.Login"
	defer func() { s.observe("login", err) }()

	u, err := s.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return "", models.PublicUser{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}
	if !u.IsVerified {
		if s.cfg.UniformResponses {
			return "", models.PublicUser{}, ErrInvalidCredentials
		}
		return "", models.PublicUser{}, ErrNotVerified
	}
	if err = s.Hasher.CompareHash(u.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return "", models.PublicUser{}, ErrInvalidCredentials
		}
		return "", models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}

	token, err = s.JWT.GenerateToken(u.ID)
	if err != nil {
		return "", models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}
	return token, u.Public(), nil
}

// ForgotPassword выпускает токен сброса и ждет доставки письма.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (err error) {
	const op = "auth.ForgotPassword"
	defer func() { s.observe("forgot_password", err) }()

	user, err := s.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		if s.cfg.UniformResponses {
			return nil
		}
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.Tokens.Generate()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.Users.SetResetToken(ctx, user.ID, token, s.now().Add(s.cfg.ResetTokenTTL)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	msg, err := mail.PasswordResetMessage(email, user.Name, s.link("reset-password", token), s.Logo)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !s.Mailer.Deliver(ctx, msg, true) {
		return ErrDeliveryFailed
	}
	return nil
}

// ResetPassword меняет пароль по действующему токену сброса. Токен одноразовый.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) (err error) {
	const op = "auth.ResetPassword"
	defer func() { s.observe("reset_password", err) }()

	if token == "" {
		return ErrInvalidOrExpiredToken
	}
	now := s.now()
	user, err := s.Users.GetUserByResetToken(ctx, token, now)
	if errors.Is(err, storage.ErrUserNotFound) {
		return ErrInvalidOrExpiredToken
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	hash, err := s.Hasher.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.Users.ResetPassword(ctx, user.ID, token, hash, now); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// DeleteAccount удаляет пользователя вместе с конспектами и сбрасывает кэш истории.
func (s *AuthService) DeleteAccount(ctx context.Context, userID string) (err error) {
	const op = "auth.DeleteAccount"
	defer func() { s.observe("delete_account", err) }()

	if err = s.Users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if s.History != nil {
		s.History.InvalidateHistory(ctx, userID)
	}
	return nil
}

// ResendVerification выпускает новый токен подтверждения и ждет доставки письма.
func (s *AuthService) ResendVerification(ctx context.Context, email string) (err error) {
	const op = "auth.ResendVerification"
	defer func() { s.observe("resend_verification", err) }()

	user, err := s.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		if s.cfg.UniformResponses {
			return nil
		}
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if user.IsVerified {
		if s.cfg.UniformResponses {
			return nil
		}
		return ErrAlreadyVerified
	}

	token, err := s.Tokens.Generate()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = s.Users.SetVerificationToken(ctx, user.ID, token, s.verificationExpiry()); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrAlreadyVerified
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	msg, err := mail.VerificationMessage(email, user.Name, s.link("verify-email", token), s.Logo)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !s.Mailer.Deliver(ctx, msg, true) {
		return ErrDeliveryFailed
	}
	return nil
}

func (s *AuthService) verificationExpiry() *time.Time {
	if s.cfg.VerificationTokenTTL <= 0 {
		return nil
	}
	exp := s.now().Add(s.cfg.VerificationTokenTTL)
	return &exp
}

func (s *AuthService) link(path, token string) string {
	return s.cfg.ClientURL + "/" + path + "/" + token
}

func (s *AuthService) observe(operation string, err error) {
	if s.Recorder == nil {
		return
	}
	outcome := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrDeliveryFailed):
		outcome = "delivery_failed"
	case isClientError(err):
		outcome = "rejected"
	default:
		outcome = "error"
	}
	s.Recorder.AuthEvent(operation, outcome)
}

func isClientError(err error) bool {
	for _, target := range []error{
		ErrConflict, ErrInvalidCredentials, ErrNotVerified, ErrInvalidToken,
		ErrInvalidOrExpiredToken, ErrNotFound, ErrAlreadyVerified,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
