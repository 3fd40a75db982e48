package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/magabrotheeeer/notegenius/internal/models"
	"github.com/magabrotheeeer/notegenius/internal/storage"
)

const userColumns = `id, name, email, password_hash, is_verified,
			      verification_token, verification_token_expires_at,
			      reset_token, reset_token_expiry, created_at`

// CreateUser сохраняет нового пользователя и возвращает его ID.
// Нарушение уникальности email возвращает storage.ErrUserExists.
func (s *Storage) CreateUser(ctx context.Context, user models.User) (string, error) {
	const op = "storage.CreateUser"

	var newID string
	query := `INSERT INTO users (name, email, password_hash, is_verified,
			      verification_token, verification_token_expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6)
			  RETURNING id;`
	err := s.DB.QueryRowContext(ctx, query,
		user.Name, user.Email, user.PasswordHash, user.IsVerified,
		user.VerificationToken, user.VerificationTokenExpiresAt).Scan(&newID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return "", fmt.Errorf("%s: %w", op, storage.ErrUserExists)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return newID, nil
}

// GetUserByEmail возвращает пользователя по email (с учетом регистра).
func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const op = "storage.GetUserByEmail"
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.getUser(ctx, op, query, email)
}

// GetUserByVerificationToken возвращает пользователя с данным токеном подтверждения.
func (s *Storage) GetUserByVerificationToken(ctx context.Context, token string) (*models.User, error) {
	const op = "storage.GetUserByVerificationToken"
	query := `SELECT ` + userColumns + ` FROM users WHERE verification_token = $1`
	return s.getUser(ctx, op, query, token)
}

// GetUserByResetToken возвращает пользователя с данным токеном сброса,
// если срок его действия строго позже now.
func (s *Storage) GetUserByResetToken(ctx context.Context, token string, now time.Time) (*models.User, error) {
	const op = "storage.GetUserByResetToken"
	query := `SELECT ` + userColumns + ` FROM users
			  WHERE reset_token = $1 AND reset_token_expiry > $2`
	return s.getUser(ctx, op, query, token, now)
}

func (s *Storage) getUser(ctx context.Context, op, query string, args ...any) (*models.User, error) {
	u := &models.User{}
	var verificationToken, resetToken sql.NullString
	var verificationExpiry, resetExpiry sql.NullTime

	err := s.DB.QueryRowContext(ctx, query, args...).Scan(
		&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.IsVerified,
		&verificationToken, &verificationExpiry,
		&resetToken, &resetExpiry, &u.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if verificationToken.Valid {
		u.VerificationToken = &verificationToken.String
	}
	if verificationExpiry.Valid {
		u.VerificationTokenExpiresAt = &verificationExpiry.Time
	}
	if resetToken.Valid {
		u.ResetToken = &resetToken.String
	}
	if resetExpiry.Valid {
		u.ResetTokenExpiry = &resetExpiry.Time
	}
	return u, nil
}

// MarkVerified подтверждает почту, если токен все еще принадлежит пользователю.
// Повторное использование токена возвращает storage.ErrUserNotFound.
func (s *Storage) MarkVerified(ctx context.Context, userID, token string) error {
	const op = "storage.MarkVerified"
	query := `UPDATE users
			  SET is_verified = TRUE,
			      verification_token = NULL,
			      verification_token_expires_at = NULL
			  WHERE id = $1 AND verification_token = $2`
	return s.execOne(ctx, op, query, userID, token)
}

// SetVerificationToken выдает новый токен подтверждения неподтвержденному пользователю.
func (s *Storage) SetVerificationToken(ctx context.Context, userID, token string, expiresAt *time.Time) error {
	const op = "storage.SetVerificationToken"
	query := `UPDATE users
			  SET verification_token = $2,
			      verification_token_expires_at = $3
			  WHERE id = $1 AND is_verified = FALSE`
	return s.execOne(ctx, op, query, userID, token, expiresAt)
}

// SetResetToken сохраняет токен сброса пароля и срок его действия.
func (s *Storage) SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error {
	const op = "storage.SetResetToken"
	query := `UPDATE users
			  SET reset_token = $2,
			      reset_token_expiry = $3
			  WHERE id = $1`
	return s.execOne(ctx, op, query, userID, token, expiry)
}

// ResetPassword заменяет хэш пароля и гасит токен сброса. Условие на токен и срок
// делает операцию одноразовой при конкурентных запросах.
func (s *Storage) ResetPassword(ctx context.Context, userID, token, passwordHash string, now time.Time) error {
	const op = "storage.ResetPassword"
	query := `UPDATE users
			  SET password_hash = $3,
			      reset_token = NULL,
			      reset_token_expiry = NULL
			  WHERE id = $1 AND reset_token = $2 AND reset_token_expiry > $4`
	return s.execOne(ctx, op, query, userID, token, passwordHash, now)
}

// DeleteUser удаляет пользователя, конспекты удаляются каскадно.
func (s *Storage) DeleteUser(ctx context.Context, userID string) error {
	const op = "storage.DeleteUser"
	return s.execOne(ctx, op, `DELETE FROM users WHERE id = $1`, userID)
}

func (s *Storage) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrUserNotFound)
	}
	return nil
}
