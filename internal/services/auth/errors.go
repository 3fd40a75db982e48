package auth

import "errors"

var (
	// ErrConflict пользователь с таким email уже есть.
	ErrConflict = errors.New("user already exists")
	// ErrInvalidCredentials неизвестный email или неверный пароль.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrNotVerified почта пользователя не подтверждена.
	ErrNotVerified = errors.New("email is not verified")
	// ErrInvalidToken токен подтверждения пуст, неизвестен или истек.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrInvalidOrExpiredToken токен сброса неизвестен или истек.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")
	// ErrNotFound пользователь не найден.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyVerified почта уже подтверждена.
	ErrAlreadyVerified = errors.New("email is already verified")
	// ErrDeliveryFailed письмо не удалось отправить.
	ErrDeliveryFailed = errors.New("failed to deliver email")
)
