// Package storage содержит ошибки слоя хранения, общие для репозиториев.
package storage

import "errors"

var (
	// ErrUserNotFound пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserExists нарушено ограничение уникальности email.
	ErrUserExists = errors.New("user already exists")
)
