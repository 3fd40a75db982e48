// Package models содержит доменные модели сервиса: пользователя и конспект.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	ID                         string     // UUID, выдается базой
	Name                       string     // Отображаемое имя
	Email                      string     // Электронная почта, уникальна
	PasswordHash               string     // bcrypt хэш пароля
	IsVerified                 bool       // Почта подтверждена
	VerificationToken          *string    // Токен подтверждения, nil после подтверждения
	VerificationTokenExpiresAt *time.Time // Срок действия токена подтверждения
	ResetToken                 *string    // Токен сброса пароля
	ResetTokenExpiry           *time.Time // Срок действия токена сброса
	CreatedAt                  time.Time
}

// PublicUser данные пользователя, которые можно отдавать клиенту.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public возвращает публичное представление пользователя.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email}
}
