// Package jwt реализует генерацию и парсинг JWT токенов сессии.
//
// Maker определяет интерфейс для создания и проверки JWT токенов, привязанных к ID пользователя.
// MakerImpl: конкретная реализация с использованием секретного ключа и срока жизни токена.
package jwt

import (
	"errors"
	"time"
)

var (
	// ErrTokenExpired возвращается для токена с истекшим сроком действия.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid возвращается для поврежденного, поддельного или чужого токена.
	ErrTokenInvalid = errors.New("token invalid")
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	// GenerateToken выпускает токен для пользователя с ID userID.
	GenerateToken(userID string) (string, error)
	// ParseToken возвращает *CustomClaims или ErrTokenExpired / ErrTokenInvalid.
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует интерфейс Maker с использованием секретного ключа
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
	now       func() time.Time
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		now:       time.Now,
	}
}
