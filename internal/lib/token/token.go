// Package token выпускает непрозрачные случайные токены для подтверждения
// почты и сброса пароля.
package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// DefaultSize размер токена в байтах до кодирования.
const DefaultSize = 32

// Generator выпускает hex-токены заданного размера.
type Generator struct {
	size int
}

// NewGenerator создает Generator. size <= 0 означает DefaultSize.
func NewGenerator(size int) *Generator {
	if size <= 0 {
		size = DefaultSize
	}
	return &Generator{size: size}
}

// Generate возвращает криптографически случайный токен в hex.
func (g *Generator) Generate() (string, error) {
	const op = "token.Generate"
	buf := make([]byte, g.size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return hex.EncodeToString(buf), nil
}
