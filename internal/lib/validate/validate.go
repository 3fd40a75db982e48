// Package validate настраивает validator для тел запросов.
package validate

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator"
)

// PasswordTag тег правила сложности пароля.
const PasswordTag = "password"

const (
	passwordMinLen   = 8
	passwordMaxBytes = 72 // предел bcrypt
	passwordSymbols  = "@$!%*?&"
)

// New возвращает validator с правилом password и именами полей из json тегов.
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	if err := v.RegisterValidation(PasswordTag, func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// IsStrongPassword проверяет пароль: не короче 8 символов и не длиннее 72 байт,
// есть строчная и заглавная латинская буква, цифра и символ из @$!%*?&,
// другие символы не допускаются.
func IsStrongPassword(p string) bool {
	if len(p) > passwordMaxBytes || len([]rune(p)) < passwordMinLen {
		return false
	}
	var lower, upper, digit, symbol bool
	for _, r := range p {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}
