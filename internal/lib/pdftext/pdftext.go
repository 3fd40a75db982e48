// Package pdftext извлекает текст из PDF.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ErrNoText в документе нет извлекаемого текста (например, скан).
var ErrNoText = errors.New("pdf contains no extractable text")

// Extractor извлекает текст из PDF.
type Extractor struct{}

// New создает Extractor.
func New() *Extractor {
	return &Extractor{}
}

// ExtractText возвращает простой текст документа data.
func (e *Extractor) ExtractText(data []byte) (text string, err error) {
	const op = "pdftext.ExtractText"
	// разбор поврежденных файлов в библиотеке может паниковать
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: malformed pdf: %v", op, r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	var buf strings.Builder
	if _, err = io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	text = strings.TrimSpace(buf.String())
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, ErrNoText)
	}
	return text, nil
}

// IsPDF проверяет сигнатуру %PDF- в начале данных.
func IsPDF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("%PDF-"))
}
