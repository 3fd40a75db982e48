// Package gemini генерация текста моделью Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/magabrotheeeer/notegenius/internal/config"
)

// ErrEmptyResponse модель не вернула текст.
var ErrEmptyResponse = errors.New("model returned empty response")

// Models часть genai.Models, нужная для генерации.
type Models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client генерирует текст по промпту.
type Client struct {
	models Models
	model  string
}

// New создает клиента Gemini API по ключу из cfg.
func New(ctx context.Context, cfg config.GenAI) (*Client, error) {
	const op = "gemini.New"
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewWithModels(client.Models, cfg.Model), nil
}

// NewWithModels создает клиента поверх готового Models.
func NewWithModels(models Models, model string) *Client {
	return &Client{models: models, model: model}
}

// Generate отправляет prompt модели и возвращает ее текстовый ответ.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	const op = "gemini.Generate"
	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyResponse)
	}
	return text, nil
}
