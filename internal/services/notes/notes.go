// Package notes генерирует учебные конспекты и отдает историю пользователя
// с кэшированием в Redis.
package notes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/notegenius/internal/lib/sl"
	"github.com/magabrotheeeer/notegenius/internal/models"
)

// ErrNoInput не передан ни текст, ни файл.
var ErrNoInput = errors.New("no study material provided")

const historyKeyPrefix = "notes_history:"

// NoteRepository хранилище конспектов.
type NoteRepository interface {
	CreateNote(ctx context.Context, userID, originalText, aiOutput string) (*models.Note, error)
	ListNotes(ctx context.Context, userID string) ([]models.Note, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// Generator генерирует текст по промпту.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Recorder учитывает генерации и обращения к кэшу.
type Recorder interface {
	NoteGenerated(outcome string)
	HistoryCache(result string)
}

// NoteService реализует генерацию конспектов и историю с кэшированием.
type NoteService struct {
	repo      NoteRepository
	cache     Cache
	generator Generator
	recorder  Recorder
	log       *slog.Logger
	ttl       time.Duration
}

// NewNoteService создает новый экземпляр NoteService. recorder может быть nil.
func NewNoteService(repo NoteRepository, cache Cache, generator Generator, recorder Recorder, log *slog.Logger, ttl time.Duration) *NoteService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &NoteService{
		repo:      repo,
		cache:     cache,
		generator: generator,
		recorder:  recorder,
		log:       log,
		ttl:       ttl,
	}
}

// HistoryKey ключ кэша истории пользователя.
func HistoryKey(userID string) string {
	return historyKeyPrefix + userID
}

// BuildPrompt собирает промпт для модели из учебного материала.
func BuildPrompt(material string) string {
	return "You are an educational assistant.\n\n" +
		"From the given study material, provide:\n\n" +
		"1. Simple explanation in very easy language\n" +
		"2. Short notes in bullet points\n" +
		"3. 5 important 5-mark questions\n" +
		"4. 3 important 10-mark questions\n\n" +
		"Study Material:\n" + material
}

// Analyze генерирует конспект, сохраняет его и сбрасывает кэш истории.
func (s *NoteService) Analyze(ctx context.Context, userID, material string) (*models.Note, error) {
	const op = "notes.Analyze"
	if strings.TrimSpace(material) == "" {
		return nil, ErrNoInput
	}

	output, err := s.generator.Generate(ctx, BuildPrompt(material))
	if err != nil {
		s.noteGenerated("generation_failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	note, err := s.repo.CreateNote(ctx, userID, material, output)
	if err != nil {
		s.noteGenerated("store_failed")
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	s.noteGenerated("success")
	s.log.Info("note created", slog.String("op", op), slog.String("note_id", note.ID))

	s.InvalidateHistory(ctx, userID)
	return note, nil
}

// History возвращает конспекты пользователя, новые первыми. Ошибка кэша не
// прерывает чтение, запрос уходит в хранилище.
func (s *NoteService) History(ctx context.Context, userID string) ([]models.Note, error) {
	const op = "notes.History"
	key := HistoryKey(userID)

	var cached []models.Note
	found, err := s.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		s.historyCache("error")
		s.log.Warn("failed to read history from cache", slog.String("key", key), sl.Err(err))
	case found:
		s.historyCache("hit")
		if cached == nil {
			cached = []models.Note{}
		}
		return cached, nil
	default:
		s.historyCache("miss")
	}

	list, err := s.repo.ListNotes(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if list == nil {
		list = []models.Note{}
	}
	if err := s.cache.Set(ctx, key, list, s.ttl); err != nil {
		s.log.Warn("failed to add history to cache", slog.String("key", key), sl.Err(err))
	}
	return list, nil
}

// InvalidateHistory удаляет историю пользователя из кэша. Ошибка только логируется,
// устаревание ограничено TTL записи.
func (s *NoteService) InvalidateHistory(ctx context.Context, userID string) {
	key := HistoryKey(userID)
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Warn("failed to remove history from cache", slog.String("key", key), sl.Err(err))
	}
}

func (s *NoteService) noteGenerated(outcome string) {
	if s.recorder != nil {
		s.recorder.NoteGenerated(outcome)
	}
}

func (s *NoteService) historyCache(result string) {
	if s.recorder != nil {
		s.recorder.HistoryCache(result)
	}
}
