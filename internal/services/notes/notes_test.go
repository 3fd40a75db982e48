package notes

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/notegenius/internal/models"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateNote(ctx context.Context, userID, originalText, aiOutput string) (*models.Note, error) {
	args := m.Called(ctx, userID, originalText, aiOutput)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockRepository) ListNotes(ctx context.Context, userID string) ([]models.Note, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Note), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string, result any) (bool, error) {
	args := m.Called(ctx, key, result)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	return m.Called(ctx, key, value, expiration).Error(0)
}

func (m *MockCache) Invalidate(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

type recorderStub struct {
	generated []string
	cache     []string
}

func (r *recorderStub) NoteGenerated(outcome string) { r.generated = append(r.generated, outcome) }

func (r *recorderStub) HistoryCache(result string) { r.cache = append(r.cache, result) }

func newService() (*NoteService, *MockRepository, *MockCache, *MockGenerator, *recorderStub) {
	repo := new(MockRepository)
	cache := new(MockCache)
	gen := new(MockGenerator)
	rec := &recorderStub{}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewNoteService(repo, cache, gen, rec, log, time.Hour), repo, cache, gen, rec
}

func TestHistoryKey(t *testing.T) {
	assert.Equal(t, "notes_history:42", HistoryKey("42"))
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Photosynthesis converts light to energy.")
	assert.Contains(t, prompt, "You are an educational assistant.")
	assert.Contains(t, prompt, "1. Simple explanation in very easy language")
	assert.Contains(t, prompt, "3. 5 important 5-mark questions")
	assert.Contains(t, prompt, "4. 3 important 10-mark questions")
	assert.Contains(t, prompt, "Study Material:\nPhotosynthesis converts light to energy.")
}

func TestAnalyze_Success(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache, gen, rec := newService()
	note := &models.Note{ID: "n1", UserID: "u1", OriginalText: "cells", AIOutput: "notes"}

	gen.On("Generate", ctx, BuildPrompt("cells")).Return("notes", nil)
	repo.On("CreateNote", ctx, "u1", "cells", "notes").Return(note, nil)
	cache.On("Invalidate", ctx, "notes_history:u1").Return(nil)

	got, err := svc.Analyze(ctx, "u1", "cells")
	require.NoError(t, err)
	assert.Equal(t, note, got)
	cache.AssertExpectations(t)
	assert.Equal(t, []string{"success"}, rec.generated)
}

func TestAnalyze_NoInput(t *testing.T) {
	svc, _, _, gen, _ := newService()

	_, err := svc.Analyze(context.Background(), "u1", "   \n")
	assert.ErrorIs(t, err, ErrNoInput)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestAnalyze_GenerationFailed(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache, gen, rec := newService()
	gen.On("Generate", ctx, mock.Anything).Return("", errors.New("quota exceeded"))

	_, err := svc.Analyze(ctx, "u1", "cells")
	require.Error(t, err)
	repo.AssertNotCalled(t, "CreateNote", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	assert.Equal(t, []string{"generation_failed"}, rec.generated)
}

func TestAnalyze_InvalidateFailureIsLogged(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache, gen, _ := newService()
	gen.On("Generate", ctx, mock.Anything).Return("notes", nil)
	repo.On("CreateNote", ctx, "u1", "cells", "notes").Return(&models.Note{ID: "n1"}, nil)
	cache.On("Invalidate", ctx, "notes_history:u1").Return(errors.New("redis down"))

	_, err := svc.Analyze(ctx, "u1", "cells")
	assert.NoError(t, err)
}

func TestHistory_CacheHit(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache, _, rec := newService()
	cached := []models.Note{{ID: "n2"}, {ID: "n1"}}

	cache.On("Get", ctx, "notes_history:u1", mock.Anything).
		Run(func(args mock.Arguments) {
			*args.Get(2).(*[]models.Note) = cached
		}).
		Return(true, nil)

	got, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	repo.AssertNotCalled(t, "ListNotes", mock.Anything, mock.Anything)
	assert.Equal(t, []string{"hit"}, rec.cache)
}

func TestHistory_MissPopulatesCache(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache, _, rec := newService()
	list := []models.Note{{ID: "n1"}}

	cache.On("Get", ctx, "notes_history:u1", mock.Anything).Return(false, nil)
	repo.On("ListNotes", ctx, "u1").Return(list, nil)
	cache.On("Set", ctx, "notes_history:u1", list, time.Hour).Return(nil)

	got, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, list, got)
	cache.AssertExpectations(t)
	assert.Equal(t, []string{"miss"}, rec.cache)
}

func TestHistory_EmptyIsCachedAsEmptyList(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache, _, _ := newService()

	cache.On("Get", ctx, "notes_history:u1", mock.Anything).Return(false, nil)
	repo.On("ListNotes", ctx, "u1").Return(nil, nil)
	cache.On("Set", ctx, "notes_history:u1", []models.Note{}, time.Hour).Return(nil)

	got, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestHistory_CacheErrorFallsThrough(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache, _, rec := newService()
	list := []models.Note{{ID: "n1"}}

	cache.On("Get", ctx, "notes_history:u1", mock.Anything).Return(false, errors.New("redis down"))
	repo.On("ListNotes", ctx, "u1").Return(list, nil)
	cache.On("Set", ctx, "notes_history:u1", list, time.Hour).Return(errors.New("redis down"))

	got, err := svc.History(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, list, got)
	assert.Equal(t, []string{"error"}, rec.cache)
}

func TestHistory_StoreError(t *testing.T) {
	ctx := context.Background()
	svc, repo, cache, _, _ := newService()

	cache.On("Get", ctx, "notes_history:u1", mock.Anything).Return(false, nil)
	repo.On("ListNotes", ctx, "u1").Return(nil, errors.New("db down"))

	_, err := svc.History(ctx, "u1")
	require.Error(t, err)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
