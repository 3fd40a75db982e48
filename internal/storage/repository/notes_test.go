package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorage_CreateNote(t *testing.T) {
	s, mock := newMockStorage(t)
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO notes (user_id, original_text, ai_output)`)).
		WithArgs("u-1", "text", "summary").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("n-1", created))

	n, err := s.CreateNote(context.Background(), "u-1", "text", "summary")
	require.NoError(t, err)
	assert.Equal(t, "n-1", n.ID)
	assert.Equal(t, "u-1", n.UserID)
	assert.Equal(t, "summary", n.AIOutput)
	assert.Equal(t, created, n.CreatedAt)
}

func TestStorage_ListNotes(t *testing.T) {
	newer := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	cols := []string{"id", "user_id", "original_text", "ai_output", "created_at"}

	t.Run("ordered newest first", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC`)).
			WithArgs("u-1").
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow("n-2", "u-1", "b", "B", newer).
				AddRow("n-1", "u-1", "a", "A", older))

		notes, err := s.ListNotes(context.Background(), "u-1")
		require.NoError(t, err)
		require.Len(t, notes, 2)
		assert.Equal(t, "n-2", notes[0].ID)
		assert.Equal(t, "n-1", notes[1].ID)
	})

	t.Run("empty is not nil", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM notes`)).
			WithArgs("u-9").
			WillReturnRows(sqlmock.NewRows(cols))

		notes, err := s.ListNotes(context.Background(), "u-9")
		require.NoError(t, err)
		assert.NotNil(t, notes)
		assert.Empty(t, notes)
	})

	t.Run("query error", func(t *testing.T) {
		s, mock := newMockStorage(t)
		mock.ExpectQuery(regexp.QuoteMeta(`FROM notes`)).
			WillReturnError(errors.New("db down"))

		_, err := s.ListNotes(context.Background(), "u-1")
		assert.ErrorContains(t, err, "storage.ListNotes")
	})
}
