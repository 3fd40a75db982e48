package history

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/notegenius/internal/http/middlewarectx"
	"github.com/magabrotheeeer/notegenius/internal/models"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) History(ctx context.Context, userID string) ([]models.Note, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Note), args.Error(1)
}

func request(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/notes/history", nil)
	if userID != "" {
		req = req.WithContext(middlewarectx.WithUserID(req.Context(), userID))
	}
	return req
}

func TestHistoryHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("returns notes", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("History", mock.Anything, "u1").Return([]models.Note{{ID: "n2"}, {ID: "n1"}}, nil)

		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, request("u1"))

		require.Equal(t, http.StatusOK, rec.Code)
		var got []map[string]any
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
		require.Len(t, got, 2)
		assert.Equal(t, "n2", got[0]["id"])
	})

	t.Run("empty history is an empty array", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("History", mock.Anything, "u1").Return(nil, nil)

		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, request("u1"))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("service error", func(t *testing.T) {
		svc := new(ServiceMock)
		svc.On("History", mock.Anything, "u1").Return(nil, errors.New("db down"))

		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, request("u1"))

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.JSONEq(t, `{"status":"Error","error":"Error fetching history"}`, rec.Body.String())
	})

	t.Run("no user", func(t *testing.T) {
		svc := new(ServiceMock)

		rec := httptest.NewRecorder()
		New(log, svc).ServeHTTP(rec, request(""))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		svc.AssertNotCalled(t, "History", mock.Anything, mock.Anything)
	})
}
