package login

import (
	"bytes"
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

	"github.com/magabrotheeeer/notegenius/internal/models"
	"github.com/magabrotheeeer/notegenius/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Login(ctx context.Context, email, password string) (string, models.PublicUser, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), args.Get(1).(models.PublicUser), args.Error(2)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func TestLoginHandler_Success(t *testing.T) {
	svc := new(ServiceMock)
	user := models.PublicUser{ID: "user-1", Name: "Alice", Email: "alice@example.com"}
	svc.On("Login", mock.Anything, "alice@example.com", "Str0ng!Pass").Return("jwt-token", user, nil)

	body, _ := json.Marshal(Request{Email: "alice@example.com", Password: "Str0ng!Pass"})
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	New(newNoopLogger(), svc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var got Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, "jwt-token", got.Token)
	assert.Equal(t, user, got.User)
}

func TestLoginHandler_Errors(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockErr        error
		callService    bool
		wantStatusCode int
		wantError      string
	}{
		{
			name:           "invalid json",
			body:           "{",
			wantStatusCode: http.StatusBadRequest,
			wantError:      "invalid request body",
		},
		{
			name:           "bad email",
			body:           `{"email":"nope","password":"x"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantError:      "field email must be a valid email address",
		},
		{
			name:           "invalid credentials",
			body:           `{"email":"alice@example.com","password":"x"}`,
			callService:    true,
			mockErr:        auth.ErrInvalidCredentials,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Invalid email or password",
		},
		{
			name:           "not verified",
			body:           `{"email":"alice@example.com","password":"x"}`,
			callService:    true,
			mockErr:        auth.ErrNotVerified,
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Please verify your email first",
		},
		{
			name:           "internal error",
			body:           `{"email":"alice@example.com","password":"x"}`,
			callService:    true,
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      "Error logging in",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callService {
				svc.On("Login", mock.Anything, "alice@example.com", "x").
					Return("", models.PublicUser{}, tt.mockErr).Once()
			}

			req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			New(newNoopLogger(), svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, "Error", got["status"])
			assert.Equal(t, tt.wantError, got["error"])
			assert.Nil(t, got["token"])
			svc.AssertExpectations(t)
		})
	}
}
