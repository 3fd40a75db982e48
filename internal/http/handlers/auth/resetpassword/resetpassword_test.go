package resetpassword

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

	"github.com/magabrotheeeer/notegenius/internal/services/auth"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) ResetPassword(ctx context.Context, token, newPassword string) error {
	return m.Called(ctx, token, newPassword).Error(0)
}

func TestResetPasswordHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		callService    bool
		mockErr        error
		wantStatusCode int
		wantKey        string
		wantValue      string
	}{
		{
			name:           "reset",
			body:           `{"token":"tok","newPassword":"N3w!Passw"}`,
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantKey:        "message",
			wantValue:      "Password reset successfully",
		},
		{
			name:           "expired token",
			body:           `{"token":"tok","newPassword":"N3w!Passw"}`,
			callService:    true,
			mockErr:        auth.ErrInvalidOrExpiredToken,
			wantStatusCode: http.StatusBadRequest,
			wantKey:        "error",
			wantValue:      "Invalid or expired token",
		},
		{
			name:           "internal error",
			body:           `{"token":"tok","newPassword":"N3w!Passw"}`,
			callService:    true,
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantKey:        "error",
			wantValue:      "Error resetting password",
		},
		{
			name:           "weak password",
			body:           `{"token":"tok","newPassword":"short"}`,
			wantStatusCode: http.StatusUnprocessableEntity,
			wantKey:        "error",
			wantValue:      "field newPassword must be 8-72 characters long and contain upper and lower case letters, a digit and one of @$!%*?&",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callService {
				svc.On("ResetPassword", mock.Anything, "tok", "N3w!Passw").Return(tt.mockErr).Once()
			}
			log := slog.New(slog.NewTextHandler(io.Discard, nil))

			req := httptest.NewRequest(http.MethodPost, "/api/auth/reset-password", bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			New(log, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			var got map[string]any
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
			assert.Equal(t, tt.wantValue, got[tt.wantKey])
			svc.AssertExpectations(t)
		})
	}
}
