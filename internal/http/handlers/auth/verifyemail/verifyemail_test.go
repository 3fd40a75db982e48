package verifyemail

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

func (m *ServiceMock) VerifyEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func TestVerifyEmailHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		mockErr        error
		callService    bool
		wantStatusCode int
		wantKey        string
		wantValue      string
	}{
		{
			name:           "verified",
			body:           `{"token":"abc"}`,
			callService:    true,
			wantStatusCode: http.StatusOK,
			wantKey:        "message",
			wantValue:      "Email verified successfully. You can now login.",
		},
		{
			name:           "missing token",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
			wantKey:        "error",
			wantValue:      "Token is missing",
		},
		{
			name:           "invalid token",
			body:           `{"token":"abc"}`,
			callService:    true,
			mockErr:        auth.ErrInvalidToken,
			wantStatusCode: http.StatusBadRequest,
			wantKey:        "error",
			wantValue:      "Invalid or expired token",
		},
		{
			name:           "internal error",
			body:           `{"token":"abc"}`,
			callService:    true,
			mockErr:        errors.New("db down"),
			wantStatusCode: http.StatusInternalServerError,
			wantKey:        "error",
			wantValue:      "Error verifying email",
		},
		{
			name:           "invalid json",
			body:           `token=abc`,
			wantStatusCode: http.StatusBadRequest,
			wantKey:        "error",
			wantValue:      "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			if tt.callService {
				svc.On("VerifyEmail", mock.Anything, "abc").Return(tt.mockErr).Once()
			}
			log := slog.New(slog.NewTextHandler(io.Discard, nil))

			req := httptest.NewRequest(http.MethodPost, "/api/auth/verify-email", bytes.NewBufferString(tt.body))
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
