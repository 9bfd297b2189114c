package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skouter/recruit-api/internal/service/auth"
)

type mockJWTService struct {
	ValidateTokenFunc func(ctx context.Context, tokenString string) (*auth.Claims, error)
}

var _ auth.JWTService = (*mockJWTService)(nil)

func (m *mockJWTService) GenerateToken(_ context.Context, _ uuid.UUID) (string, error) {
	return "", nil
}

func (m *mockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	return m.ValidateTokenFunc(ctx, tokenString)
}

func (m *mockJWTService) GenerateRefreshToken(_ context.Context, _ uuid.UUID) (string, error) {
	return "", nil
}

func (m *mockJWTService) ValidateRefreshToken(_ context.Context, _ string) (*auth.Claims, error) {
	return nil, auth.ErrInvalidRefreshToken
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	newHandler := func(jwt *mockJWTService) (http.Handler, *uuid.UUID) {
		var seenUserID uuid.UUID
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := GetUserID(r)
			require.True(t, ok, "user ID missing from authenticated request context")
			seenUserID = id
			w.WriteHeader(http.StatusOK)
		})
		return NewAuthMiddleware(jwt).Authenticate(next), &seenUserID
	}

	t.Run("valid token passes through with user ID", func(t *testing.T) {
		jwt := &mockJWTService{
			ValidateTokenFunc: func(_ context.Context, tokenString string) (*auth.Claims, error) {
				assert.Equal(t, "good-token", tokenString)
				return &auth.Claims{UserID: userID}, nil
			},
		}
		handler, seenUserID := newHandler(jwt)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, userID, *seenUserID)
	})

	t.Run("missing header is unauthorized", func(t *testing.T) {
		handler, _ := newHandler(&mockJWTService{})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Authorization header required")
	})

	t.Run("malformed header is unauthorized", func(t *testing.T) {
		handler, _ := newHandler(&mockJWTService{})

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid authorization format")
	})

	t.Run("expired token is unauthorized", func(t *testing.T) {
		jwt := &mockJWTService{
			ValidateTokenFunc: func(_ context.Context, _ string) (*auth.Claims, error) {
				return nil, auth.ErrExpiredToken
			},
		}
		handler, _ := newHandler(jwt)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer stale-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Token expired")
	})

	t.Run("refresh token on access path is unauthorized", func(t *testing.T) {
		jwt := &mockJWTService{
			ValidateTokenFunc: func(_ context.Context, _ string) (*auth.Claims, error) {
				return nil, auth.ErrWrongTokenType
			},
		}
		handler, _ := newHandler(jwt)

		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer refresh-token")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid token")
	})
}
