package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fitfactory/backend/internal/config"
	"github.com/fitfactory/backend/internal/service"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "middleware-test-secret-0123456789abcdef"

func newTestAuth(t *testing.T) (*AuthMiddleware, *service.JWTService) {
	t.Helper()
	logger, _ := logtest.NewNullLogger()
	jwtService, err := service.NewJWTService(&config.JWTConfig{SecretKey: testSecret, AccessExpiry: time.Hour}, logger)
	require.NoError(t, err)
	return NewAuthMiddleware(jwtService, []string{" Admin@X.com "}, logger), jwtService
}

func bearer(t *testing.T, jwtService *service.JWTService, userID, email string) string {
	t.Helper()
	tok, err := jwtService.GenerateAccessToken(userID, email)
	require.NoError(t, err)
	return "Bearer " + tok.Token
}

func echoClaims(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		w.WriteHeader(http.StatusTeapot)
		return
	}
	w.Write([]byte(claims.UserID))
}

func TestRequireAuth(t *testing.T) {
	auth, jwtService := newTestAuth(t)
	handler := auth.RequireAuth(http.HandlerFunc(echoClaims))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"valid", bearer(t, jwtService, "u1", "a@x.com"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "u1", rec.Body.String())
				return
			}
			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	auth, jwtService := newTestAuth(t)
	handler := auth.RequireAuth(auth.RequireAdmin(http.HandlerFunc(echoClaims)))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearer(t, jwtService, "u1", "someone@x.com"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", bearer(t, jwtService, "admin-1", "admin@x.com"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "admin-1", rec.Body.String())

	assert.True(t, auth.IsAdmin("ADMIN@x.com"))
	assert.False(t, auth.IsAdmin(""))
}

func TestLoggingMiddleware(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/auth/login", nil))

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.ErrorLevel, entry.Level)
	assert.Equal(t, http.StatusInternalServerError, entry.Data["status"])
	assert.Equal(t, "/api/auth/login", entry.Data["path"])
}

func TestCORS(t *testing.T) {
	handler := CORS([]string{"http://localhost:5173"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/auth/login", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
