package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/fitfactory/backend/internal/service"
	"github.com/sirupsen/logrus"
)

type contextKey string

const claimsKey contextKey = "claims"

type AuthMiddleware struct {
	jwtService *service.JWTService
	admins     map[string]struct{}
	logger     *logrus.Logger
}

// NewAuthMiddleware builds the bearer-token guard. adminEmails lists the
// accounts allowed through RequireAdmin.
func NewAuthMiddleware(jwtService *service.JWTService, adminEmails []string, logger *logrus.Logger) *AuthMiddleware {
	admins := make(map[string]struct{}, len(adminEmails))
	for _, email := range adminEmails {
		if email = service.NormalizeEmail(email); email != "" {
			admins[email] = struct{}{}
		}
	}

	return &AuthMiddleware{
		jwtService: jwtService,
		admins:     admins,
		logger:     logger,
	}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			m.respond(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			m.respond(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.VerifyToken(parts[1])
		if err != nil {
			m.logger.WithError(err).Debug("Token verification failed")
			m.respond(w, http.StatusUnauthorized, service.PublicMessage(err, "Invalid token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireAdmin must run after RequireAuth.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			m.respond(w, http.StatusUnauthorized, "Missing authorization header")
			return
		}

		if !m.IsAdmin(claims.Email) {
			m.logger.WithFields(logrus.Fields{
				"user_id": claims.UserID,
				"path":    r.URL.Path,
			}).Warn("Non-admin request to admin endpoint")
			m.respond(w, http.StatusForbidden, "Admin access required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) IsAdmin(email string) bool {
	_, ok := m.admins[service.NormalizeEmail(email)]
	return ok
}

func (m *AuthMiddleware) respond(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}

func WithClaims(ctx context.Context, claims *service.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

func ClaimsFromContext(ctx context.Context) (*service.Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*service.Claims)
	return claims, ok && claims != nil
}
