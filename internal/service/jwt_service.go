package service

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/fitfactory/backend/internal/config"
	"github.com/fitfactory/backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const tokenTypeAccess = "access"

type JWTService struct {
	secretKey    []byte
	accessExpiry time.Duration
	logger       *logrus.Logger
	now          func() time.Time
}

// NewJWTService refuses to build without a 256-bit secret; there is no
// fallback key.
func NewJWTService(cfg *config.JWTConfig, logger *logrus.Logger) (*JWTService, error) {
	secretKey := []byte(cfg.SecretKey)
	if len(secretKey) < 32 {
		return nil, &config.ConfigError{Key: "JWT_SECRET_KEY", Reason: "must be at least 32 bytes (256 bits)"}
	}
	if cfg.AccessExpiry <= 0 {
		return nil, &config.ConfigError{Key: "JWT_ACCESS_EXPIRY", Reason: "must be positive"}
	}

	return &JWTService{
		secretKey:    secretKey,
		accessExpiry: cfg.AccessExpiry,
		logger:       logger,
		now:          time.Now,
	}, nil
}

type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	Type   string `json:"type"`
	jwt.RegisteredClaims
}

// GenerateAccessToken issues a bearer token for userID valid for the
// configured access expiry.
func (s *JWTService) GenerateAccessToken(userID, email string) (*models.AccessToken, error) {
	return s.GenerateToken(userID, email, s.accessExpiry)
}

func (s *JWTService) GenerateToken(userID, email string, ttl time.Duration) (*models.AccessToken, error) {
	now := s.now()
	expiresAt := now.Add(ttl)
	jti := uuid.New().String()

	claims := &Claims{
		UserID: userID,
		Email:  email,
		Type:   tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        jti,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.WithError(err).Error("Failed to sign access token")
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &models.AccessToken{
		Token:     tokenString,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		ExpiresIn: int64(ttl.Seconds()),
	}, nil
}

// VerifyToken checks signature and expiry. Every failure is reported as
// ErrInvalidToken.
func (s *JWTService) VerifyToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())

	if err != nil {
		message := "Invalid token"
		if errors.Is(err, jwt.ErrTokenExpired) {
			message = "Token expired"
		}
		return nil, wrapError(ErrInvalidToken, message, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Type != tokenTypeAccess || claims.UserID == "" {
		return nil, newError(ErrInvalidToken, "Invalid token")
	}

	return claims, nil
}

func GenerateSecretKey() (string, error) {
	key := make([]byte, 32) // 256 bits
	if _, err := rand.Read(key); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(key), nil
}
