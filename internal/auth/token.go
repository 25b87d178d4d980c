package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/spec-kit/blog-platform/internal/config"
	"github.com/spec-kit/blog-platform/internal/domain"
)

// TokenManager issues and validates the two JWT families used by the
// service: short-lived access tokens and long-lived refresh tokens, each
// signed with its own secret.
type TokenManager struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenManager builds a manager from auth configuration.
func NewTokenManager(cfg config.AuthConfig) *TokenManager {
	return &TokenManager{
		accessSecret:  []byte(cfg.AccessSecret),
		refreshSecret: []byte(cfg.RefreshSecret),
		accessTTL:     time.Duration(cfg.AccessTokenTTLMinutes) * time.Minute,
		refreshTTL:    time.Duration(cfg.RefreshTokenTTLHours) * time.Hour,
	}
}

// Claims describes the JWT payload for both token families.
type Claims struct {
	IsAdmin  bool `json:"isAdmin"`
	IsWriter bool `json:"isWriter"`
	jwt.RegisteredClaims
}

// UserID returns the token subject.
func (c *Claims) UserID() string {
	return c.Subject
}

// GenerateAccessToken signs a short-lived token carrying the user's id and
// role flags. No side effects; validity is signature plus expiry alone.
func (tm *TokenManager) GenerateAccessToken(user *domain.User) (string, time.Time, error) {
	return tm.generate(user, tm.accessSecret, tm.accessTTL)
}

// GenerateRefreshToken signs a long-lived token with the refresh secret.
// The caller is responsible for persisting it as the user's live token.
func (tm *TokenManager) GenerateRefreshToken(user *domain.User) (string, time.Time, error) {
	return tm.generate(user, tm.refreshSecret, tm.refreshTTL)
}

func (tm *TokenManager) generate(user *domain.User, secret []byte, ttl time.Duration) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(ttl)
	claims := &Claims{
		IsAdmin:  user.IsAdmin,
		IsWriter: user.IsWriter,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseAccessToken validates an access token and returns its claims.
func (tm *TokenManager) ParseAccessToken(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, tm.accessSecret)
}

// ParseRefreshToken validates a refresh token's signature and expiry.
// The stored-value and subject checks stay with the caller: a token that
// parses here can still be superseded by rotation.
func (tm *TokenManager) ParseRefreshToken(tokenStr string) (*Claims, error) {
	return tm.parse(tokenStr, tm.refreshSecret)
}

func (tm *TokenManager) parse(tokenStr string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
