package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-platform/internal/domain"
	"github.com/spec-kit/blog-platform/internal/repository"
	apperrors "github.com/spec-kit/blog-platform/pkg/util"
)

// AccessTokenCookie is the cookie the SPA sends the access token in.
const AccessTokenCookie = "access_token"

const principalKey = "auth_principal"

// AuthMiddleware validates access tokens and loads the calling user.
type AuthMiddleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes. The token is read
// from the access_token cookie, falling back to a bearer header for
// non-browser clients.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	token := extractToken(c)
	if token == "" {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	claims, err := m.tokens.ParseAccessToken(token)
	if err != nil {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID())
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("Unauthorized")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, user)
	return c.Next()
}

func extractToken(c *fiber.Ctx) string {
	if cookie := c.Cookies(AccessTokenCookie); cookie != "" {
		return cookie
	}
	header := c.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// UserFromContext retrieves the authenticated user.
func UserFromContext(c *fiber.Ctx) (*domain.User, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	user, ok := val.(*domain.User)
	return user, ok
}
