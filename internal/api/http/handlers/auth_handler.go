package handlers

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-platform/internal/api/dto"
	"github.com/spec-kit/blog-platform/internal/auth"
	"github.com/spec-kit/blog-platform/internal/service"
	apperrors "github.com/spec-kit/blog-platform/pkg/util"
)

// RefreshTokenCookie is the optional cookie carrying the refresh token.
const RefreshTokenCookie = "refresh_token"

// AuthHandler exposes the signup/signin/google/refresh endpoints.
type AuthHandler struct {
	sessions   *service.SessionService
	production bool
}

// NewAuthHandler constructs the handler. production controls the Secure
// attribute on the access-token cookie.
func NewAuthHandler(sessions *service.SessionService, production bool) *AuthHandler {
	return &AuthHandler{sessions: sessions, production: production}
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req dto.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload")
	}

	user, pair, err := h.sessions.Signup(c.UserContext(), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setAccessCookie(c, pair.AccessToken, pair.AccessExpiresAt)
	return c.Status(http.StatusOK).JSON(dto.SessionResponse{
		UserResponse: dto.NewUserResponse(user),
		RefreshToken: pair.RefreshToken,
	})
}

// Signin handles POST /api/auth/signin.
func (h *AuthHandler) Signin(c *fiber.Ctx) error {
	var req dto.SigninRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload")
	}

	user, pair, err := h.sessions.Signin(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	h.setAccessCookie(c, pair.AccessToken, pair.AccessExpiresAt)
	return c.JSON(dto.SessionResponse{
		UserResponse: dto.NewUserResponse(user),
		RefreshToken: pair.RefreshToken,
	})
}

// GoogleSignin handles POST /api/auth/google. Only an access token is
// issued on this path; the refresh lifecycle is never entered.
func (h *AuthHandler) GoogleSignin(c *fiber.Ctx) error {
	var req dto.GoogleSigninRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload")
	}

	user, token, expiresAt, err := h.sessions.GoogleSignin(c.UserContext(), req.Email, req.Name, req.GooglePhotoURL)
	if err != nil {
		return err
	}

	h.setAccessCookie(c, token, expiresAt)
	return c.JSON(dto.NewUserResponse(user))
}

// Refresh handles POST /api/auth/refresh-token. The token is taken from
// the body, falling back to the refresh_token cookie.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var req dto.RefreshRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return apperrors.NewValidationError("Invalid request payload")
		}
	}
	token := req.Token
	if token == "" {
		token = c.Cookies(RefreshTokenCookie)
	}

	pair, err := h.sessions.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}

	h.setAccessCookie(c, pair.AccessToken, pair.AccessExpiresAt)
	return c.JSON(dto.RefreshResponse{RefreshToken: pair.RefreshToken})
}

// Signout handles POST /api/user/signout for an authenticated user.
func (h *AuthHandler) Signout(c *fiber.Ctx) error {
	user, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized")
	}
	if err := h.sessions.Signout(c.UserContext(), user.ID); err != nil {
		return err
	}

	h.clearAccessCookie(c)
	return c.JSON(fiber.Map{"message": "User has been signed out"})
}

func (h *AuthHandler) setAccessCookie(c *fiber.Ctx, token string, expiresAt time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    token,
		Expires:  expiresAt,
		HTTPOnly: true,
		Secure:   h.production,
		Path:     "/",
	})
}

func (h *AuthHandler) clearAccessCookie(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     auth.AccessTokenCookie,
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   h.production,
		Path:     "/",
	})
}
