package auth

import (
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/blog-platform/pkg/util"
)

// RequireAdmin ensures the authenticated user carries the admin flag.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := UserFromContext(c)
		if !ok || !user.IsAdmin {
			return apperrors.NewForbidden("You are not allowed to access this resource")
		}
		return c.Next()
	}
}
