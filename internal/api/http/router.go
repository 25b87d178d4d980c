package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-platform/internal/api/http/handlers"
	"github.com/spec-kit/blog-platform/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Users          *handlers.UserHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/api/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/signin", cfg.Auth.Signin)
	authGroup.Post("/google", cfg.Auth.GoogleSignin)
	authGroup.Post("/refresh-token", cfg.Auth.Refresh)

	userGroup := app.Group("/api/user")
	userGroup.Post("/signout", cfg.AuthMiddleware.Handle, cfg.Auth.Signout)
	userGroup.Put("/update/:userId", cfg.AuthMiddleware.Handle, cfg.Users.UpdateUser)
	userGroup.Delete("/delete/:userId", cfg.AuthMiddleware.Handle, cfg.Users.DeleteUser)
	userGroup.Get("/getusers", cfg.AuthMiddleware.Handle, auth.RequireAdmin(), cfg.Users.ListUsers)
	userGroup.Get("/:userId", cfg.Users.GetUser)
}
