package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-platform/internal/api/dto"
	"github.com/spec-kit/blog-platform/internal/auth"
	"github.com/spec-kit/blog-platform/internal/service"
	apperrors "github.com/spec-kit/blog-platform/pkg/util"
)

// UserHandler exposes account endpoints: public profiles, profile updates,
// deletion and the admin listing.
type UserHandler struct {
	accounts *service.AccountService
}

// NewUserHandler constructs the handler.
func NewUserHandler(accounts *service.AccountService) *UserHandler {
	return &UserHandler{accounts: accounts}
}

// GetUser handles GET /api/user/:userId.
func (h *UserHandler) GetUser(c *fiber.Ctx) error {
	user, err := h.accounts.GetUser(c.UserContext(), c.Params("userId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// UpdateUser handles PUT /api/user/update/:userId.
func (h *UserHandler) UpdateUser(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Invalid request payload")
	}

	user, err := h.accounts.UpdateProfile(c.UserContext(), actor, c.Params("userId"), service.ProfileUpdate{
		Username:       req.Username,
		Email:          req.Email,
		Password:       req.Password,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewUserResponse(user))
}

// DeleteUser handles DELETE /api/user/delete/:userId.
func (h *UserHandler) DeleteUser(c *fiber.Ctx) error {
	actor, ok := auth.UserFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("Unauthorized")
	}

	if err := h.accounts.DeleteAccount(c.UserContext(), actor, c.Params("userId")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "User has been deleted"})
}

// ListUsers handles GET /api/user/getusers for admins.
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 9)
	offset := c.QueryInt("startIndex", 0)
	ascending := c.Query("sort") == "asc"

	listing, err := h.accounts.ListUsers(c.UserContext(), limit, offset, ascending)
	if err != nil {
		return err
	}

	users := make([]dto.UserResponse, 0, len(listing.Users))
	for _, user := range listing.Users {
		users = append(users, dto.NewUserResponse(user))
	}
	return c.JSON(dto.UserListResponse{
		Users:          users,
		TotalUsers:     listing.TotalUsers,
		LastMonthUsers: listing.LastMonthUsers,
	})
}
