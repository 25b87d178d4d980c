package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-platform/internal/auth"
	"github.com/spec-kit/blog-platform/internal/config"
	"github.com/spec-kit/blog-platform/internal/domain"
	"github.com/spec-kit/blog-platform/internal/repository"
	apperrors "github.com/spec-kit/blog-platform/pkg/util"
)

// ProfileUpdate carries the optional fields of a profile update request.
// Empty strings mean "leave unchanged".
type ProfileUpdate struct {
	Username       string
	Email          string
	Password       string
	ProfilePicture string
}

// UserListing is the admin dashboard view of the user base.
type UserListing struct {
	Users          []*domain.User
	TotalUsers     int64
	LastMonthUsers int64
}

// AccountService covers the session-adjacent account operations: profile
// updates, account deletion and the admin user listing.
type AccountService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewAccountService builds the service.
func NewAccountService(cfg config.Config, users repository.UserRepository) *AccountService {
	return &AccountService{users: users, bcryptCost: cfg.Auth.BcryptCost}
}

// GetUser returns a single account for public profile display.
func (s *AccountService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// UpdateProfile applies a profile update. Callers may only update their own
// account.
func (s *AccountService) UpdateProfile(ctx context.Context, actor *domain.User, targetID string, upd ProfileUpdate) (*domain.User, error) {
	if actor.ID != targetID {
		return nil, apperrors.NewForbidden("You are not allowed to update this user")
	}

	user, err := s.users.GetByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("User not found")
		}
		return nil, apperrors.MapError(err)
	}

	if upd.Password != "" {
		if len(upd.Password) < 6 {
			return nil, apperrors.NewValidationError("Password must be at least 6 characters")
		}
		hash, err := auth.HashPassword(upd.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		user.PasswordHash = hash
	}
	if upd.Username != "" {
		if err := validateUsername(upd.Username); err != nil {
			return nil, err
		}
		user.Username = upd.Username
	}
	if upd.Email != "" {
		user.Email = upd.Email
	}
	if upd.ProfilePicture != "" {
		user.ProfilePicture = upd.ProfilePicture
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// DeleteAccount removes an account. Admins may delete anyone; everyone else
// only themselves.
func (s *AccountService) DeleteAccount(ctx context.Context, actor *domain.User, targetID string) error {
	if !actor.IsAdmin && actor.ID != targetID {
		return apperrors.NewForbidden("You are not allowed to delete this user")
	}
	if err := s.users.Delete(ctx, targetID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("User not found")
		}
		return apperrors.MapError(err)
	}
	return nil
}

// ListUsers returns a page of accounts plus the totals the dashboard charts
// are built from. Admin access is enforced at the route level.
func (s *AccountService) ListUsers(ctx context.Context, limit, offset int, ascending bool) (*UserListing, error) {
	if limit <= 0 {
		limit = 9
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.List(ctx, limit, offset, ascending)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	lastMonth, err := s.users.CountCreatedSince(ctx, time.Now().AddDate(0, -1, 0))
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	return &UserListing{Users: users, TotalUsers: total, LastMonthUsers: lastMonth}, nil
}

func validateUsername(username string) error {
	if len(username) < 7 || len(username) > 20 {
		return apperrors.NewValidationError("Username must be between 7 and 20 characters")
	}
	if strings.Contains(username, " ") {
		return apperrors.NewValidationError("Username cannot contain spaces")
	}
	if username != strings.ToLower(username) {
		return apperrors.NewValidationError("Username must be lowercase")
	}
	for _, r := range username {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return apperrors.NewValidationError("Username can only contain letters and numbers")
		}
	}
	return nil
}
