package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/blog-platform/internal/auth"
	"github.com/spec-kit/blog-platform/internal/config"
	"github.com/spec-kit/blog-platform/internal/domain"
	"github.com/spec-kit/blog-platform/internal/events"
	"github.com/spec-kit/blog-platform/internal/repository"
	apperrors "github.com/spec-kit/blog-platform/pkg/util"
)

const (
	generatedPasswordLength = 16
	usernameSuffixDigits    = 4
)

// TokenPair bundles the credentials issued by signup, signin and refresh.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// SessionService coordinates signup, signin, Google sign-in, refresh and
// signout. It is the only writer of the refresh-token field on users.
type SessionService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	dispatcher events.Dispatcher
	bcryptCost int
}

// SessionDependencies encapsulates collaborator requirements.
type SessionDependencies struct {
	UserRepo   repository.UserRepository
	Dispatcher events.Dispatcher
}

// NewSessionService builds the service.
func NewSessionService(cfg config.Config, deps SessionDependencies) *SessionService {
	return &SessionService{
		users:      deps.UserRepo,
		tokenMgr:   auth.NewTokenManager(cfg.Auth),
		dispatcher: deps.Dispatcher,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// Signup creates an account and opens its first session. The refresh token
// is persisted on the record after creation; the two writes are not atomic.
func (s *SessionService) Signup(ctx context.Context, username, email, password string) (*domain.User, *TokenPair, error) {
	if username == "" || email == "" || password == "" {
		return nil, nil, apperrors.NewValidationError("All fields are required")
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Username:       username,
		Email:          email,
		PasswordHash:   hash,
		ProfilePicture: domain.DefaultProfilePicture,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	pair, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.emit(ctx, events.EventUserSignedUp, user.ID, events.UserSignedUpPayload{
		Username: user.Username,
		Email:    user.Email,
		Method:   events.SigninMethodPassword,
	})
	return user, pair, nil
}

// Signin authenticates by email and password.
func (s *SessionService) Signin(ctx context.Context, email, password string) (*domain.User, *TokenPair, error) {
	if email == "" || password == "" {
		return nil, nil, apperrors.NewValidationError("All fields are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, apperrors.NewNotFound("User not found")
		}
		return nil, nil, apperrors.MapError(err)
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, nil, apperrors.NewInvalidCredentials("Invalid password")
	}

	pair, err := s.openSession(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	s.emit(ctx, events.EventUserSignedIn, user.ID, events.UserSignedInPayload{Method: events.SigninMethodPassword})
	return user, pair, nil
}

// GoogleSignin handles an externally verified identity assertion. The
// provider's signature is not checked here; trust is delegated to the
// client-side OAuth flow. Unlike password flows only an access token is
// issued, so Google sessions never enter the refresh lifecycle.
func (s *SessionService) GoogleSignin(ctx context.Context, email, name, photoURL string) (*domain.User, string, time.Time, error) {
	if email == "" {
		return nil, "", time.Time{}, apperrors.NewValidationError("All fields are required")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.MapError(err)
		}
		user, err = s.createGoogleUser(ctx, email, name, photoURL)
		if err != nil {
			return nil, "", time.Time{}, err
		}
	}

	token, expiresAt, err := s.tokenMgr.GenerateAccessToken(user)
	if err != nil {
		return nil, "", time.Time{}, apperrors.NewInternalError(err)
	}

	s.emit(ctx, events.EventUserSignedIn, user.ID, events.UserSignedInPayload{Method: events.SigninMethodGoogle})
	return user, token, expiresAt, nil
}

func (s *SessionService) createGoogleUser(ctx context.Context, email, name, photoURL string) (*domain.User, error) {
	password, err := auth.GeneratePassword(generatedPasswordLength)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	suffix, err := auth.RandomDigits(usernameSuffixDigits)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if photoURL == "" {
		photoURL = domain.DefaultProfilePicture
	}
	user := &domain.User{
		Username:       deriveUsername(name) + suffix,
		Email:          email,
		PasswordHash:   hash,
		ProfilePicture: photoURL,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.emit(ctx, events.EventUserSignedUp, user.ID, events.UserSignedUpPayload{
		Username: user.Username,
		Email:    user.Email,
		Method:   events.SigninMethodGoogle,
	})
	return user, nil
}

// deriveUsername lowercases a display name and strips spaces. The random
// suffix appended by the caller reduces, but does not eliminate, collisions.
func deriveUsername(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), ""))
}

// Refresh exchanges a live refresh token for a fresh pair. The user is
// located by the literal token value, not the decoded subject, and the
// stored value is swapped with a compare-and-swap so each token rotates
// exactly once.
func (s *SessionService) Refresh(ctx context.Context, token string) (*TokenPair, error) {
	if token == "" {
		return nil, apperrors.NewUnauthorized("Refresh token is required")
	}

	user, err := s.users.GetByRefreshToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			s.emit(ctx, events.EventRefreshRejected, "", events.RefreshRejectedPayload{Reason: "unknown token"})
			return nil, apperrors.NewForbidden("Refresh token is not valid")
		}
		return nil, apperrors.MapError(err)
	}

	claims, err := s.tokenMgr.ParseRefreshToken(token)
	if err != nil || claims.UserID() != user.ID {
		s.emit(ctx, events.EventRefreshRejected, user.ID, events.RefreshRejectedPayload{Reason: "verification failed"})
		return nil, apperrors.NewForbidden("Refresh token is not valid")
	}

	accessToken, accessExp, err := s.tokenMgr.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	refreshToken, refreshExp, err := s.tokenMgr.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.users.RotateRefreshToken(ctx, user.ID, token, refreshToken); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// a concurrent refresh rotated the token first
			s.emit(ctx, events.EventRefreshRejected, user.ID, events.RefreshRejectedPayload{Reason: "lost rotation race"})
			return nil, apperrors.NewForbidden("Refresh token is not valid")
		}
		return nil, apperrors.MapError(err)
	}

	s.emit(ctx, events.EventTokenRefreshed, user.ID, events.TokenRefreshedPayload{ExpiresAt: refreshExp})
	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Signout invalidates the stored refresh token so the session cannot be
// extended after the cookie is cleared.
func (s *SessionService) Signout(ctx context.Context, userID string) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return apperrors.MapError(err)
	}
	s.emit(ctx, events.EventUserSignedOut, userID, nil)
	return nil
}

// openSession issues both tokens and persists the refresh token as the
// user's single live value.
func (s *SessionService) openSession(ctx context.Context, user *domain.User) (*TokenPair, error) {
	accessToken, accessExp, err := s.tokenMgr.GenerateAccessToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	refreshToken, refreshExp, err := s.tokenMgr.GenerateRefreshToken(user)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, refreshToken); err != nil {
		return nil, apperrors.MapError(err)
	}
	user.RefreshToken = &refreshToken

	return &TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *SessionService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func (s *SessionService) emit(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: time.Now(),
		Payload:   payload,
	})
}
