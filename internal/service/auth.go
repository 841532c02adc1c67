package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mbjewelry/appraisal-server/internal/auth"
	"github.com/mbjewelry/appraisal-server/internal/domain"
	domainerrors "github.com/mbjewelry/appraisal-server/internal/errors"
	"github.com/mbjewelry/appraisal-server/internal/id"
	"github.com/mbjewelry/appraisal-server/internal/store"
)

// AuthService handles user authentication: login, token refresh, logout.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(store store.Store, tokenService *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		logger:       logger,
	}
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest contains the refresh token to rotate.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest contains the refresh token of the session to end.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse contains authentication tokens and user data.
type AuthResponse struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int64        `json:"expires_in"` // access token lifetime in seconds
}

// Login authenticates a user by username and password and opens a session.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	// Validate request
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	user, err := s.store.GetUserByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Don't leak whether the username exists
			return nil, domainerrors.InvalidCredentials("invalid username or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		return nil, domainerrors.InvalidCredentials("invalid username or password")
	}

	if !user.IsActive {
		return nil, domainerrors.Forbidden("account is disabled")
	}

	resp, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", "user_id", user.ID, "username", user.Username)
	return resp, nil
}

// RefreshTokens generates new tokens using a refresh token.
// The old refresh token is invalidated (token rotation).
func (s *AuthService) RefreshTokens(ctx context.Context, req RefreshRequest) (*AuthResponse, error) {
	// Validate request
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	session, err := s.store.GetAuthSessionByRefreshToken(ctx, auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid refresh token")
		}
		return nil, fmt.Errorf("lookup session: %w", err)
	}

	if session.IsExpired() {
		// Expired sessions are removed on sight.
		if err := s.store.DeleteAuthSession(ctx, session.ID); err != nil {
			s.logger.Warn("Failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, domainerrors.TokenExpired("refresh token expired")
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("lookup session user: %w", err)
	}
	if !user.IsActive {
		return nil, domainerrors.Forbidden("account is disabled")
	}

	// Rotate: the old session dies with its token.
	if err := s.store.DeleteAuthSession(ctx, session.ID); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}

	resp, err := s.openSession(ctx, user)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Tokens refreshed", "user_id", user.ID)
	return resp, nil
}

// Logout ends the session identified by the refresh token.
// An unknown token is not an error; logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, req LogoutRequest) error {
	if err := validate.Struct(req); err != nil {
		return formatValidationError(err)
	}

	session, err := s.store.GetAuthSessionByRefreshToken(ctx, auth.HashRefreshToken(req.RefreshToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("lookup session: %w", err)
	}

	if err := s.store.DeleteAuthSession(ctx, session.ID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	s.logger.Info("User logged out", "user_id", session.UserID)
	return nil
}

// GetUser returns a user by id.
func (s *AuthService) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

// VerifyAccessToken validates an access token and returns its claims.
func (s *AuthService) VerifyAccessToken(token string) (*auth.AccessClaims, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid or expired token").WithCause(err)
	}
	return claims, nil
}

// CleanupExpiredSessions removes all sessions past their expiry.
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int, error) {
	return s.store.DeleteExpiredAuthSessions(ctx)
}

// openSession issues an access/refresh token pair and persists the session.
func (s *AuthService) openSession(ctx context.Context, user *domain.User) (*AuthResponse, error) {
	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	sessionID, err := id.Generate("sess")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	session := &domain.AuthSession{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        time.Now().Add(s.tokenService.RefreshTokenDuration()),
	}
	if err := s.store.CreateAuthSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &AuthResponse{
		User:         user,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.tokenService.AccessTokenDuration().Seconds()),
	}, nil
}
