package service

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbjewelry/appraisal-server/internal/auth"
	"github.com/mbjewelry/appraisal-server/internal/domain"
	domainerrors "github.com/mbjewelry/appraisal-server/internal/errors"
	"github.com/mbjewelry/appraisal-server/internal/store"
	"github.com/mbjewelry/appraisal-server/internal/store/sqlite"
)

// testKeyHex is a fixed 32-byte key for token tests.
const testKeyHex = "0000000000000000000000000000000000000000000000000000000000000000"

func newTestAuth(t *testing.T) (*AuthService, store.Store) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	return NewAuthService(s, tokens, logger), s
}

func seedUser(t *testing.T, s store.Store, username, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, s.CreateUser(context.Background(), user))
	return user
}

func TestLogin(t *testing.T) {
	svc, s := newTestAuth(t)
	ctx := context.Background()
	seedUser(t, s, "alice", "correct horse", domain.RoleUser)

	resp, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	assert.Equal(t, "alice", resp.User.Username)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), resp.ExpiresIn)

	// The access token round-trips through verification.
	claims, err := svc.VerifyAccessToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleUser, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestLoginWrongPassword(t *testing.T) {
	svc, s := newTestAuth(t)
	ctx := context.Background()
	seedUser(t, s, "alice", "correct horse", domain.RoleUser)

	tests := []LoginRequest{
		{Username: "alice", Password: "wrong"},
		{Username: "nobody", Password: "correct horse"},
	}
	for _, req := range tests {
		_, err := svc.Login(ctx, req)
		require.Error(t, err)

		// Wrong password and unknown user are indistinguishable.
		var domainErr *domainerrors.Error
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, domainerrors.CodeInvalidCredentials, domainErr.Code)
	}
}

func TestLoginInactiveUser(t *testing.T) {
	svc, s := newTestAuth(t)
	ctx := context.Background()

	hash, err := auth.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, s.CreateUser(ctx, &domain.User{
		Username:     "frozen",
		PasswordHash: hash,
		Role:         domain.RoleUser,
		IsActive:     false,
	}))

	_, err = svc.Login(ctx, LoginRequest{Username: "frozen", Password: "password123"})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeForbidden, domainErr.Code)
}

func TestLoginValidation(t *testing.T) {
	svc, _ := newTestAuth(t)

	_, err := svc.Login(context.Background(), LoginRequest{Username: "alice"})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestRefreshTokensRotation(t *testing.T) {
	svc, s := newTestAuth(t)
	ctx := context.Background()
	seedUser(t, s, "alice", "correct horse", domain.RoleUser)

	login, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshTokens(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old refresh token died with the rotation.
	_, err = svc.RefreshTokens(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeUnauthorized, domainErr.Code)

	// The new one still works.
	_, err = svc.RefreshTokens(ctx, RefreshRequest{RefreshToken: refreshed.RefreshToken})
	assert.NoError(t, err)
}

func TestRefreshTokensExpired(t *testing.T) {
	svc, s := newTestAuth(t)
	ctx := context.Background()
	user := seedUser(t, s, "alice", "correct horse", domain.RoleUser)

	// Plant an already-expired session.
	token, err := svc.tokenService.GenerateRefreshToken()
	require.NoError(t, err)
	require.NoError(t, s.CreateAuthSession(ctx, &domain.AuthSession{
		ID:               "sess-expired",
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(token),
		ExpiresAt:        time.Now().Add(-time.Hour),
	}))

	_, err = svc.RefreshTokens(ctx, RefreshRequest{RefreshToken: token})
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeTokenExpired, domainErr.Code)
}

func TestLogout(t *testing.T) {
	svc, s := newTestAuth(t)
	ctx := context.Background()
	seedUser(t, s, "alice", "correct horse", domain.RoleUser)

	login, err := svc.Login(ctx, LoginRequest{Username: "alice", Password: "correct horse"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, LogoutRequest{RefreshToken: login.RefreshToken}))

	// The session is gone.
	_, err = svc.RefreshTokens(ctx, RefreshRequest{RefreshToken: login.RefreshToken})
	assert.Error(t, err)

	// Logging out twice is fine.
	assert.NoError(t, svc.Logout(ctx, LogoutRequest{RefreshToken: login.RefreshToken}))
}

func TestCleanupExpiredSessions(t *testing.T) {
	svc, s := newTestAuth(t)
	ctx := context.Background()
	user := seedUser(t, s, "alice", "correct horse", domain.RoleUser)

	require.NoError(t, s.CreateAuthSession(ctx, &domain.AuthSession{
		ID:               "sess-old",
		UserID:           user.ID,
		RefreshTokenHash: "h1",
		ExpiresAt:        time.Now().Add(-time.Hour),
	}))
	require.NoError(t, s.CreateAuthSession(ctx, &domain.AuthSession{
		ID:               "sess-live",
		UserID:           user.ID,
		RefreshTokenHash: "h2",
		ExpiresAt:        time.Now().Add(time.Hour),
	}))

	n, err := svc.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
