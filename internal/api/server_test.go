package api

import (
	"bytes"
	"context"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbjewelry/appraisal-server/internal/auth"
	"github.com/mbjewelry/appraisal-server/internal/domain"
	"github.com/mbjewelry/appraisal-server/internal/pricing"
	"github.com/mbjewelry/appraisal-server/internal/ratelimit"
	"github.com/mbjewelry/appraisal-server/internal/service"
	"github.com/mbjewelry/appraisal-server/internal/store"
	"github.com/mbjewelry/appraisal-server/internal/store/sqlite"
)

// testKeyHex is a fixed 32-byte key for token tests.
const testKeyHex = "0000000000000000000000000000000000000000000000000000000000000000"

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()

	limiter := ratelimit.New(100, 100)
	t.Cleanup(limiter.Stop)
	return newTestServerWithLimiter(t, limiter)
}

func newTestServerWithLimiter(t *testing.T, limiter *ratelimit.KeyedRateLimiter) (*Server, store.Store) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	tokens, err := auth.NewTokenService(testKeyHex, 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	authService := service.NewAuthService(st, tokens, logger)
	valuationService := service.NewValuationService(pricing.DefaultAliasTable(), logger)
	calculationService := service.NewCalculationService(st, valuationService, logger)

	srv := NewServer(st, authService, valuationService, calculationService, limiter, []string{"*"}, logger)
	return srv, st
}

func seedAPIUser(t *testing.T, st store.Store, username, password string, role domain.Role) *domain.User {
	t.Helper()

	hash, err := auth.HashPassword(password)
	require.NoError(t, err)

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	require.NoError(t, st.CreateUser(context.Background(), user))
	return user
}

// doJSON performs a request against the server with an optional JSON body
// and bearer token.
func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.MarshalWrite(&buf, body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

// rawRequest builds a request with a literal body, for malformed payloads.
func rawRequest(t *testing.T, method, path, body string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req, httptest.NewRecorder()
}

// envelope mirrors the response wrapper for decoding in tests.
type envelope[T any] struct {
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

func decodeEnvelope[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()

	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

// login authenticates over HTTP and returns the token pair.
func login(t *testing.T, srv *Server, username, password string) service.AuthResponse {
	t.Helper()

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeEnvelope[service.AuthResponse](t, rec).Data
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope[HealthResponse](t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
}

func TestRequireAuth(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name   string
		header string
	}{
		{"no header", ""},
		{"wrong scheme", "Basic abc"},
		{"garbage token", "Bearer not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/calculations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRequireAdmin(t *testing.T) {
	srv, st := newTestServer(t)
	seedAPIUser(t, st, "alice", "password123", domain.RoleUser)
	seedAPIUser(t, st, "boss", "password123", domain.RoleAdmin)

	user := login(t, srv, "alice", "password123")
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/users", user.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	admin := login(t, srv, "boss", "password123")
	rec = doJSON(t, srv, http.MethodGet, "/api/v1/users", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope[[]*domain.User](t, rec)
	assert.Len(t, env.Data, 2)
}

func TestLoginRateLimit(t *testing.T) {
	// Two attempts of burst, then effectively no refill.
	limiter := ratelimit.New(0.001, 2)
	t.Cleanup(limiter.Stop)
	srv, st := newTestServerWithLimiter(t, limiter)
	seedAPIUser(t, st, "alice", "password123", domain.RoleUser)

	body := map[string]string{"username": "alice", "password": "wrong"}
	for range 2 {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
