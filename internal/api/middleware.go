package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/mbjewelry/appraisal-server/internal/domain"
	"github.com/mbjewelry/appraisal-server/internal/http/response"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	contextKeyUserID   contextKey = "user_id"
	contextKeyUsername contextKey = "username"
	contextKeyRole     contextKey = "role"
)

// requireAuth is middleware that validates access tokens and attaches the
// authenticated user's identity to the request context. The token carries
// everything we need; no database lookup happens here.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "missing authorization header", s.logger)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "invalid authorization header format", s.logger)
			return
		}

		claims, err := s.authService.VerifyAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "invalid or expired token", s.logger)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUserID, claims.UserID)
		ctx = context.WithValue(ctx, contextKeyUsername, claims.Username)
		ctx = context.WithValue(ctx, contextKeyRole, claims.Role)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireAdmin is middleware that ensures the authenticated user has the
// admin role. Must be used after requireAuth.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role, ok := r.Context().Value(contextKeyRole).(domain.Role)
		if !ok || role != domain.RoleAdmin {
			response.Forbidden(w, "admin access required", s.logger)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getUserID extracts the authenticated user ID from request context.
// Returns 0 if not authenticated.
func getUserID(ctx context.Context) int64 {
	if userID, ok := ctx.Value(contextKeyUserID).(int64); ok {
		return userID
	}
	return 0
}

// getUsername extracts the authenticated username from request context.
// Returns empty string if not authenticated.
func getUsername(ctx context.Context) string {
	if username, ok := ctx.Value(contextKeyUsername).(string); ok {
		return username
	}
	return ""
}
