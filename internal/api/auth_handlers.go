package api

import (
	"net/http"

	"github.com/mbjewelry/appraisal-server/internal/http/response"
	"github.com/mbjewelry/appraisal-server/internal/service"
)

// handleLogin authenticates a user and returns an access/refresh token pair.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	resp, err := s.authService.Login(r.Context(), req)
	if err != nil {
		s.handleError(w, err)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleRefresh rotates a refresh token for a new token pair.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req service.RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	resp, err := s.authService.RefreshTokens(r.Context(), req)
	if err != nil {
		s.handleError(w, err)
		return
	}

	response.Success(w, resp, s.logger)
}

// handleLogout ends the session identified by the refresh token.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req service.LogoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	if err := s.authService.Logout(r.Context(), req); err != nil {
		s.handleError(w, err)
		return
	}

	response.NoContent(w)
}

// handleGetCurrentUser returns the authenticated user.
func (s *Server) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.authService.GetUser(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleError(w, err)
		return
	}

	response.Success(w, user, s.logger)
}
