package api

import (
	"net/http"

	"github.com/mbjewelry/appraisal-server/internal/http/response"
)

// handleListUsers returns all registered users. Admin only.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.store.ListUsers(r.Context())
	if err != nil {
		s.handleError(w, err)
		return
	}

	response.Success(w, users, s.logger)
}
