package api

import (
	"errors"
	"net/http"

	domainerrors "github.com/mbjewelry/appraisal-server/internal/errors"
	"github.com/mbjewelry/appraisal-server/internal/http/response"
	"github.com/mbjewelry/appraisal-server/internal/store"
)

// handleError writes an appropriate HTTP response for a handler error.
// Domain errors carry their own status and optional details, store errors
// map to their HTTP codes, anything else becomes a 500.
func (s *Server) handleError(w http.ResponseWriter, err error) {
	var domainErr *domainerrors.Error
	if errors.As(err, &domainErr) {
		response.ErrorDetails(w, domainErr.HTTPStatus(), domainErr.Message, domainErr.Details, s.logger)
		return
	}

	var storeErr *store.Error
	if errors.As(err, &storeErr) {
		response.Error(w, storeErr.HTTPCode(), storeErr.Message, s.logger)
		return
	}

	s.logger.Error("Unhandled error", "error", err)
	response.InternalError(w, "internal server error", s.logger)
}
