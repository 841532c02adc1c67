package api

import (
	"net/http"

	"github.com/mbjewelry/appraisal-server/internal/http/response"
	"github.com/mbjewelry/appraisal-server/internal/service"
	"github.com/mbjewelry/appraisal-server/internal/store"
)

// handleSaveCalculation values a batch and persists it as one calculation.
func (s *Server) handleSaveCalculation(w http.ResponseWriter, r *http.Request) {
	var req service.SaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	resp, err := s.calculationService.Save(r.Context(), getUserID(r.Context()), req)
	if err != nil {
		s.handleError(w, err)
		return
	}

	s.logger.Info("Calculation saved",
		"calculation_id", resp.CalculationID,
		"items", resp.ItemCount,
		"user", getUsername(r.Context()),
	)
	response.Created(w, resp, s.logger)
}

// handleListCalculations returns the user's calculation history, newest
// first. The limit query parameter bounds the page size.
func (s *Server) handleListCalculations(w http.ResponseWriter, r *http.Request) {
	entries, err := s.calculationService.List(r.Context(), getUserID(r.Context()), queryInt(r, "limit"))
	if err != nil {
		s.handleError(w, err)
		return
	}

	response.Success(w, entries, s.logger)
}

// handleGetCalculation returns one calculation with its summary and items.
func (s *Server) handleGetCalculation(w http.ResponseWriter, r *http.Request) {
	calculationID, err := urlParamInt64(r, "id")
	if err != nil {
		s.handleError(w, err)
		return
	}

	detail, err := s.calculationService.Get(r.Context(), calculationID, getUserID(r.Context()))
	if err != nil {
		s.handleError(w, err)
		return
	}

	response.Success(w, detail, s.logger)
}

// handleDeleteCalculation removes a calculation and its items.
func (s *Server) handleDeleteCalculation(w http.ResponseWriter, r *http.Request) {
	calculationID, err := urlParamInt64(r, "id")
	if err != nil {
		s.handleError(w, err)
		return
	}

	if err := s.calculationService.Delete(r.Context(), calculationID, getUserID(r.Context())); err != nil {
		s.handleError(w, err)
		return
	}

	response.NoContent(w)
}

// handleUpdateCalculationItem applies a partial update to one item.
func (s *Server) handleUpdateCalculationItem(w http.ResponseWriter, r *http.Request) {
	calculationID, err := urlParamInt64(r, "id")
	if err != nil {
		s.handleError(w, err)
		return
	}
	itemID, err := urlParamInt64(r, "itemID")
	if err != nil {
		s.handleError(w, err)
		return
	}

	var fields store.ItemUpdate
	if err := decodeJSON(w, r, &fields); err != nil {
		s.handleError(w, err)
		return
	}

	if err := s.calculationService.UpdateItem(r.Context(), calculationID, itemID, getUserID(r.Context()), fields); err != nil {
		s.handleError(w, err)
		return
	}

	response.NoContent(w)
}

// handleStats aggregates the user's calculation activity.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.calculationService.Stats(r.Context(), getUserID(r.Context()))
	if err != nil {
		s.handleError(w, err)
		return
	}

	response.Success(w, stats, s.logger)
}

// handleBoxGroups returns the user's cross-calculation box history. The
// max_per_box query parameter bounds entries per box.
func (s *Server) handleBoxGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.calculationService.BoxGroups(r.Context(), getUserID(r.Context()), queryInt(r, "max_per_box"))
	if err != nil {
		s.handleError(w, err)
		return
	}

	response.Success(w, groups, s.logger)
}

// handleCalculationBoxGroups groups one calculation's items by box.
func (s *Server) handleCalculationBoxGroups(w http.ResponseWriter, r *http.Request) {
	calculationID, err := urlParamInt64(r, "id")
	if err != nil {
		s.handleError(w, err)
		return
	}

	groups, err := s.calculationService.BoxGroupsByCalculation(r.Context(), calculationID, getUserID(r.Context()))
	if err != nil {
		s.handleError(w, err)
		return
	}

	response.Success(w, groups, s.logger)
}
