package api

import (
	"encoding/csv"
	"net/http"
	"time"

	"github.com/mbjewelry/appraisal-server/internal/domain"
	domainerrors "github.com/mbjewelry/appraisal-server/internal/errors"
	"github.com/mbjewelry/appraisal-server/internal/http/response"
	"github.com/mbjewelry/appraisal-server/internal/service"
)

// handleCalculate values a batch without persisting it. The format query
// parameter selects JSON (default) or a CSV download.
func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req service.CalculateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	if format != "" && format != "json" && format != "csv" {
		s.handleError(w, domainerrors.Validationf("unsupported format %q", format))
		return
	}

	resp, err := s.valuationService.Calculate(req)
	if err != nil {
		s.handleError(w, err)
		return
	}

	if format == "csv" {
		s.writeCalculationCSV(w, resp)
		return
	}

	response.Success(w, resp, s.logger)
}

// checkWeightsRequest carries the rows to validate.
type checkWeightsRequest struct {
	Items []domain.RawItem `json:"item_data"`
}

// handleCheckWeights reports rows whose weight text cannot be parsed.
func (s *Server) handleCheckWeights(w http.ResponseWriter, r *http.Request) {
	var req checkWeightsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.handleError(w, err)
		return
	}

	response.Success(w, s.valuationService.CheckWeights(req.Items), s.logger)
}

// writeCalculationCSV streams the fixed-column valuation as a CSV download.
func (s *Server) writeCalculationCSV(w http.ResponseWriter, resp *service.CalculateResponse) {
	filename := "calculated_result_" + time.Now().Format("20060102_150405") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	cw := csv.NewWriter(w)
	if err := cw.Write(service.FixedColumns); err != nil {
		s.logger.Error("Failed to write CSV header", "error", err)
		return
	}
	for _, item := range resp.CalculatedItems {
		if err := cw.Write(item.CSVRecord()); err != nil {
			s.logger.Error("Failed to write CSV record", "error", err)
			return
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		s.logger.Error("Failed to flush CSV response", "error", err)
	}
}
