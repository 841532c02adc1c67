package service

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/mbjewelry/appraisal-server/internal/domain"
	domainerrors "github.com/mbjewelry/appraisal-server/internal/errors"
	"github.com/mbjewelry/appraisal-server/internal/pricing"
)

// maxBatchItems bounds a single valuation request.
const maxBatchItems = 10000

// ValuationService runs the pricing engine over request batches.
type ValuationService struct {
	aliases pricing.AliasTable
	logger  *slog.Logger
}

// NewValuationService creates a valuation service using the given alias table.
func NewValuationService(aliases pricing.AliasTable, logger *slog.Logger) *ValuationService {
	return &ValuationService{
		aliases: aliases,
		logger:  logger,
	}
}

// CalculateRequest is a stateless valuation batch: scan rows plus the price
// list to value them against.
type CalculateRequest struct {
	Items  []domain.RawItem   `json:"item_data"`
	Prices []pricing.PriceRow `json:"price_data"`
}

// FixedItem is one row of the fixed-column calculation output. Box
// identifiers are coerced to integers (0 when non-numeric) to match the
// export format downstream spreadsheets expect.
type FixedItem struct {
	BoxID          int64   `json:"box_id"`
	BoxNo          int64   `json:"box_no"`
	Material       string  `json:"material"`
	Misc           string  `json:"misc"`
	Weight         string  `json:"weight"`
	JewelryPrice   float64 `json:"jewelry_price"`
	MaterialPrice  float64 `json:"material_price"`
	TotalWeight    float64 `json:"total_weight"`
	GemstoneWeight float64 `json:"gemstone_weight"`
	MaterialWeight float64 `json:"material_weight"`
}

// CalculateResponse is the JSON form of a stateless valuation.
type CalculateResponse struct {
	CalculatedItems []FixedItem `json:"calculated_items"`
	TotalItems      int         `json:"total_items"`
	TotalValue      float64     `json:"total_value"`
}

// FixedColumns is the CSV header of the fixed calculation output, in order.
var FixedColumns = []string{
	"box_id", "box_no", "material", "misc", "weight",
	"jewelry_price", "material_price", "total_weight",
	"gemstone_weight", "material_weight",
}

// CSVRecord renders the item as a CSV record matching FixedColumns.
func (f FixedItem) CSVRecord() []string {
	return []string{
		strconv.FormatInt(f.BoxID, 10),
		strconv.FormatInt(f.BoxNo, 10),
		f.Material,
		f.Misc,
		f.Weight,
		formatFloat(f.JewelryPrice),
		formatFloat(f.MaterialPrice),
		formatFloat(f.TotalWeight),
		formatFloat(f.GemstoneWeight),
		formatFloat(f.MaterialWeight),
	}
}

// Calculate values a batch without persisting anything. Items come back in
// (box_id, box_no) order with non-numeric identifiers coerced to 0.
func (s *ValuationService) Calculate(req CalculateRequest) (*CalculateResponse, error) {
	if len(req.Items) == 0 {
		return nil, domainerrors.Validation("item_data is required")
	}
	if len(req.Items) > maxBatchItems {
		return nil, domainerrors.Validationf("item_data exceeds %d items", maxBatchItems)
	}

	prices := pricing.NewPriceTable(req.Prices, s.aliases)
	valued := pricing.EvaluateAll(req.Items, prices)
	pricing.SortByBox(valued)

	items := make([]FixedItem, len(valued))
	var totalValue float64
	for i, v := range valued {
		items[i] = FixedItem{
			BoxID:          coerceInt(v.BoxID),
			BoxNo:          coerceInt(v.BoxNo),
			Material:       v.Material,
			Misc:           v.Misc,
			Weight:         v.Weight,
			JewelryPrice:   v.JewelryPrice,
			MaterialPrice:  v.MaterialPrice,
			TotalWeight:    v.TotalWeight,
			GemstoneWeight: v.GemstoneWeight,
			MaterialWeight: v.MaterialWeight,
		}
		totalValue += v.JewelryPrice
	}

	s.logger.Debug("Stateless calculation", "items", len(items), "known_prices", prices.Len())
	return &CalculateResponse{
		CalculatedItems: items,
		TotalItems:      len(items),
		TotalValue:      totalValue,
	}, nil
}

// Evaluate values a batch and returns the full valued rows, unsorted.
// Used by the save path, which persists original identifiers untouched.
func (s *ValuationService) Evaluate(items []domain.RawItem, priceRows []pricing.PriceRow) []domain.ValuedItem {
	prices := pricing.NewPriceTable(priceRows, s.aliases)
	return pricing.EvaluateAll(items, prices)
}

// InvalidWeight describes one row whose weight text cannot be parsed.
type InvalidWeight struct {
	Index  int            `json:"index"`
	Weight string         `json:"weight"`
	BoxID  string         `json:"box_id"`
	BoxNo  string         `json:"box_no"`
	Item   domain.RawItem `json:"row_data"`
}

// CheckWeightsResponse lists the rows that would lose their weight during
// valuation.
type CheckWeightsResponse struct {
	InvalidWeights []InvalidWeight `json:"invalid_weights"`
}

// CheckWeights reports rows whose non-empty weight text has no parseable
// number. Empty weights are fine (the item simply has none); only text that
// looks like data but parses to nothing is flagged.
func (s *ValuationService) CheckWeights(items []domain.RawItem) *CheckWeightsResponse {
	invalid := make([]InvalidWeight, 0)
	for i, item := range items {
		w := strings.TrimSpace(item.Weight)
		if w == "" {
			continue
		}
		if _, ok := pricing.ParseWeightText(w); !ok {
			invalid = append(invalid, InvalidWeight{
				Index:  i,
				Weight: w,
				BoxID:  item.BoxID,
				BoxNo:  item.BoxNo,
				Item:   item,
			})
		}
	}
	return &CheckWeightsResponse{InvalidWeights: invalid}
}

// coerceInt parses an integer identifier, coercing anything else to 0.
func coerceInt(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		// Spreadsheet floats ("3.0") still count as numeric.
		if f, ferr := strconv.ParseFloat(strings.TrimSpace(s), 64); ferr == nil {
			return int64(f)
		}
		return 0
	}
	return v
}

// formatFloat renders a float the way the CSV export expects: no exponent,
// no trailing zeros.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
