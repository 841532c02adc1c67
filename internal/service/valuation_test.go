package service

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbjewelry/appraisal-server/internal/domain"
	domainerrors "github.com/mbjewelry/appraisal-server/internal/errors"
	"github.com/mbjewelry/appraisal-server/internal/pricing"
)

func newTestValuation(t *testing.T) *ValuationService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewValuationService(pricing.DefaultAliasTable(), logger)
}

func goldPrices() []pricing.PriceRow {
	return []pricing.PriceRow{
		{Material: "gold", Price: "10000"},
		{Material: "platinum", Price: "5000"},
	}
}

func TestCalculate(t *testing.T) {
	svc := newTestValuation(t)

	resp, err := svc.Calculate(CalculateRequest{
		Items: []domain.RawItem{
			{BoxID: "2", BoxNo: "1", Material: "k18", Weight: "10.5g", Misc: "0.25"},
			{BoxID: "1", BoxNo: "1", Material: "pt900", Weight: "3g"},
		},
		Prices: goldPrices(),
	})
	require.NoError(t, err)

	require.Len(t, resp.CalculatedItems, 2)
	assert.Equal(t, 2, resp.TotalItems)

	// Sorted by box id: box 1 first.
	first := resp.CalculatedItems[0]
	assert.Equal(t, int64(1), first.BoxID)
	assert.Equal(t, "pt900", first.Material)
	assert.InDelta(t, 3*5000.0, first.JewelryPrice, 1e-9)

	second := resp.CalculatedItems[1]
	assert.Equal(t, int64(2), second.BoxID)
	assert.InDelta(t, 10.5, second.TotalWeight, 1e-9)
	assert.InDelta(t, 0.05, second.GemstoneWeight, 1e-9)
	assert.InDelta(t, 10.45*10000, second.JewelryPrice, 1e-9)

	assert.InDelta(t, first.JewelryPrice+second.JewelryPrice, resp.TotalValue, 1e-9)
}

func TestCalculateCoercesBoxIdentifiers(t *testing.T) {
	svc := newTestValuation(t)

	resp, err := svc.Calculate(CalculateRequest{
		Items: []domain.RawItem{
			{BoxID: "TRAY-A", BoxNo: "3.0", Material: "gold", Weight: "1g"},
		},
		Prices: goldPrices(),
	})
	require.NoError(t, err)

	require.Len(t, resp.CalculatedItems, 1)
	assert.Equal(t, int64(0), resp.CalculatedItems[0].BoxID, "non-numeric box id coerces to 0")
	assert.Equal(t, int64(3), resp.CalculatedItems[0].BoxNo, "spreadsheet float truncates")
}

func TestCalculateEmptyBatch(t *testing.T) {
	svc := newTestValuation(t)

	_, err := svc.Calculate(CalculateRequest{Prices: goldPrices()})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
}

func TestCalculateWithoutPrices(t *testing.T) {
	svc := newTestValuation(t)

	// No price list: everything values to zero but the call succeeds.
	resp, err := svc.Calculate(CalculateRequest{
		Items: []domain.RawItem{
			{BoxID: "1", Material: "gold", Weight: "2g"},
		},
	})
	require.NoError(t, err)
	assert.Zero(t, resp.TotalValue)
	assert.InDelta(t, 2.0, resp.CalculatedItems[0].TotalWeight, 1e-9)
}

func TestFixedItemCSVRecord(t *testing.T) {
	item := FixedItem{
		BoxID:        5,
		BoxNo:        1,
		Material:     "gold",
		Misc:         "0.25",
		Weight:       "10.5g",
		JewelryPrice: 104500,
		TotalWeight:  10.5,
	}

	record := item.CSVRecord()
	require.Len(t, record, len(FixedColumns))
	assert.Equal(t, "5", record[0])
	assert.Equal(t, "gold", record[2])
	assert.Equal(t, "104500", record[5])
	assert.Equal(t, "10.5", record[7])
}

func TestCheckWeights(t *testing.T) {
	svc := newTestValuation(t)

	resp := svc.CheckWeights([]domain.RawItem{
		{BoxID: "1", BoxNo: "1", Weight: "10.5g"},    // fine
		{BoxID: "1", BoxNo: "2", Weight: ""},         // empty is fine
		{BoxID: "2", BoxNo: "1", Weight: "unknown"},  // flagged
		{BoxID: "2", BoxNo: "2", Weight: "..g"},      // flagged: cleans to nothing parseable
		{BoxID: "3", BoxNo: "1", Weight: "   "},      // whitespace counts as empty
	})

	require.Len(t, resp.InvalidWeights, 2)

	first := resp.InvalidWeights[0]
	assert.Equal(t, 2, first.Index)
	assert.Equal(t, "unknown", first.Weight)
	assert.Equal(t, "2", first.BoxID)
	assert.Equal(t, "1", first.BoxNo)

	assert.Equal(t, 3, resp.InvalidWeights[1].Index)
}

func TestCheckWeightsAllValid(t *testing.T) {
	svc := newTestValuation(t)

	resp := svc.CheckWeights([]domain.RawItem{
		{Weight: "1g"},
		{Weight: "2.5g"},
	})
	assert.Empty(t, resp.InvalidWeights)
	assert.NotNil(t, resp.InvalidWeights, "empty list must serialize as [], not null")
}
