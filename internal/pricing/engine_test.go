package pricing

import (
	"math"
	"testing"

	"github.com/mbjewelry/appraisal-server/internal/domain"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func testPrices(t *testing.T) PriceTable {
	t.Helper()
	return NewPriceTable([]PriceRow{
		{Material: "gold", Price: "10000"},
		{Material: "platinum", Price: "5000"},
		{Material: "silver", Price: "100"},
	}, DefaultAliasTable())
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"10.5g", 10.5},
		{"approx 11.3 g*", 11.3},
		{"3g (with box)", 3},
		{"  2.75 G is not grams", 2.75}, // lowercase g only; uppercase passes through stripping
		{"12", 12},                      // no unit marker, still parseable
		{"no weight", 0},
		{"", 0},
		{"g", 0},
		{"..g", 0}, // stripped text is not a number
	}
	for _, tt := range tests {
		if got := ParseWeight(tt.text); !almostEqual(got, tt.want) {
			t.Errorf("ParseWeight(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParseWeightUsesTextBeforeFirstG(t *testing.T) {
	// Only the text before the first "g" counts; trailing digits are noise.
	if got := ParseWeight("10.5g 999"); !almostEqual(got, 10.5) {
		t.Errorf("ParseWeight = %v, want 10.5", got)
	}
}

func TestParseWeightFirstLowercaseGTerminates(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		// The cut happens at the first lowercase "g"; a second marker is
		// already past the cut.
		{"5g 10g", 5},
		// Uppercase "G" does not terminate. It survives the cut and is then
		// stripped, so every digit before the first lowercase "g" runs
		// together.
		{"5G 10g", 510},
		// With no lowercase "g" at all, the whole text is stripped.
		{"1.5G", 1.5},
	}
	for _, tt := range tests {
		if got := ParseWeight(tt.text); !almostEqual(got, tt.want) {
			t.Errorf("ParseWeight(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestParseWeightText(t *testing.T) {
	if _, ok := ParseWeightText("no number here"); ok {
		t.Error("unparseable text should report ok=false")
	}
	if v, ok := ParseWeightText("0g"); !ok || v != 0 {
		t.Errorf("literal zero = (%v, %v), want (0, true)", v, ok)
	}
}

func TestGemstoneWeight(t *testing.T) {
	tests := []struct {
		misc string
		want float64
	}{
		{"6.5mm", 6.5 * 6.5 * 6.5 / 700},
		{"0.25", 0.25 * 0.2},
		{"0.25 0.10", 0.25*0.2 + 0.10*0.2},
		{"#12", 0},     // ring size
		{"45cm", 0},    // chain length
		{"12%", 0},     // purity note
		{"12", 0},      // integer with no marker contributes nothing
		{"", 0},
		{"#12 6.5mm 0.25", 6.5*6.5*6.5/700 + 0.25*0.2},
	}
	for _, tt := range tests {
		if got := GemstoneWeight(tt.misc); !almostEqual(got, tt.want) {
			t.Errorf("GemstoneWeight(%q) = %v, want %v", tt.misc, got, tt.want)
		}
	}
}

func TestResolveMaterialPrice(t *testing.T) {
	prices := testPrices(t)

	tests := []struct {
		material string
		want     float64
	}{
		{"gold", 10000},
		{"GOLD", 10000},
		{"k18", 10000},     // alias of gold
		{"pt900", 5000},    // alias of platinum
		{"unknownium", 0},
		{"", 0},
		{"gold/platinum", 7500},   // mean of known parts
		{"gold / platinum", 7500}, // whitespace around parts tolerated
		{"gold/unknownium", 0},    // one unknown part zeroes the lot
		{"k18/pt900/sv925", (10000.0 + 5000 + 100) / 3},
	}
	for _, tt := range tests {
		if got := ResolveMaterialPrice(tt.material, prices); !almostEqual(got, tt.want) {
			t.Errorf("ResolveMaterialPrice(%q) = %v, want %v", tt.material, got, tt.want)
		}
	}
}

func TestEvaluate(t *testing.T) {
	prices := testPrices(t)

	result := Evaluate(domain.RawItem{
		Material: "gold",
		Weight:   "10.5g",
		Misc:     "0.25",
	}, prices)

	if !almostEqual(result.TotalWeight, 10.5) {
		t.Errorf("total weight = %v, want 10.5", result.TotalWeight)
	}
	if !almostEqual(result.GemstoneWeight, 0.05) {
		t.Errorf("gemstone weight = %v, want 0.05", result.GemstoneWeight)
	}
	if !almostEqual(result.MaterialWeight, 10.45) {
		t.Errorf("material weight = %v, want 10.45", result.MaterialWeight)
	}
	if !almostEqual(result.MaterialPrice, 10000) {
		t.Errorf("material price = %v, want 10000", result.MaterialPrice)
	}
	if !almostEqual(result.JewelryPrice, 10.45*10000) {
		t.Errorf("jewelry price = %v, want %v", result.JewelryPrice, 10.45*10000)
	}
}

func TestEvaluateNegativeMaterialWeight(t *testing.T) {
	// A heavy stone estimate can exceed total weight; the negative material
	// weight flows straight into the price rather than clamping.
	prices := testPrices(t)
	result := Evaluate(domain.RawItem{
		Material: "gold",
		Weight:   "1g",
		Misc:     "15mm",
	}, prices)

	if result.MaterialWeight >= 0 {
		t.Fatalf("material weight = %v, want negative", result.MaterialWeight)
	}
	if !almostEqual(result.JewelryPrice, result.MaterialWeight*10000) {
		t.Errorf("jewelry price = %v, want %v", result.JewelryPrice, result.MaterialWeight*10000)
	}
}

func TestEvaluateDegradesToZero(t *testing.T) {
	prices := testPrices(t)
	result := Evaluate(domain.RawItem{
		Material: "mystery metal",
		Weight:   "heavy",
		Misc:     "???",
	}, prices)

	if result != (domain.ValuationResult{}) {
		t.Errorf("fully unparseable row = %+v, want all zeros", result)
	}
}

func TestEvaluateAllPreservesOrder(t *testing.T) {
	prices := testPrices(t)
	items := []domain.RawItem{
		{BoxID: "9", Material: "gold", Weight: "1g"},
		{BoxID: "1", Material: "silver", Weight: "2g"},
	}

	valued := EvaluateAll(items, prices)
	if len(valued) != 2 {
		t.Fatalf("valued = %d items", len(valued))
	}
	if valued[0].BoxID != "9" || valued[1].BoxID != "1" {
		t.Error("EvaluateAll must preserve input order")
	}
}

func TestSortByBox(t *testing.T) {
	items := []domain.ValuedItem{
		{RawItem: domain.RawItem{BoxID: "3.0", BoxNo: "1", Material: "e"}}, // spreadsheet float sorts as 3
		{RawItem: domain.RawItem{BoxID: "2", BoxNo: "1", Material: "a"}},
		{RawItem: domain.RawItem{BoxID: "1", BoxNo: "2.0", Material: "b"}},
		{RawItem: domain.RawItem{BoxID: "1", BoxNo: "1", Material: "c"}},
		{RawItem: domain.RawItem{BoxID: "tray", BoxNo: "", Material: "d"}}, // coerces to 0, sorts first
	}

	SortByBox(items)

	got := make([]string, len(items))
	for i, item := range items {
		got[i] = item.Material
	}
	want := []string{"d", "c", "b", "a", "e"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sorted order = %v, want %v", got, want)
		}
	}
}
