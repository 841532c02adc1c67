package pricing

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/mbjewelry/appraisal-server/internal/domain"
)

// numberPattern extracts the first numeric substring from a misc token,
// decimals included.
var numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// ParseWeight extracts grams from free-text weight like "11.3g" or
// "approx 11.3 g*". It takes the text before the first "g", strips every
// character that is not a digit or decimal point, and parses the rest.
// Anything unparseable yields 0; this never fails.
func ParseWeight(text string) float64 {
	v, ok := ParseWeightText(text)
	if !ok {
		return 0
	}
	return v
}

// ParseWeightText is ParseWeight with an explicit ok flag, for callers that
// need to distinguish "no weight" from a literal zero (the store persists
// NULL grams for unparseable text).
func ParseWeightText(text string) (float64, bool) {
	head, _, _ := strings.Cut(text, "g")

	var b strings.Builder
	for _, r := range head {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// GemstoneWeight estimates the non-metal weight in grams from the misc
// annotation field. Tokens are whitespace-separated; tokens carrying '#',
// 'cm' or '%' are ring sizes, lengths, or purities and contribute nothing.
// A token with 'mm' is read as a stone span and converted by n³/700 (a
// density heuristic for a roughly cubic stone of that dimension); a token
// with a decimal point is read as a carat-like code at 0.2 g per carat.
func GemstoneWeight(misc string) float64 {
	var total float64
	for _, token := range strings.Fields(misc) {
		if strings.Contains(token, "#") || strings.Contains(token, "cm") || strings.Contains(token, "%") {
			continue
		}
		match := numberPattern.FindString(token)
		if match == "" {
			continue
		}
		num, err := strconv.ParseFloat(match, 64)
		if err != nil {
			continue
		}
		switch {
		case strings.Contains(token, "mm"):
			total += num * num * num / 700
		case strings.Contains(token, "."):
			total += num * 0.2
		}
	}
	return total
}

// ResolveMaterialPrice looks up the unit price for a material field.
// A "/"-separated field is a multi-material lot: the price is the mean of
// the sub-material prices, but only when every one of them is known —
// a single unknown part makes the whole field price zero rather than a
// partial average.
func ResolveMaterialPrice(material string, prices PriceTable) float64 {
	field := strings.ToLower(strings.TrimSpace(material))
	if field == "" {
		return 0
	}

	if strings.Contains(field, "/") {
		parts := strings.Split(field, "/")
		sum := 0.0
		for _, part := range parts {
			price, ok := prices.Lookup(strings.TrimSpace(part))
			if !ok {
				return 0
			}
			sum += price
		}
		return sum / float64(len(parts))
	}

	price, _ := prices.Lookup(field)
	return price
}

// Evaluate computes the priced breakdown for one raw row. It never fails:
// malformed weight, unknown material, and noisy misc text all degrade to
// zero contributions instead of errors.
func Evaluate(item domain.RawItem, prices PriceTable) domain.ValuationResult {
	totalWeight := ParseWeight(item.Weight)
	gemstoneWeight := GemstoneWeight(item.Misc)
	materialPrice := ResolveMaterialPrice(item.Material, prices)

	materialWeight := totalWeight - gemstoneWeight
	return domain.ValuationResult{
		TotalWeight:    totalWeight,
		GemstoneWeight: gemstoneWeight,
		MaterialWeight: materialWeight,
		MaterialPrice:  materialPrice,
		JewelryPrice:   materialWeight * materialPrice,
	}
}

// EvaluateAll values each row independently, preserving input order.
func EvaluateAll(items []domain.RawItem, prices PriceTable) []domain.ValuedItem {
	valued := make([]domain.ValuedItem, len(items))
	for i, item := range items {
		valued[i] = domain.ValuedItem{
			RawItem:         item,
			ValuationResult: Evaluate(item, prices),
		}
	}
	return valued
}

// SortByBox orders valued items by (box_id, box_no) ascending. Non-numeric
// identifiers are coerced to 0 for ordering only; the stored text is kept.
// The sort is stable so equal keys keep their input order.
func SortByBox(items []domain.ValuedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		bi, bj := numericOrZero(items[i].BoxID), numericOrZero(items[j].BoxID)
		if bi != bj {
			return bi < bj
		}
		return numericOrZero(items[i].BoxNo) < numericOrZero(items[j].BoxNo)
	})
}

// numericOrZero parses a numeric identifier for ordering. Spreadsheet
// floats ("3.0") truncate to their integer part; anything non-numeric
// coerces to 0.
func numericOrZero(s string) int64 {
	trimmed := strings.TrimSpace(s)
	v, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		if f, ferr := strconv.ParseFloat(trimmed, 64); ferr == nil {
			return int64(f)
		}
		return 0
	}
	return v
}
