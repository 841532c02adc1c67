// Package normalize converts free-text scan fields into the typed forms
// stored in calculation items.
package normalize

import (
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/mbjewelry/appraisal-server/internal/pricing"
)

// hashSpace bounds hashed box identifiers so they stay well clear of
// real box numbers and fit comfortably in the schema's INTEGER column.
const hashSpace = 999999

// BoxID normalizes a box identifier to an integer. Numeric strings parse
// directly; any other non-empty identifier is mapped through FNV-1a into
// [0, hashSpace) so the same label always lands on the same group.
// FNV-1a is fixed and process-independent, unlike runtime map hashes, so
// grouping stays stable across restarts. Empty input stays nil.
func BoxID(raw string) *int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if isDigits(s) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err == nil {
			return &v
		}
	}
	h := fnv.New32a()
	h.Write([]byte(s))
	v := int64(h.Sum32()) % hashSpace
	return &v
}

// BoxNo parses a box sequence number. Decimal input is truncated the way
// spreadsheet exports expect ("3.0" is box 3); anything non-numeric is nil.
func BoxNo(raw string) *int64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return &v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		v := int64(f)
		return &v
	}
	return nil
}

// WeightGrams parses weight text with the valuation engine's rule but
// keeps the unknown state: nil means the text had no parseable number,
// which the store persists as NULL rather than a false zero.
func WeightGrams(text string) *float64 {
	v, ok := pricing.ParseWeightText(text)
	if !ok {
		return nil
	}
	return &v
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
