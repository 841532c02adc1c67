// Package pricing implements the valuation core: the material price
// resolver, which expands a static alias table over a per-request price
// list, and the valuation engine, which turns raw scan rows into priced
// breakdowns.
package pricing

import (
	_ "embed"
	"encoding/json/v2"
	"fmt"
	"strconv"
	"strings"
)

// material_aliases.json maps each canonical material name to the spellings
// that appear in scanned records. It is loaded once at process start;
// malformed content is fatal because every valuation depends on it.
//
//go:embed material_aliases.json
var aliasJSON []byte

// AliasTable maps alias spellings (lowercase) to canonical material names
// (lowercase). Immutable after construction and safe for concurrent reads.
type AliasTable map[string]string

// LoadAliasTable parses an alias resource: canonical name -> list of alias
// spellings. Every alias maps to exactly one canonical name; the canonical
// spelling itself is always recognized.
func LoadAliasTable(data []byte) (AliasTable, error) {
	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse alias table: %w", err)
	}

	table := make(AliasTable, len(raw)*4)
	for canonical, aliases := range raw {
		canonical = strings.ToLower(strings.TrimSpace(canonical))
		table[canonical] = canonical
		for _, alias := range aliases {
			table[strings.ToLower(strings.TrimSpace(alias))] = canonical
		}
	}
	return table, nil
}

// DefaultAliasTable returns the alias table embedded in the binary.
// It panics on a malformed resource: there is no degraded mode without it.
func DefaultAliasTable() AliasTable {
	table, err := LoadAliasTable(aliasJSON)
	if err != nil {
		panic(fmt.Sprintf("pricing: embedded alias table is invalid: %v", err))
	}
	return table
}

// PriceRow is one row of a tabular price list. Price is free text; anything
// that doesn't parse as a number is treated as zero.
type PriceRow struct {
	Material string     `json:"material"`
	Price    PriceValue `json:"price"`
}

// PriceValue accepts either a JSON number or a string, since price lists
// arrive from spreadsheet exports with inconsistent typing.
type PriceValue string

// UnmarshalJSON decodes a number or string into the raw textual price.
func (p *PriceValue) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*p = PriceValue(str)
		return nil
	}
	if s == "null" {
		*p = ""
		return nil
	}
	*p = PriceValue(s)
	return nil
}

// PriceTable resolves any recognized material spelling to a unit price.
// A spelling can be known with price zero, which is distinct from unknown:
// aliases whose canonical material is absent from the price list do not
// appear in the table at all.
type PriceTable struct {
	prices map[string]float64
}

// NewPriceTable indexes a price list and expands it through the alias
// table. Material names are lowercased before indexing; non-numeric or
// negative prices coerce to zero.
func NewPriceTable(rows []PriceRow, aliases AliasTable) PriceTable {
	canonical := make(map[string]float64, len(rows))
	for _, row := range rows {
		canonical[strings.ToLower(strings.TrimSpace(row.Material))] = coercePrice(string(row.Price))
	}

	prices := make(map[string]float64, len(aliases))
	for alias, main := range aliases {
		if price, ok := canonical[main]; ok {
			prices[alias] = price
		}
	}
	// Keep list entries that have no alias mapping resolvable by their own
	// spelling.
	for material, price := range canonical {
		if _, ok := prices[material]; !ok {
			prices[material] = price
		}
	}
	return PriceTable{prices: prices}
}

// Lookup returns the unit price for a spelling and whether it is known.
func (t PriceTable) Lookup(material string) (float64, bool) {
	price, ok := t.prices[strings.ToLower(strings.TrimSpace(material))]
	return price, ok
}

// Len returns the number of resolvable spellings.
func (t PriceTable) Len() int {
	return len(t.prices)
}

// coercePrice parses a price string, defaulting to zero on failure and
// clamping negative input to zero.
func coercePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
