package domain

import "time"

// RawItem is one untyped input row from a scanned box record.
// Missing columns arrive as empty strings; the valuation engine treats
// every field as free text and never rejects a row.
type RawItem struct {
	BoxID            string `json:"box_id"`
	BoxNo            string `json:"box_no"`
	Material         string `json:"material"`
	Misc             string `json:"misc"`
	Weight           string `json:"weight"`
	BrandName        string `json:"brand_name,omitempty"`
	SubcategoryName  string `json:"subcategory_name,omitempty"`
	AccessoryComment string `json:"accessory_comment,omitempty"`
}

// ValuationResult is the priced breakdown computed for a single RawItem.
//
// MaterialWeight = TotalWeight - GemstoneWeight and may be negative when the
// gemstone estimate exceeds the parsed total weight. That is intentional:
// the estimate is a heuristic and downstream consumers want to see the
// overshoot rather than a silently clamped zero.
type ValuationResult struct {
	TotalWeight    float64 `json:"total_weight"`
	GemstoneWeight float64 `json:"gemstone_weight"`
	MaterialWeight float64 `json:"material_weight"`
	MaterialPrice  float64 `json:"material_price"`
	JewelryPrice   float64 `json:"jewelry_price"`
}

// ValuedItem pairs a raw input row with its computed valuation.
// This is the unit of the stateless calculate endpoint and the payload
// persisted as a CalculationItem.
type ValuedItem struct {
	RawItem
	ValuationResult
}

// CalculationItem is one persisted, individually editable item belonging to
// exactly one Calculation. BoxID is normalized to an integer (numeric input
// parsed directly, other identifiers hashed into a bounded space) so that
// grouping stays stable across runs; nil means the row had no box.
type CalculationItem struct {
	ID            int64 `json:"id"`
	CalculationID int64 `json:"calculation_id"`

	BoxID       *int64   `json:"box_id"`
	BoxNo       *int64   `json:"box_no"`
	Material    string   `json:"material,omitempty"`
	WeightText  string   `json:"weight_text,omitempty"`
	WeightGrams *float64 `json:"weight_grams"`
	Misc        string   `json:"misc,omitempty"`

	JewelryPrice   float64 `json:"jewelry_price"`
	MaterialPrice  float64 `json:"material_price"`
	TotalWeight    float64 `json:"total_weight"`
	GemstoneWeight float64 `json:"gemstone_weight"`
	MaterialWeight float64 `json:"material_weight"`

	BrandName        string `json:"brand_name,omitempty"`
	SubcategoryName  string `json:"subcategory_name,omitempty"`
	AccessoryComment string `json:"accessory_comment,omitempty"`

	BudgetLower    *float64 `json:"budget_lower,omitempty"`
	BudgetUpper    *float64 `json:"budget_upper,omitempty"`
	BudgetReserve  *float64 `json:"budget_reserve,omitempty"`
	FramePrice     *float64 `json:"frame_price,omitempty"`
	SideStonePrice *float64 `json:"side_stone_price,omitempty"`
	Live           *bool    `json:"live,omitempty"`
	Rank           *string  `json:"rank,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
