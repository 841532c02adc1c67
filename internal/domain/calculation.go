// Package domain defines the core entities of the appraisal server:
// users, calculations (persisted valuation runs), their items, and the
// derived aggregates read back for display.
package domain

import "time"

// Calculation is one persisted valuation run: a named batch of priced items
// owned by a single user. Items are lifetime-bound to their calculation and
// removed with it.
type Calculation struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"calculation_name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CalculationSummary is the derived per-calculation aggregate. It is always
// computed fresh from the item rows (via calculation_summaries_view) and is
// never stored, so it can't go stale.
type CalculationSummary struct {
	ItemCount        int64   `json:"item_count"`
	TotalValue       float64 `json:"total_value"`
	TotalWeight      float64 `json:"total_weight"`
	UniqueBoxes      int64   `json:"unique_boxes"`
	AverageItemValue float64 `json:"average_item_value"`
}

// CalculationListEntry is one row of a user's history listing.
type CalculationListEntry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"calculation_name"`
	CreatedAt time.Time `json:"created_at"`
	CalculationSummary
}

// CalculationDetail is a calculation with its summary and all of its items,
// ordered by (box_id, box_no).
type CalculationDetail struct {
	Calculation
	Summary CalculationSummary `json:"summary"`
	Items   []*CalculationItem `json:"items"`
}

// UserStats aggregates a user's activity across all of their calculations.
// LastCalculationAt is nil for users with no history.
type UserStats struct {
	TotalCalculations int64      `json:"total_calculations"`
	TotalItems        int64      `json:"total_items"`
	TotalValue        float64    `json:"total_value"`
	LastCalculationAt *time.Time `json:"last_calculation"`
}
