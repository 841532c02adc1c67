package domain

import "time"

// BoxGroupEntry is one historical appearance of a box: the item snapshot
// plus the calculation it came from.
type BoxGroupEntry struct {
	CalculationID   int64            `json:"history_id"`
	CalculationName string           `json:"calculation_name"`
	CreatedAt       time.Time        `json:"created_at"`
	Item            *CalculationItem `json:"item"`
}

// BoxGroup collects the historical entries for a single physical box.
// Groups are returned as an ordered list (numeric box ids ascending,
// hash-fallback ids after) because JSON object key order is unreliable.
type BoxGroup struct {
	BoxID   int64            `json:"box_id"`
	Entries []*BoxGroupEntry `json:"entries"`
}
