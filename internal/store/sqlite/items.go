package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mbjewelry/appraisal-server/internal/domain"
	"github.com/mbjewelry/appraisal-server/internal/store"
)

// itemColumns is the ordered list of columns selected in item queries.
// Must match the scan order in scanItem.
const itemColumns = `id, calculation_id, box_id, box_no, material, weight_text,
	weight_grams, misc, jewelry_price, material_price, total_weight,
	gemstone_weight, material_weight, brand_name, subcategory_name,
	accessory_comment, budget_lower, budget_upper, budget_reserve,
	frame_price, side_stone_price, live, rank, created_at`

// scanItem scans a sql.Row (or sql.Rows via its Scan method) into a
// domain.CalculationItem.
func scanItem(scanner interface{ Scan(dest ...any) error }) (*domain.CalculationItem, error) {
	var item domain.CalculationItem

	var (
		boxID          sql.NullInt64
		boxNo          sql.NullInt64
		material       sql.NullString
		weightText     sql.NullString
		weightGrams    sql.NullFloat64
		misc           sql.NullString
		brandName      sql.NullString
		subcategory    sql.NullString
		accessory      sql.NullString
		budgetLower    sql.NullFloat64
		budgetUpper    sql.NullFloat64
		budgetReserve  sql.NullFloat64
		framePrice     sql.NullFloat64
		sideStonePrice sql.NullFloat64
		live           sql.NullInt64
		rank           sql.NullString
		createdAt      string
	)

	err := scanner.Scan(
		&item.ID,
		&item.CalculationID,
		&boxID,
		&boxNo,
		&material,
		&weightText,
		&weightGrams,
		&misc,
		&item.JewelryPrice,
		&item.MaterialPrice,
		&item.TotalWeight,
		&item.GemstoneWeight,
		&item.MaterialWeight,
		&brandName,
		&subcategory,
		&accessory,
		&budgetLower,
		&budgetUpper,
		&budgetReserve,
		&framePrice,
		&sideStonePrice,
		&live,
		&rank,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	item.BoxID = int64Ptr(boxID)
	item.BoxNo = int64Ptr(boxNo)
	item.Material = material.String
	item.WeightText = weightText.String
	item.WeightGrams = float64Ptr(weightGrams)
	item.Misc = misc.String
	item.BrandName = brandName.String
	item.SubcategoryName = subcategory.String
	item.AccessoryComment = accessory.String
	item.BudgetLower = float64Ptr(budgetLower)
	item.BudgetUpper = float64Ptr(budgetUpper)
	item.BudgetReserve = float64Ptr(budgetReserve)
	item.FramePrice = float64Ptr(framePrice)
	item.SideStonePrice = float64Ptr(sideStonePrice)
	item.Live = boolPtr(live)
	item.Rank = stringPtr(rank)

	item.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// updatableItemColumns maps JSON field names accepted in a partial item
// update to their columns. Identity and ownership fields (id,
// calculation_id, created_at) are deliberately absent: an update can touch
// pricing, descriptive, and business fields only.
var updatableItemColumns = map[string]string{
	"box_id":            "box_id",
	"box_no":            "box_no",
	"material":          "material",
	"weight_text":       "weight_text",
	"weight_grams":      "weight_grams",
	"misc":              "misc",
	"jewelry_price":     "jewelry_price",
	"material_price":    "material_price",
	"total_weight":      "total_weight",
	"gemstone_weight":   "gemstone_weight",
	"material_weight":   "material_weight",
	"brand_name":        "brand_name",
	"subcategory_name":  "subcategory_name",
	"accessory_comment": "accessory_comment",
	"budget_lower":      "budget_lower",
	"budget_upper":      "budget_upper",
	"budget_reserve":    "budget_reserve",
	"frame_price":       "frame_price",
	"side_stone_price":  "side_stone_price",
	"live":              "live",
	"rank":              "rank",
}

// UpdateCalculationItem applies a field-allowlisted partial update to one
// item. The item must belong to a calculation owned by userID; an
// ownership miss and an update whose fields are all disallowed both return
// false without touching the row.
func (s *Store) UpdateCalculationItem(ctx context.Context, calculationID, itemID, userID int64, fields store.ItemUpdate) (bool, error) {
	setClauses := make([]string, 0, len(fields))
	values := make([]any, 0, len(fields)+1)
	for field, value := range fields {
		column, ok := updatableItemColumns[field]
		if !ok {
			continue
		}
		setClauses = append(setClauses, column+" = ?")
		values = append(values, normalizeUpdateValue(value))
	}
	if len(setClauses) == 0 {
		return false, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin item update: %w", err)
	}
	defer tx.Rollback()

	// Ownership gate: the item must hang off a calculation owned by the
	// caller. A miss is indistinguishable from a nonexistent item.
	var owned int64
	err = tx.QueryRowContext(ctx, `
		SELECT c.id FROM calculations c
		JOIN calculation_items ci ON c.id = ci.calculation_id
		WHERE c.id = ? AND c.user_id = ? AND ci.id = ?`,
		calculationID, userID, itemID,
	).Scan(&owned)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	values = append(values, itemID)
	//nolint:gosec // Column names come from the fixed allowlist above, not from input.
	query := `UPDATE calculation_items SET ` + strings.Join(setClauses, ", ") + ` WHERE id = ?`
	result, err := tx.ExecContext(ctx, query, values...)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit item update: %w", err)
	}

	s.logger.Debug("Calculation item updated",
		"calculation_id", calculationID,
		"item_id", itemID,
		"fields", len(setClauses),
	)
	return n > 0, nil
}

// normalizeUpdateValue converts JSON-decoded update values into driver
// friendly types. Booleans become 0/1 to match the schema's INTEGER flags.
func normalizeUpdateValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return int64(1)
		}
		return int64(0)
	}
	return v
}
