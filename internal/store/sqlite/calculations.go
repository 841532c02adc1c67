package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mbjewelry/appraisal-server/internal/domain"
	"github.com/mbjewelry/appraisal-server/internal/normalize"
	"github.com/mbjewelry/appraisal-server/internal/store"
)

// SaveCalculation persists a valuation run as one calculation row plus all
// of its item rows in a single transaction. Box identifiers are normalized
// and weight text re-parsed to grams on the way in. Any failure rolls the
// whole run back; a calculation is never saved partially.
func (s *Store) SaveCalculation(ctx context.Context, userID int64, name, description string, items []domain.ValuedItem) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save calculation: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	result, err := tx.ExecContext(ctx, `
		INSERT INTO calculations (user_id, name, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		userID, name, nullString(description), formatTime(now), formatTime(now),
	)
	if err != nil {
		return 0, fmt.Errorf("insert calculation: %w", err)
	}
	calculationID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("calculation id: %w", err)
	}

	for i, item := range items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO calculation_items (
				calculation_id, box_id, box_no, material, weight_text, weight_grams,
				misc, jewelry_price, material_price, total_weight,
				gemstone_weight, material_weight,
				brand_name, subcategory_name, accessory_comment, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			calculationID,
			nullInt64(normalize.BoxID(item.BoxID)),
			nullInt64(normalize.BoxNo(item.BoxNo)),
			nullString(item.Material),
			nullString(item.Weight),
			nullFloat64(normalize.WeightGrams(item.Weight)),
			nullString(item.Misc),
			item.JewelryPrice,
			item.MaterialPrice,
			item.TotalWeight,
			item.GemstoneWeight,
			item.MaterialWeight,
			nullString(item.BrandName),
			nullString(item.SubcategoryName),
			nullString(item.AccessoryComment),
			formatTime(now),
		)
		if err != nil {
			return 0, fmt.Errorf("insert item %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save calculation: %w", err)
	}

	s.logger.Info("Calculation saved",
		"calculation_id", calculationID,
		"user_id", userID,
		"items", len(items),
	)
	return calculationID, nil
}

// ListCalculations returns a user's calculations ordered by creation time
// descending, each annotated with its derived summary. Calculations with no
// items report zero-valued summaries, not NULLs.
func (s *Store) ListCalculations(ctx context.Context, userID int64, limit int) ([]*domain.CalculationListEntry, error) {
	query := `
		SELECT
			c.id,
			c.name,
			c.created_at,
			COALESCE(s.total_items, 0),
			COALESCE(s.total_value, 0),
			COALESCE(s.total_weight, 0),
			COALESCE(s.unique_boxes, 0),
			COALESCE(s.average_item_value, 0)
		FROM calculations c
		LEFT JOIN calculation_summaries_view s ON c.id = s.calculation_id
		WHERE c.user_id = ?
		ORDER BY c.created_at DESC`

	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.CalculationListEntry
	for rows.Next() {
		var e domain.CalculationListEntry
		var createdAt string
		if err := rows.Scan(
			&e.ID,
			&e.Name,
			&createdAt,
			&e.ItemCount,
			&e.TotalValue,
			&e.TotalWeight,
			&e.UniqueBoxes,
			&e.AverageItemValue,
		); err != nil {
			return nil, err
		}
		e.CreatedAt, err = parseTime(createdAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// GetCalculation returns a calculation with its summary and all items
// ordered by (box_id, box_no). A calculation owned by a different user is
// reported as not found; ids are never confirmed across users.
func (s *Store) GetCalculation(ctx context.Context, calculationID, userID int64) (*domain.CalculationDetail, error) {
	var detail domain.CalculationDetail
	var description sql.NullString
	var createdAt, updatedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT
			c.id, c.user_id, c.name, c.description, c.created_at, c.updated_at,
			COALESCE(s.total_items, 0),
			COALESCE(s.total_value, 0),
			COALESCE(s.total_weight, 0),
			COALESCE(s.unique_boxes, 0),
			COALESCE(s.average_item_value, 0)
		FROM calculations c
		LEFT JOIN calculation_summaries_view s ON c.id = s.calculation_id
		WHERE c.id = ? AND c.user_id = ?`,
		calculationID, userID,
	).Scan(
		&detail.ID,
		&detail.UserID,
		&detail.Name,
		&description,
		&createdAt,
		&updatedAt,
		&detail.Summary.ItemCount,
		&detail.Summary.TotalValue,
		&detail.Summary.TotalWeight,
		&detail.Summary.UniqueBoxes,
		&detail.Summary.AverageItemValue,
	)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	detail.Description = description.String
	detail.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	detail.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM calculation_items
		WHERE calculation_id = ?
		ORDER BY box_id, box_no`,
		calculationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		detail.Items = append(detail.Items, item)
	}
	return &detail, rows.Err()
}

// DeleteCalculation removes a calculation if it belongs to the user.
// Item rows go with it via the FK cascade. Returns whether a row was
// actually deleted.
func (s *Store) DeleteCalculation(ctx context.Context, calculationID, userID int64) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM calculations WHERE id = ? AND user_id = ?`,
		calculationID, userID,
	)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if n > 0 {
		s.logger.Info("Calculation deleted", "calculation_id", calculationID, "user_id", userID)
	}
	return n > 0, nil
}
