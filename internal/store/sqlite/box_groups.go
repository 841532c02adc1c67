package sqlite

import (
	"context"

	"github.com/mbjewelry/appraisal-server/internal/domain"
)

// boxGroupColumns selects the calculation context plus the full item
// snapshot for box-group queries. The item part must match scanItem.
const boxGroupColumns = `c.id, c.name, c.created_at,
	ci.id, ci.calculation_id, ci.box_id, ci.box_no, ci.material, ci.weight_text,
	ci.weight_grams, ci.misc, ci.jewelry_price, ci.material_price, ci.total_weight,
	ci.gemstone_weight, ci.material_weight, ci.brand_name, ci.subcategory_name,
	ci.accessory_comment, ci.budget_lower, ci.budget_upper, ci.budget_reserve,
	ci.frame_price, ci.side_stone_price, ci.live, ci.rank, ci.created_at`

// GetBoxGroups groups a user's items across all of their calculations by
// normalized box id, keeping for each box only the maxPerBox most recent
// entries ranked by (calculation created_at desc, item id desc). Items with
// no box are excluded. Groups come back ordered by box id ascending.
func (s *Store) GetBoxGroups(ctx context.Context, userID int64, maxPerBox int) ([]*domain.BoxGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+boxGroupColumns+` FROM (
			SELECT
				ci.*,
				ROW_NUMBER() OVER (
					PARTITION BY ci.box_id
					ORDER BY c.created_at DESC, ci.id DESC
				) AS rn
			FROM calculation_items ci
			JOIN calculations c ON ci.calculation_id = c.id
			WHERE c.user_id = ? AND ci.box_id IS NOT NULL
		) ci
		JOIN calculations c ON ci.calculation_id = c.id
		WHERE ci.rn <= ?
		ORDER BY ci.box_id, ci.rn`,
		userID, maxPerBox,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBoxGroups(rows)
}

// GetBoxGroupsByCalculation groups the items of a single calculation by
// box, ordered by box_no within each box. The calculation must belong to
// the user; no per-box cap applies since one calculation bounds the result.
func (s *Store) GetBoxGroupsByCalculation(ctx context.Context, calculationID, userID int64) ([]*domain.BoxGroup, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+boxGroupColumns+`
		FROM calculation_items ci
		JOIN calculations c ON ci.calculation_id = c.id
		WHERE c.id = ? AND c.user_id = ? AND ci.box_id IS NOT NULL
		ORDER BY ci.box_id, ci.box_no`,
		calculationID, userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectBoxGroups(rows)
}

// collectBoxGroups turns ordered (box_id ascending) rows into groups,
// preserving the per-box row order produced by the query.
func collectBoxGroups(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]*domain.BoxGroup, error) {
	var groups []*domain.BoxGroup
	var current *domain.BoxGroup

	for rows.Next() {
		entry, boxID, err := scanBoxGroupEntry(rows)
		if err != nil {
			return nil, err
		}
		if current == nil || current.BoxID != boxID {
			current = &domain.BoxGroup{BoxID: boxID}
			groups = append(groups, current)
		}
		current.Entries = append(current.Entries, entry)
	}
	return groups, rows.Err()
}

// scanBoxGroupEntry scans one joined row into an entry plus its box id.
func scanBoxGroupEntry(scanner interface{ Scan(dest ...any) error }) (*domain.BoxGroupEntry, int64, error) {
	var entry domain.BoxGroupEntry
	var calcCreatedAt string

	// The item columns are scanned through a wrapper so scanItem's column
	// order stays the single source of truth.
	item, err := scanItem(prefixScanner{
		scanner: scanner,
		prefix:  []any{&entry.CalculationID, &entry.CalculationName, &calcCreatedAt},
	})
	if err != nil {
		return nil, 0, err
	}

	entry.CreatedAt, err = parseTime(calcCreatedAt)
	if err != nil {
		return nil, 0, err
	}
	entry.Item = item

	if item.BoxID == nil {
		// Filtered out in SQL; guard anyway.
		return &entry, 0, nil
	}
	return &entry, *item.BoxID, nil
}

// prefixScanner prepends fixed destinations to a Scan call, letting item
// scanning reuse scanItem when item columns follow context columns.
type prefixScanner struct {
	scanner interface{ Scan(dest ...any) error }
	prefix  []any
}

func (p prefixScanner) Scan(dest ...any) error {
	return p.scanner.Scan(append(p.prefix, dest...)...)
}
