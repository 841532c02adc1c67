package sqlite

import (
	"context"
	"database/sql"

	"github.com/mbjewelry/appraisal-server/internal/domain"
)

// GetUserStats aggregates a user's activity across all calculations.
// A user with no history gets zeros and a nil last-calculation time,
// never an error.
func (s *Store) GetUserStats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	var stats domain.UserStats
	var lastCalculation sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(DISTINCT c.id),
			COUNT(DISTINCT ci.id),
			COALESCE(SUM(ci.jewelry_price), 0),
			MAX(c.created_at)
		FROM calculations c
		LEFT JOIN calculation_items ci ON c.id = ci.calculation_id
		WHERE c.user_id = ?`,
		userID,
	).Scan(
		&stats.TotalCalculations,
		&stats.TotalItems,
		&stats.TotalValue,
		&lastCalculation,
	)
	if err != nil {
		return nil, err
	}

	stats.LastCalculationAt, err = parseNullableTime(lastCalculation)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
