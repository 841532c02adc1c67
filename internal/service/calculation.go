package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mbjewelry/appraisal-server/internal/domain"
	domainerrors "github.com/mbjewelry/appraisal-server/internal/errors"
	"github.com/mbjewelry/appraisal-server/internal/pricing"
	"github.com/mbjewelry/appraisal-server/internal/store"
)

const (
	// defaultListLimit caps history listings when the client asks for
	// everything.
	defaultListLimit = 50
	maxListLimit     = 500

	// defaultMaxPerBox bounds box-group history depth per box.
	defaultMaxPerBox = 10
	maxMaxPerBox     = 100
)

// CalculationService manages persisted valuation runs.
type CalculationService struct {
	store     store.Store
	valuation *ValuationService
	logger    *slog.Logger
}

// NewCalculationService creates a calculation service.
func NewCalculationService(store store.Store, valuation *ValuationService, logger *slog.Logger) *CalculationService {
	return &CalculationService{
		store:     store,
		valuation: valuation,
		logger:    logger,
	}
}

// SaveRequest contains a batch to value and persist.
type SaveRequest struct {
	Name        string             `json:"calculation_name" validate:"omitempty,max=255"`
	Description string             `json:"description" validate:"omitempty,max=2000"`
	Items       []domain.RawItem   `json:"item_data" validate:"required"`
	Prices      []pricing.PriceRow `json:"price_data"`
}

// SaveResponse reports the persisted run.
type SaveResponse struct {
	CalculationID int64  `json:"calculation_id"`
	Name          string `json:"calculation_name"`
	ItemCount     int    `json:"item_count"`
}

// Save values the batch and persists it as one calculation. An empty name
// gets a timestamped default.
func (s *CalculationService) Save(ctx context.Context, userID int64, req SaveRequest) (*SaveResponse, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}
	if len(req.Items) == 0 {
		return nil, domainerrors.Validation("item_data is required")
	}
	if len(req.Items) > maxBatchItems {
		return nil, domainerrors.Validationf("item_data exceeds %d items", maxBatchItems)
	}

	name := req.Name
	if name == "" {
		name = "Calculation " + time.Now().Format("2006-01-02 15:04")
	}

	valued := s.valuation.Evaluate(req.Items, req.Prices)
	calculationID, err := s.store.SaveCalculation(ctx, userID, name, req.Description, valued)
	if err != nil {
		return nil, fmt.Errorf("save calculation: %w", err)
	}

	return &SaveResponse{
		CalculationID: calculationID,
		Name:          name,
		ItemCount:     len(valued),
	}, nil
}

// List returns the user's calculation history, newest first.
// limit <= 0 uses the default; oversized limits are clamped.
func (s *CalculationService) List(ctx context.Context, userID int64, limit int) ([]*domain.CalculationListEntry, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	entries, err := s.store.ListCalculations(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list calculations: %w", err)
	}
	if entries == nil {
		entries = []*domain.CalculationListEntry{}
	}
	return entries, nil
}

// Get returns one calculation with summary and items.
func (s *CalculationService) Get(ctx context.Context, calculationID, userID int64) (*domain.CalculationDetail, error) {
	detail, err := s.store.GetCalculation(ctx, calculationID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("calculation not found")
		}
		return nil, fmt.Errorf("get calculation: %w", err)
	}
	return detail, nil
}

// Delete removes a calculation and its items.
func (s *CalculationService) Delete(ctx context.Context, calculationID, userID int64) error {
	deleted, err := s.store.DeleteCalculation(ctx, calculationID, userID)
	if err != nil {
		return fmt.Errorf("delete calculation: %w", err)
	}
	if !deleted {
		return domainerrors.NotFound("calculation not found")
	}
	s.logger.Info("Calculation deleted", "calculation_id", calculationID, "user_id", userID)
	return nil
}

// UpdateItem applies a partial update to one item of a calculation.
// Unknown fields are ignored; an update with no applicable fields, a
// missing item, or another user's calculation all come back not-found.
func (s *CalculationService) UpdateItem(ctx context.Context, calculationID, itemID, userID int64, fields store.ItemUpdate) error {
	if len(fields) == 0 {
		return domainerrors.Validation("no fields to update")
	}
	updated, err := s.store.UpdateCalculationItem(ctx, calculationID, itemID, userID, fields)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if !updated {
		return domainerrors.NotFound("item not found or no updatable fields")
	}
	return nil
}

// Stats aggregates the user's activity.
func (s *CalculationService) Stats(ctx context.Context, userID int64) (*domain.UserStats, error) {
	stats, err := s.store.GetUserStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}

// BoxGroups returns the user's cross-calculation box history.
// maxPerBox <= 0 uses the default; oversized values are clamped.
func (s *CalculationService) BoxGroups(ctx context.Context, userID int64, maxPerBox int) ([]*domain.BoxGroup, error) {
	if maxPerBox <= 0 {
		maxPerBox = defaultMaxPerBox
	}
	if maxPerBox > maxMaxPerBox {
		maxPerBox = maxMaxPerBox
	}
	groups, err := s.store.GetBoxGroups(ctx, userID, maxPerBox)
	if err != nil {
		return nil, fmt.Errorf("get box groups: %w", err)
	}
	if groups == nil {
		groups = []*domain.BoxGroup{}
	}
	return groups, nil
}

// BoxGroupsByCalculation groups one calculation's items by box.
func (s *CalculationService) BoxGroupsByCalculation(ctx context.Context, calculationID, userID int64) ([]*domain.BoxGroup, error) {
	// Existence/ownership gate first so an empty calculation and a foreign
	// calculation don't look alike.
	if _, err := s.store.GetCalculation(ctx, calculationID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("calculation not found")
		}
		return nil, fmt.Errorf("get calculation: %w", err)
	}

	groups, err := s.store.GetBoxGroupsByCalculation(ctx, calculationID, userID)
	if err != nil {
		return nil, fmt.Errorf("get box groups: %w", err)
	}
	if groups == nil {
		groups = []*domain.BoxGroup{}
	}
	return groups, nil
}
