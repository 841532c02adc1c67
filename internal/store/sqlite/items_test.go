package sqlite

import (
	"context"
	"testing"

	"github.com/mbjewelry/appraisal-server/internal/store"
)

func TestUpdateCalculationItem(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "alice")

	calcID, err := s.SaveCalculation(ctx, userID, "editable", "", testItems())
	if err != nil {
		t.Fatalf("save calculation: %v", err)
	}
	detail, err := s.GetCalculation(ctx, calcID, userID)
	if err != nil {
		t.Fatalf("get calculation: %v", err)
	}
	itemID := detail.Items[0].ID

	updated, err := s.UpdateCalculationItem(ctx, calcID, itemID, userID, store.ItemUpdate{
		"jewelry_price": 123456.0,
		"rank":          "A",
		"live":          true,
		"budget_lower":  50000.0,
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if !updated {
		t.Fatal("expected update to report true")
	}

	detail, err = s.GetCalculation(ctx, calcID, userID)
	if err != nil {
		t.Fatalf("re-get calculation: %v", err)
	}
	var found bool
	for _, item := range detail.Items {
		if item.ID != itemID {
			continue
		}
		found = true
		if item.JewelryPrice != 123456 {
			t.Errorf("jewelry_price = %v, want 123456", item.JewelryPrice)
		}
		if item.Rank == nil || *item.Rank != "A" {
			t.Errorf("rank = %v, want A", item.Rank)
		}
		if item.Live == nil || !*item.Live {
			t.Errorf("live = %v, want true", item.Live)
		}
		if item.BudgetLower == nil || *item.BudgetLower != 50000 {
			t.Errorf("budget_lower = %v, want 50000", item.BudgetLower)
		}
	}
	if !found {
		t.Fatalf("item %d not found after update", itemID)
	}

	// Summary reflects the edit on the next read.
	if detail.Summary.TotalValue == 119000 {
		t.Error("summary total value should change after a price edit")
	}
}

func TestUpdateCalculationItemDisallowedFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	userID := createTestUser(t, s, "alice")

	calcID, err := s.SaveCalculation(ctx, userID, "guarded", "", testItems())
	if err != nil {
		t.Fatalf("save calculation: %v", err)
	}
	detail, err := s.GetCalculation(ctx, calcID, userID)
	if err != nil {
		t.Fatalf("get calculation: %v", err)
	}
	itemID := detail.Items[0].ID

	// Identity fields and unknown fields are silently dropped; with nothing
	// left the update is a no-op, not an error.
	for _, fields := range []store.ItemUpdate{
		{"id": int64(999)},
		{"calculation_id": int64(999)},
		{"created_at": "2001-01-01T00:00:00Z"},
		{"no_such_column": "x"},
		{},
	} {
		updated, err := s.UpdateCalculationItem(ctx, calcID, itemID, userID, fields)
		if err != nil {
			t.Fatalf("update with %v: %v", fields, err)
		}
		if updated {
			t.Errorf("update with %v should report false", fields)
		}
	}

	// Mixed updates apply only the allowed part.
	updated, err := s.UpdateCalculationItem(ctx, calcID, itemID, userID, store.ItemUpdate{
		"id":   int64(999),
		"misc": "re-checked",
	})
	if err != nil {
		t.Fatalf("mixed update: %v", err)
	}
	if !updated {
		t.Fatal("mixed update should apply the allowed field")
	}
	detail, err = s.GetCalculation(ctx, calcID, userID)
	if err != nil {
		t.Fatalf("re-get calculation: %v", err)
	}
	for _, item := range detail.Items {
		if item.ID == itemID && item.Misc != "re-checked" {
			t.Errorf("misc = %q, want re-checked", item.Misc)
		}
		if item.ID == 999 {
			t.Error("identity field id must not be updatable")
		}
	}
}

func TestUpdateCalculationItemOwnership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := createTestUser(t, s, "alice")
	bob := createTestUser(t, s, "bob")

	calcID, err := s.SaveCalculation(ctx, alice, "private", "", testItems())
	if err != nil {
		t.Fatalf("save calculation: %v", err)
	}
	detail, err := s.GetCalculation(ctx, calcID, alice)
	if err != nil {
		t.Fatalf("get calculation: %v", err)
	}
	itemID := detail.Items[0].ID

	updated, err := s.UpdateCalculationItem(ctx, calcID, itemID, bob, store.ItemUpdate{
		"jewelry_price": 1.0,
	})
	if err != nil {
		t.Fatalf("cross-user update: %v", err)
	}
	if updated {
		t.Error("cross-user update should report false")
	}

	// The row is untouched.
	detail, err = s.GetCalculation(ctx, calcID, alice)
	if err != nil {
		t.Fatalf("re-get calculation: %v", err)
	}
	for _, item := range detail.Items {
		if item.ID == itemID && item.JewelryPrice == 1 {
			t.Error("cross-user update must not modify the item")
		}
	}

	// Wrong calculation id for a real item is also an ownership miss.
	updated, err = s.UpdateCalculationItem(ctx, calcID+1000, itemID, alice, store.ItemUpdate{
		"jewelry_price": 1.0,
	})
	if err != nil {
		t.Fatalf("wrong-calculation update: %v", err)
	}
	if updated {
		t.Error("wrong-calculation update should report false")
	}
}
