package normalize

import "testing"

func TestBoxIDNumeric(t *testing.T) {
	for raw, want := range map[string]int64{
		"101":    101,
		"0":      0,
		" 42 ":   42,
		"999999": 999999,
	} {
		got := BoxID(raw)
		if got == nil {
			t.Errorf("BoxID(%q) = nil, want %d", raw, want)
			continue
		}
		if *got != want {
			t.Errorf("BoxID(%q) = %d, want %d", raw, *got, want)
		}
	}
}

func TestBoxIDEmpty(t *testing.T) {
	if got := BoxID(""); got != nil {
		t.Errorf("BoxID(\"\") = %d, want nil", *got)
	}
	if got := BoxID("   "); got != nil {
		t.Errorf("BoxID(whitespace) = %d, want nil", *got)
	}
}

func TestBoxIDHashed(t *testing.T) {
	a := BoxID("TRAY-A")
	b := BoxID("TRAY-A")
	c := BoxID("TRAY-B")

	if a == nil || b == nil || c == nil {
		t.Fatal("non-empty labels must normalize to an id")
	}
	// Deterministic: the same label always maps to the same id.
	if *a != *b {
		t.Errorf("same label hashed to %d and %d", *a, *b)
	}
	// Bounded to the hash space.
	for _, v := range []*int64{a, c} {
		if *v < 0 || *v >= 999999 {
			t.Errorf("hashed id %d out of [0, 999999)", *v)
		}
	}
	if *a == *c {
		t.Logf("TRAY-A and TRAY-B collided at %d; allowed but unexpected", *a)
	}
}

func TestBoxIDMixedContent(t *testing.T) {
	// Anything not purely digits goes through the hash, decimals included.
	if got := BoxID("10.5"); got == nil || *got == 10 {
		t.Errorf("BoxID(10.5) = %v, want hashed id", got)
	}
}

func TestBoxNo(t *testing.T) {
	tests := []struct {
		raw  string
		want *int64
	}{
		{"3", int64p(3)},
		{"3.0", int64p(3)}, // spreadsheet float, truncated
		{"3.9", int64p(3)},
		{"", nil},
		{"abc", nil},
	}
	for _, tt := range tests {
		got := BoxNo(tt.raw)
		switch {
		case tt.want == nil && got != nil:
			t.Errorf("BoxNo(%q) = %d, want nil", tt.raw, *got)
		case tt.want != nil && got == nil:
			t.Errorf("BoxNo(%q) = nil, want %d", tt.raw, *tt.want)
		case tt.want != nil && got != nil && *got != *tt.want:
			t.Errorf("BoxNo(%q) = %d, want %d", tt.raw, *got, *tt.want)
		}
	}
}

func TestWeightGrams(t *testing.T) {
	if got := WeightGrams("10.5g"); got == nil || *got != 10.5 {
		t.Errorf("WeightGrams(10.5g) = %v, want 10.5", got)
	}
	// Unknown weight is nil, not zero.
	if got := WeightGrams("no weight"); got != nil {
		t.Errorf("WeightGrams(no weight) = %v, want nil", *got)
	}
	// A true zero stays a zero.
	if got := WeightGrams("0g"); got == nil || *got != 0 {
		t.Errorf("WeightGrams(0g) = %v, want 0", got)
	}
}

func int64p(v int64) *int64 { return &v }
