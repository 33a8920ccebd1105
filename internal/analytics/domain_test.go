package analytics

import (
	"math"
	"testing"
)

func TestPercentZeroTotal(t *testing.T) {
	if got := Percent(5, 0); got != 0 {
		t.Fatalf("zero total must yield 0, got %v", got)
	}
	if math.IsNaN(Percent(0, 0)) {
		t.Fatal("zero over zero must not be NaN")
	}
}

func TestPercentRoundsToTwoDecimals(t *testing.T) {
	cases := []struct {
		count, total int64
		want         float64
	}{
		{1, 3, 33.33},
		{2, 3, 66.67},
		{1, 1, 100},
		{0, 7, 0},
		{1, 8, 12.5},
	}
	for _, tc := range cases {
		if got := Percent(tc.count, tc.total); got != tc.want {
			t.Errorf("Percent(%d, %d) = %v, want %v", tc.count, tc.total, got, tc.want)
		}
	}
}

func TestBreakdownFromCounts(t *testing.T) {
	slices := BreakdownFromCounts(map[string]int64{
		"auth":   50,
		"user":   30,
		"system": 20,
	})
	if len(slices) != 3 {
		t.Fatalf("expected 3 slices, got %d", len(slices))
	}
	if slices[0].Category != "auth" || slices[2].Category != "system" {
		t.Fatalf("expected descending count order, got %v", slices)
	}
	if slices[0].Label != "Auth" {
		t.Fatalf("expected title-cased label, got %q", slices[0].Label)
	}

	var sum float64
	for _, s := range slices {
		sum += s.Percent
	}
	if math.Abs(sum-100) > 0.05 {
		t.Fatalf("percentages should sum to ~100, got %v", sum)
	}
}

func TestBreakdownTieBreaksByCategory(t *testing.T) {
	slices := BreakdownFromCounts(map[string]int64{"user": 10, "auth": 10})
	if slices[0].Category != "auth" {
		t.Fatalf("ties must order by category name, got %v", slices)
	}
}

func TestBreakdownEmpty(t *testing.T) {
	slices := BreakdownFromCounts(nil)
	if len(slices) != 0 {
		t.Fatalf("expected no slices, got %d", len(slices))
	}
}
