package shared

import "testing"

func TestClampPage(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-5, 1},
		{0, 1},
		{1, 1},
		{7, 7},
	}
	for _, tc := range cases {
		if got := ClampPage(tc.in); got != tc.want {
			t.Errorf("ClampPage(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestClampPageSize(t *testing.T) {
	cases := []struct {
		in, want int
	}{
		{-1, DefaultPageSize},
		{0, DefaultPageSize},
		{1, 1},
		{50, 50},
		{100, 100},
		{101, MaxPageSize},
		{5000, MaxPageSize},
	}
	for _, tc := range cases {
		if got := ClampPageSize(tc.in); got != tc.want {
			t.Errorf("ClampPageSize(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestNewPaginationTotalPages(t *testing.T) {
	p := NewPagination(2, 20, 41)
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", p.TotalPages)
	}
	if p.Offset() != 20 {
		t.Fatalf("expected offset 20, got %d", p.Offset())
	}

	empty := NewPagination(1, 20, 0)
	if empty.TotalPages != 0 {
		t.Fatalf("expected 0 total pages for empty set, got %d", empty.TotalPages)
	}
}

func TestNewPaginationClampsInputs(t *testing.T) {
	p := NewPagination(0, 1000, 250)
	if p.Page != 1 {
		t.Fatalf("expected page 1, got %d", p.Page)
	}
	if p.PageSize != MaxPageSize {
		t.Fatalf("expected page size %d, got %d", MaxPageSize, p.PageSize)
	}
	if p.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", p.TotalPages)
	}
}
