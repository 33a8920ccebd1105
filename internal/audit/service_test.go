package audit

import (
	"context"
	"testing"

	"github.com/atlasops/atlas-admin/internal/shared"
)

type stubRepo struct {
	total      int
	entries    []Entry
	lastLimit  int
	lastOffset int
	pageCalls  int
}

func (r *stubRepo) Count(ctx context.Context, filters Filters) (int, error) {
	return r.total, nil
}

func (r *stubRepo) Page(ctx context.Context, filters Filters, limit, offset int) ([]Entry, error) {
	r.pageCalls++
	r.lastLimit = limit
	r.lastOffset = offset
	return r.entries, nil
}

func TestQueryPagination(t *testing.T) {
	repo := &stubRepo{total: 41, entries: []Entry{{ID: 1}, {ID: 2}}}
	svc := NewService(repo)

	result, err := svc.Query(context.Background(), Filters{}, 3, 20)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if result.Pagination.TotalPages != 3 {
		t.Fatalf("expected 3 total pages, got %d", result.Pagination.TotalPages)
	}
	if repo.lastLimit != 20 || repo.lastOffset != 40 {
		t.Fatalf("expected limit 20 offset 40, got %d/%d", repo.lastLimit, repo.lastOffset)
	}
	if len(result.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(result.Entries))
	}
}

func TestQueryClampsPageInputs(t *testing.T) {
	repo := &stubRepo{total: 10}
	svc := NewService(repo)

	result, err := svc.Query(context.Background(), Filters{}, -4, 9999)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if result.Pagination.Page != 1 {
		t.Fatalf("expected page 1, got %d", result.Pagination.Page)
	}
	if result.Pagination.PageSize != shared.MaxPageSize {
		t.Fatalf("expected page size %d, got %d", shared.MaxPageSize, result.Pagination.PageSize)
	}
}

func TestQueryEmptySetSkipsPage(t *testing.T) {
	repo := &stubRepo{total: 0}
	svc := NewService(repo)

	result, err := svc.Query(context.Background(), Filters{}, 1, 20)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if repo.pageCalls != 0 {
		t.Fatal("expected no page query for an empty result set")
	}
	if result.Entries == nil {
		t.Fatal("entries must be an empty slice, not nil")
	}
}

func TestExportUsesCap(t *testing.T) {
	repo := &stubRepo{total: 50000}
	svc := NewService(repo)

	entries, err := svc.Export(context.Background(), Filters{})
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if repo.lastLimit != ExportCap || repo.lastOffset != 0 {
		t.Fatalf("expected limit %d offset 0, got %d/%d", ExportCap, repo.lastLimit, repo.lastOffset)
	}
	if entries == nil {
		t.Fatal("entries must be an empty slice, not nil")
	}
}
