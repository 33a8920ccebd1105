package audit

import (
	"context"
	"errors"

	"github.com/atlasops/atlas-admin/internal/shared"
)

// Service coordinates audit log queries with pagination clamping.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Query returns one page of entries matching the filters, newest first.
// Page is clamped to >= 1 and pageSize to [1, 100].
func (s *Service) Query(ctx context.Context, filters Filters, page, pageSize int) (Result, error) {
	if s.repo == nil {
		return Result{}, errors.New("audit: repository not configured")
	}
	total, err := s.repo.Count(ctx, filters)
	if err != nil {
		return Result{}, err
	}
	pagination := shared.NewPagination(page, pageSize, total)
	entries := []Entry{}
	if total > 0 {
		entries, err = s.repo.Page(ctx, filters, pagination.PageSize, pagination.Offset())
		if err != nil {
			return Result{}, err
		}
		if entries == nil {
			entries = []Entry{}
		}
	}
	return Result{Entries: entries, Pagination: pagination}, nil
}

// Export applies the same filter logic without pagination, capped at
// ExportCap rows.
func (s *Service) Export(ctx context.Context, filters Filters) ([]Entry, error) {
	if s.repo == nil {
		return nil, errors.New("audit: repository not configured")
	}
	entries, err := s.repo.Page(ctx, filters, ExportCap, 0)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}
