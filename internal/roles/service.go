package roles

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasops/atlas-admin/internal/authz"
	"github.com/atlasops/atlas-admin/internal/shared"
)

// Service assembles the role catalogue from the static permission table and
// live membership counts.
type Service struct {
	pool *pgxpool.Pool
}

// NewService constructs a Service.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// List returns every role ordered from most to least privileged. Roles with
// no members still appear with a zero count.
func (s *Service) List(ctx context.Context) ([]RoleInfo, error) {
	counts, err := s.memberCounts(ctx)
	if err != nil {
		return nil, err
	}
	ordered := []authz.Role{authz.RoleAdmin, authz.RoleModerator, authz.RoleUser}
	infos := make([]RoleInfo, 0, len(ordered))
	for _, role := range ordered {
		infos = append(infos, RoleInfo{
			Name:        role,
			Description: roleDescriptions[role],
			Permissions: authz.PermissionsFor(role),
			UserCount:   counts[role],
		})
	}
	return infos, nil
}

// Get returns a single role by name.
func (s *Service) Get(ctx context.Context, name string) (RoleInfo, error) {
	role := authz.Role(name)
	if !role.Valid() {
		return RoleInfo{}, shared.ErrNotFound
	}
	counts, err := s.memberCounts(ctx)
	if err != nil {
		return RoleInfo{}, err
	}
	return RoleInfo{
		Name:        role,
		Description: roleDescriptions[role],
		Permissions: authz.PermissionsFor(role),
		UserCount:   counts[role],
	}, nil
}

func (s *Service) memberCounts(ctx context.Context) (map[authz.Role]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT role, COUNT(*) FROM user_roles GROUP BY role`)
	if err != nil {
		return nil, fmt.Errorf("roles: member counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[authz.Role]int64, 3)
	for rows.Next() {
		var (
			role  string
			count int64
		)
		if err := rows.Scan(&role, &count); err != nil {
			return nil, fmt.Errorf("roles: scan count: %w", err)
		}
		counts[authz.Role(role)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("roles: count rows: %w", err)
	}
	return counts, nil
}
