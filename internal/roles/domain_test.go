package roles

import (
	"testing"

	"github.com/atlasops/atlas-admin/internal/authz"
)

func TestEveryRoleHasADescription(t *testing.T) {
	for _, role := range authz.Roles() {
		if roleDescriptions[role] == "" {
			t.Errorf("role %s has no description", role)
		}
	}
}
