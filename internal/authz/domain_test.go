package authz

import "testing"

func permSet(role Role) map[Permission]bool {
	set := make(map[Permission]bool)
	for _, p := range PermissionsFor(role) {
		set[p] = true
	}
	return set
}

func TestRolePermissionNesting(t *testing.T) {
	admin := permSet(RoleAdmin)
	moderator := permSet(RoleModerator)
	user := permSet(RoleUser)

	for p := range moderator {
		if !admin[p] {
			t.Errorf("admin missing moderator permission %s", p)
		}
	}
	for p := range user {
		if !moderator[p] {
			t.Errorf("moderator missing user permission %s", p)
		}
	}
	if len(admin) != len(AllPermissions()) {
		t.Fatalf("admin holds %d permissions, want the full set of %d", len(admin), len(AllPermissions()))
	}
}

func TestPermissionsForUnknownRole(t *testing.T) {
	if perms := PermissionsFor(Role("superuser")); len(perms) != 0 {
		t.Fatalf("unknown role granted %d permissions", len(perms))
	}
}

func TestPermissionsForReturnsCopy(t *testing.T) {
	perms := PermissionsFor(RoleUser)
	if len(perms) == 0 {
		t.Fatal("expected at least one permission")
	}
	perms[0] = Permission("tampered")
	if PermissionsFor(RoleUser)[0] == Permission("tampered") {
		t.Fatal("mutating the returned slice must not affect the table")
	}
}

func TestRoleAtLeast(t *testing.T) {
	if !RoleAdmin.AtLeast(RoleModerator) {
		t.Fatal("admin must satisfy a moderator requirement")
	}
	if RoleUser.AtLeast(RoleModerator) {
		t.Fatal("user must not satisfy a moderator requirement")
	}
	if Role("ghost").AtLeast(RoleUser) {
		t.Fatal("unknown roles rank below everything")
	}
}

func TestSuspendedPrincipalHoldsNothing(t *testing.T) {
	p := &Principal{ID: 1, Role: RoleAdmin, Status: StatusSuspended}
	for _, perm := range AllPermissions() {
		if p.Can(perm) {
			t.Fatalf("suspended admin must not hold %s", perm)
		}
	}
}

func TestNilPrincipalCanNothing(t *testing.T) {
	var p *Principal
	if p.Can(PermViewDashboard) {
		t.Fatal("nil principal must hold no permissions")
	}
}
