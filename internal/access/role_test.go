package access

import "testing"

func TestRoleTiersAreStrictlyNested(t *testing.T) {
	endUser := PermissionsFor(RoleEndUser)
	admin := PermissionsFor(RoleAdmin)
	superAdmin := PermissionsFor(RoleSuperAdmin)

	isSuperset := func(big, small map[Permission]struct{}) bool {
		for p := range small {
			if _, ok := big[p]; !ok {
				return false
			}
		}
		return true
	}

	if !isSuperset(admin, endUser) {
		t.Fatal("admin must be a superset of end_user")
	}
	if !isSuperset(superAdmin, admin) {
		t.Fatal("super_admin must be a superset of admin")
	}
	if len(admin) <= len(endUser) || len(superAdmin) <= len(admin) {
		t.Fatalf("tiers must be strict supersets: %d/%d/%d", len(endUser), len(admin), len(superAdmin))
	}
}

func TestPermissionsForReturnsCopy(t *testing.T) {
	first := PermissionsFor(RoleEndUser)
	delete(first, PermExecuteTask)

	second := PermissionsFor(RoleEndUser)
	if _, ok := second[PermExecuteTask]; !ok {
		t.Fatal("mutating a returned set must not affect the catalog")
	}
}

func TestParseRole(t *testing.T) {
	if role, ok := ParseRole("  Super_Admin "); !ok || role != RoleSuperAdmin {
		t.Fatalf("ParseRole failed to normalize: %v %v", role, ok)
	}
	if _, ok := ParseRole("root"); ok {
		t.Fatal("unknown role must not parse")
	}
}
