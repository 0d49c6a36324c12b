package domain

import "testing"

func TestNavigation_StartsAtLandingRoute(t *testing.T) {
	for _, role := range []Role{RoleAdmin, RolePatient, RoleSuperadmin} {
		items := Navigation(role)
		if len(items) == 0 {
			t.Fatalf("%s: empty navigation", role)
		}
		if items[0].Path != LandingRoute(role) {
			t.Errorf("%s: first item %q, want landing %q", role, items[0].Path, LandingRoute(role))
		}
	}
}

func TestNavigation_PathsAreUnique(t *testing.T) {
	seen := map[string]Role{}
	for _, role := range []Role{RoleAdmin, RolePatient, RoleSuperadmin} {
		for _, it := range Navigation(role) {
			if other, ok := seen[it.Path]; ok {
				t.Errorf("path %s registered for both %s and %s", it.Path, other, role)
			}
			seen[it.Path] = role
		}
	}
}

func TestNavigation_UnknownRole(t *testing.T) {
	if got := Navigation("nutricionista"); len(got) != 0 {
		t.Fatalf("expected no navigation, got %v", got)
	}
}

func TestNavigation_ReturnsCopy(t *testing.T) {
	items := Navigation(RoleAdmin)
	items[0].Label = "changed"
	if Navigation(RoleAdmin)[0].Label != "Dashboard" {
		t.Fatalf("navigation table was mutated through the returned slice")
	}
}
