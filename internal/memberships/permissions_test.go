package memberships

import (
	"testing"

	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

func TestDefaultPermissionsOwnerHasAllFlags(t *testing.T) {
	perms := DefaultPermissions(enums.MemberRoleOwner)
	want := models.PermissionSet{
		CanAddExpenses:    true,
		CanEditExpenses:   true,
		CanDeleteExpenses: true,
		CanViewReports:    true,
		CanAddCars:        true,
		CanEditCars:       true,
		CanSellCars:       true,
	}
	if perms != want {
		t.Fatalf("owner permissions mismatch: %+v", perms)
	}
}

func TestDefaultPermissionsPartner(t *testing.T) {
	perms := DefaultPermissions(enums.MemberRolePartner)
	if !perms.CanAddExpenses || !perms.CanEditExpenses || !perms.CanViewReports {
		t.Fatalf("partner should add/edit expenses and view reports: %+v", perms)
	}
	if perms.CanDeleteExpenses || perms.CanAddCars || perms.CanEditCars || perms.CanSellCars {
		t.Fatalf("partner should not hold car or delete permissions: %+v", perms)
	}
}

func TestDefaultPermissionsViewerIsViewOnly(t *testing.T) {
	perms := DefaultPermissions(enums.MemberRoleViewer)
	if perms != (models.PermissionSet{CanViewReports: true}) {
		t.Fatalf("viewer should be view-only: %+v", perms)
	}
}

func TestDefaultPermissionsUnknownRoleIsEmpty(t *testing.T) {
	if perms := DefaultPermissions(enums.MemberRole("janitor")); perms != (models.PermissionSet{}) {
		t.Fatalf("unknown role should have no permissions: %+v", perms)
	}
}
