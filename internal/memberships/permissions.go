package memberships

import (
	"github.com/davidcalleja/garagebook-backend/pkg/db/models"
	"github.com/davidcalleja/garagebook-backend/pkg/enums"
)

// DefaultPermissions returns the permission flags a role grants at invite
// time. Roles only seed the flags; after that each flag is independent.
func DefaultPermissions(role enums.MemberRole) models.PermissionSet {
	switch role {
	case enums.MemberRoleOwner:
		return models.PermissionSet{
			CanAddExpenses:    true,
			CanEditExpenses:   true,
			CanDeleteExpenses: true,
			CanViewReports:    true,
			CanAddCars:        true,
			CanEditCars:       true,
			CanSellCars:       true,
		}
	case enums.MemberRolePartner:
		return models.PermissionSet{
			CanAddExpenses:  true,
			CanEditExpenses: true,
			CanViewReports:  true,
		}
	case enums.MemberRoleViewer:
		return models.PermissionSet{
			CanViewReports: true,
		}
	default:
		return models.PermissionSet{}
	}
}
