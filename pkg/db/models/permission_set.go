package models

// PermissionSet is the independent permission flags attached to a membership.
// Roles only supply defaults at invite time; after that each flag stands on
// its own.
type PermissionSet struct {
	CanAddExpenses    bool `gorm:"column:can_add_expenses;not null;default:false" json:"can_add_expenses"`
	CanEditExpenses   bool `gorm:"column:can_edit_expenses;not null;default:false" json:"can_edit_expenses"`
	CanDeleteExpenses bool `gorm:"column:can_delete_expenses;not null;default:false" json:"can_delete_expenses"`
	CanViewReports    bool `gorm:"column:can_view_reports;not null;default:false" json:"can_view_reports"`
	CanAddCars        bool `gorm:"column:can_add_cars;not null;default:false" json:"can_add_cars"`
	CanEditCars       bool `gorm:"column:can_edit_cars;not null;default:false" json:"can_edit_cars"`
	CanSellCars       bool `gorm:"column:can_sell_cars;not null;default:false" json:"can_sell_cars"`
}
