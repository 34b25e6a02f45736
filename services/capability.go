package services

import (
	"fmt"

	"procurement-management-api/models"
)

// Actor is the already-authenticated identity performing an operation.
// Authentication itself happens in middleware; services only consume the
// resolved identity and role.
type Actor struct {
	UserID   int
	Name     string
	RoleID   int
	RoleName string
	VendorID *int
	IP       string
}

// Capabilities are keyed on "action:subject" pairs, one check per operation,
// replacing per-call-site role comparisons.
var capabilities = map[string][]int{
	"create:requisition": {models.RoleStaff, models.RoleProcurementOfficer, models.RoleAdmin},
	"submit:requisition": {models.RoleStaff, models.RoleProcurementOfficer, models.RoleAdmin},
	"update:requisition": {models.RoleStaff, models.RoleProcurementOfficer, models.RoleAdmin},
	"hold:requisition":   {models.RoleProcurementOfficer, models.RoleAdmin},
	"cancel:requisition": {models.RoleProcurementOfficer, models.RoleAdmin},

	"approve:requisition": {models.RoleDeptHead, models.RoleFinanceManager, models.RoleDirector, models.RoleAdmin},

	"send:rfq":         {models.RoleProcurementOfficer, models.RoleAdmin},
	"cancel:rfq":       {models.RoleProcurementOfficer, models.RoleAdmin},
	"extend:rfq":       {models.RoleProcurementOfficer, models.RoleAdmin},
	"assign:committee": {models.RoleProcurementOfficer, models.RoleAdmin},
	"extend:scoring":   {models.RoleProcurementOfficer, models.RoleAdmin},

	"submit:quotation": {models.RoleVendor},

	"award:quotation": {models.RoleProcurementOfficer, models.RoleAdmin},
	"reset:award":     {models.RoleProcurementOfficer, models.RoleAdmin},
	"record:contract": {models.RoleProcurementOfficer, models.RoleAdmin},

	"issue:purchase_order":    {models.RoleProcurementOfficer, models.RoleAdmin},
	"receive:goods":           {models.RoleStaff, models.RoleProcurementOfficer, models.RoleAdmin},
	"override:match":          {models.RoleProcurementOfficer, models.RoleAdmin},
	"record:invoice":          {models.RoleProcurementOfficer, models.RoleAdmin},
	"approve_payment:invoice": {models.RoleFinanceManager, models.RoleAdmin},
	"dispute:invoice":         {models.RoleFinanceManager, models.RoleProcurementOfficer, models.RoleAdmin},
	"pay:invoice":             {models.RoleFinanceManager, models.RoleAdmin},

	"replace:approval_matrix": {models.RoleAdmin},
	"manage:vendor":           {models.RoleProcurementOfficer, models.RoleAdmin},
	"read:audit_log":          {models.RoleProcurementOfficer, models.RoleFinanceManager, models.RoleDirector, models.RoleAdmin},
}

// Can reports whether the role may perform action on subject.
func Can(roleID int, action, subject string) bool {
	allowed, ok := capabilities[action+":"+subject]
	if !ok {
		return false
	}
	for _, id := range allowed {
		if id == roleID {
			return true
		}
	}
	return false
}

// RequireCapability is the single authorization gate services call, once per
// operation.
func RequireCapability(actor Actor, action, subject string) error {
	if !Can(actor.RoleID, action, subject) {
		return authorizationf("role %q may not %s %s", actor.RoleName, action, subject)
	}
	return nil
}

// AllowedRoles exposes the capability table for route guards.
func AllowedRoles(action, subject string) []int {
	return capabilities[fmt.Sprintf("%s:%s", action, subject)]
}
