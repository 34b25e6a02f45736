package services

import (
	"strings"
	"testing"

	"procurement-management-api/models"
)

func TestCanChecksRolePerAction(t *testing.T) {
	if !Can(models.RoleVendor, "submit", "quotation") {
		t.Error("vendors must be able to submit quotations")
	}
	if Can(models.RoleStaff, "submit", "quotation") {
		t.Error("staff must not submit quotations")
	}
	if !Can(models.RoleAdmin, "replace", "approval_matrix") {
		t.Error("admin must be able to replace the approval matrix")
	}
	if Can(models.RoleProcurementOfficer, "replace", "approval_matrix") {
		t.Error("procurement officers must not replace the approval matrix")
	}
	if Can(models.RoleAdmin, "unknown", "thing") {
		t.Error("unknown capabilities must be denied")
	}
}

func TestRequireCapabilityReturnsAuthorizationError(t *testing.T) {
	actor := Actor{UserID: 1, RoleID: models.RoleStaff, RoleName: "staff"}
	err := RequireCapability(actor, "pay", "invoice")
	if !IsKind[*AuthorizationError](err) {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestNewDocumentNumberCarriesPrefixAndDate(t *testing.T) {
	number := newDocumentNumber("REQ")
	if !strings.HasPrefix(number, "REQ-") {
		t.Fatalf("expected REQ- prefix, got %s", number)
	}
	parts := strings.Split(number, "-")
	if len(parts) != 3 {
		t.Fatalf("expected three segments, got %s", number)
	}
	if len(parts[1]) != 8 {
		t.Fatalf("expected yyyymmdd date segment, got %s", parts[1])
	}
	if newDocumentNumber("REQ") == number {
		t.Fatal("expected document numbers to be unique")
	}
}
