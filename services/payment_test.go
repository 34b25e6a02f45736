package services

import (
	"database/sql/driver"
	"regexp"
	"testing"

	"procurement-management-api/models"
)

func financeActor() Actor {
	return Actor{
		UserID:   42,
		Name:     "Carla Mendes",
		RoleID:   models.RoleFinanceManager,
		RoleName: "finance_manager",
	}
}

func TestProcessPaymentRejectsUnapprovedInvoiceAndRollsBack(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT GET_LOCK`),
			args:    []driver.Value{"invoice:7", int64(3)},
			columns: []string{"got"},
			rows:    [][]driver.Value{{int64(1)}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `invoices` WHERE invoice_id = \\?"),
			columns: []string{"invoice_id", "invoice_number", "po_id", "total_amount", "status"},
			rows:    [][]driver.Value{{int64(7), "INV-1001", int64(3), 120.50, "pending"}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT RELEASE_LOCK`),
			args:    []driver.Value{"invoice:7"},
			columns: []string{"released"},
			rows:    [][]driver.Value{{int64(1)}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewInvoiceService(db)

	_, err := svc.ProcessPayment(financeActor(), 7, "TX-1")
	if !IsKind[*PreconditionError](err) {
		t.Fatalf("expected PreconditionError, got %v", err)
	}

	commits, rollbacks := state.txCounts()
	if commits != 0 {
		t.Fatalf("expected no commit, got %d", commits)
	}
	if rollbacks != 1 {
		t.Fatalf("expected 1 rollback, got %d", rollbacks)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestProcessPaymentFailsFastWhenLockIsHeld(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT GET_LOCK`),
			args:    []driver.Value{"invoice:9", int64(3)},
			columns: []string{"got"},
			rows:    [][]driver.Value{{int64(0)}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewInvoiceService(db)

	_, err := svc.ProcessPayment(financeActor(), 9, "")
	if !IsKind[*ContentionError](err) {
		t.Fatalf("expected ContentionError, got %v", err)
	}

	commits, rollbacks := state.txCounts()
	if commits != 0 || rollbacks != 0 {
		t.Fatalf("expected no transaction activity, got commits=%d rollbacks=%d", commits, rollbacks)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestDisputeWritesAuditRowInsideTheTransaction(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT GET_LOCK`),
			args:    []driver.Value{"invoice:5", int64(3)},
			columns: []string{"got"},
			rows:    [][]driver.Value{{int64(1)}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `invoices` WHERE invoice_id = \\?"),
			columns: []string{"invoice_id", "invoice_number", "po_id", "total_amount", "status"},
			rows:    [][]driver.Value{{int64(5), "INV-2002", int64(3), 80.0, "pending"}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `invoices` SET .*dispute_reason.*status.* WHERE invoice_id = \\?"),
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `audit_logs`"),
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT RELEASE_LOCK`),
			args:    []driver.Value{"invoice:5"},
			columns: []string{"released"},
			rows:    [][]driver.Value{{int64(1)}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewInvoiceService(db)

	updated, err := svc.Dispute(financeActor(), 5, "short delivery")
	if err != nil {
		t.Fatalf("Dispute returned error: %v", err)
	}
	if updated.Status != models.InvoiceDisputed {
		t.Fatalf("expected disputed status, got %s", updated.Status)
	}

	commits, rollbacks := state.txCounts()
	if commits != 1 {
		t.Fatalf("expected 1 commit, got %d", commits)
	}
	if rollbacks != 0 {
		t.Fatalf("expected no rollback, got %d", rollbacks)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
