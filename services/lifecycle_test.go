package services

import (
	"database/sql/driver"
	"regexp"
	"testing"

	"procurement-management-api/models"
)

func deptHeadActor() Actor {
	return Actor{
		UserID:   8,
		Name:     "Anan Srisuwan",
		RoleID:   models.RoleDeptHead,
		RoleName: "dept_head",
	}
}

func TestCanTransitionMainlineFlow(t *testing.T) {
	allowed := []struct {
		from models.RequisitionStatus
		to   models.RequisitionStatus
	}{
		{models.ReqStatusDraft, models.ReqStatusPendingApproval},
		{models.ReqStatusPendingApproval, models.ReqStatusApproved},
		{models.ReqStatusApproved, models.ReqStatusRFQInProgress},
		{models.ReqStatusApproved, models.ReqStatusPOCreated},
		{models.ReqStatusRFQInProgress, models.ReqStatusApproved},
		{models.ReqStatusPOCreated, models.ReqStatusPartiallyDelivered},
		{models.ReqStatusPOCreated, models.ReqStatusDelivered},
		{models.ReqStatusPOCreated, models.ReqStatusInvoiced},
		{models.ReqStatusPartiallyDelivered, models.ReqStatusDelivered},
		{models.ReqStatusPartiallyDelivered, models.ReqStatusPartiallyDelivered},
		{models.ReqStatusDelivered, models.ReqStatusInvoiced},
		{models.ReqStatusInvoiced, models.ReqStatusApprovedForPayment},
		{models.ReqStatusApprovedForPayment, models.ReqStatusPaid},
	}
	for _, tc := range allowed {
		if !CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be allowed", tc.from, tc.to)
		}
	}

	forbidden := []struct {
		from models.RequisitionStatus
		to   models.RequisitionStatus
	}{
		{models.ReqStatusDraft, models.ReqStatusApproved},
		{models.ReqStatusDraft, models.ReqStatusPOCreated},
		{models.ReqStatusPendingApproval, models.ReqStatusRFQInProgress},
		{models.ReqStatusRFQInProgress, models.ReqStatusPOCreated},
		{models.ReqStatusDelivered, models.ReqStatusApprovedForPayment},
		{models.ReqStatusInvoiced, models.ReqStatusPaid},
		{models.ReqStatusPaid, models.ReqStatusDraft},
		{models.ReqStatusPaid, models.ReqStatusInvoiced},
		{models.ReqStatusCancelled, models.ReqStatusDraft},
		{models.ReqStatusApproved, models.ReqStatusDraft},
	}
	for _, tc := range forbidden {
		if CanTransition(tc.from, tc.to) {
			t.Errorf("expected %s -> %s to be rejected", tc.from, tc.to)
		}
	}
}

func TestTerminalStatusesHaveNoExit(t *testing.T) {
	everything := []models.RequisitionStatus{
		models.ReqStatusDraft,
		models.ReqStatusPendingApproval,
		models.ReqStatusApproved,
		models.ReqStatusRFQInProgress,
		models.ReqStatusPOCreated,
		models.ReqStatusPartiallyDelivered,
		models.ReqStatusDelivered,
		models.ReqStatusInvoiced,
		models.ReqStatusApprovedForPayment,
		models.ReqStatusPaid,
		models.ReqStatusCancelled,
	}

	for _, terminal := range []models.RequisitionStatus{models.ReqStatusPaid, models.ReqStatusCancelled} {
		if !terminal.IsTerminal() {
			t.Errorf("expected %s to be terminal", terminal)
		}
		for _, to := range everything {
			if CanTransition(terminal, to) {
				t.Errorf("terminal status %s must not transition to %s", terminal, to)
			}
		}
	}
}

func TestRecordApprovalRejectsWrongRoleAndRollsBack(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT GET_LOCK`),
			args:    []driver.Value{"req:11", int64(3)},
			columns: []string{"got"},
			rows:    [][]driver.Value{{int64(1)}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `requisitions` WHERE requisition_id = \\? AND deleted_at IS NULL"),
			columns: []string{"requisition_id", "requisition_number", "status", "requester_id", "total_amount"},
			rows:    [][]driver.Value{{int64(11), "REQ-20260831-AB12CD34", "pending_approval", int64(3), 120000.0}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `requisition_items`"),
			columns: []string{"item_id"},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `approval_thresholds` .*ORDER BY min_amount"),
			columns: []string{"threshold_id", "min_amount", "max_amount"},
			rows: [][]driver.Value{
				{int64(1), 0.0, 50000.0},
				{int64(2), 50000.0, nil},
			},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT .* FROM `approval_steps`"),
			columns: []string{"step_id", "threshold_id", "step_order", "role_name"},
			rows: [][]driver.Value{
				{int64(1), int64(1), int64(1), "dept_head"},
				{int64(2), int64(2), int64(1), "dept_head"},
				{int64(3), int64(2), int64(2), "finance_manager"},
			},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT count\\(\\*\\) FROM `requisition_approvals` WHERE requisition_id = \\?"),
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(1)}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT RELEASE_LOCK`),
			args:    []driver.Value{"req:11"},
			columns: []string{"released"},
			rows:    [][]driver.Value{{int64(1)}},
		},
	}
	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewLifecycleService(db)

	_, err := svc.RecordApproval(deptHeadActor(), 11, "looks fine")
	if !IsKind[*AuthorizationError](err) {
		t.Fatalf("expected AuthorizationError for out-of-order role, got %v", err)
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
