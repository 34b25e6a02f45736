package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
)

func TestDashboardCountsFilterSoftDeletedRequisitions(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT status, COUNT\\(\\*\\) as count FROM `requisitions` WHERE deleted_at IS NULL GROUP BY"),
			columns: []string{"status", "count"},
			rows:    [][]driver.Value{{"draft", int64(2)}, {"approved", int64(1)}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT status, COUNT\\(\\*\\) as count FROM `purchase_orders` GROUP BY"),
			columns: []string{"status", "count"},
			rows:    [][]driver.Value{{"issued", int64(1)}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT status, COUNT\\(\\*\\) as count FROM `invoices` GROUP BY"),
			columns: []string{"status", "count"},
			rows:    [][]driver.Value{{"pending", int64(3)}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT count\\(\\*\\) FROM `requisitions` WHERE status = \\? AND deleted_at IS NULL"),
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(1)}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT count\\(\\*\\) FROM `quotations` WHERE status = \\?"),
			columns: []string{"count(*)"},
			rows:    [][]driver.Value{{int64(4)}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewDashboardService(db)

	counts, err := svc.Counts()
	if err != nil {
		t.Fatalf("Counts returned error: %v", err)
	}
	if len(counts.Requisitions) != 2 {
		t.Fatalf("expected 2 requisition buckets, got %d", len(counts.Requisitions))
	}
	if counts.Requisitions[0].Status != "draft" || counts.Requisitions[0].Count != 2 {
		t.Fatalf("unexpected first requisition bucket: %+v", counts.Requisitions[0])
	}
	if counts.OpenRFQs != 1 {
		t.Fatalf("expected 1 open RFQ, got %d", counts.OpenRFQs)
	}
	if counts.PendingQuotations != 4 {
		t.Fatalf("expected 4 pending quotations, got %d", counts.PendingQuotations)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
