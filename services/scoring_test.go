package services

import (
	"testing"
	"time"

	"procurement-management-api/models"
)

func members(submitted ...bool) []models.CommitteeMember {
	out := make([]models.CommitteeMember, len(submitted))
	for i, s := range submitted {
		out[i] = models.CommitteeMember{ID: i + 1, UserID: 100 + i, ScoresSubmitted: s}
	}
	return out
}

func TestEvaluateReadiness(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	cases := []struct {
		name       string
		members    []models.CommitteeMember
		deadline   *time.Time
		requireAll bool
		wantReady  bool
		wantRule   string
	}{
		{
			name:      "all submitted before deadline",
			members:   members(true, true, true),
			deadline:  &future,
			wantReady: true,
			wantRule:  ReadinessAllSubmitted,
		},
		{
			name:      "all submitted with no deadline set",
			members:   members(true, true),
			wantReady: true,
			wantRule:  ReadinessAllSubmitted,
		},
		{
			name:     "partial submission before deadline blocks",
			members:  members(true, false),
			deadline: &future,
		},
		{
			name:      "lapsed deadline permits award by default",
			members:   members(true, false),
			deadline:  &past,
			wantReady: true,
			wantRule:  ReadinessDeadlineElapsed,
		},
		{
			name:       "lapsed deadline blocks when full submission is required",
			members:    members(true, false),
			deadline:   &past,
			requireAll: true,
		},
		{
			name:       "lapsed deadline with full submission passes even in strict mode",
			members:    members(true, true),
			deadline:   &past,
			requireAll: true,
			wantReady:  true,
			wantRule:   ReadinessAllSubmitted,
		},
		{
			name:    "no committee assigned never ready",
			members: nil,
		},
		{
			name:    "partial submission with no deadline blocks",
			members: members(false, true, false),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := evaluateReadiness(tc.members, tc.deadline, now, tc.requireAll)
			if got.Ready != tc.wantReady {
				t.Fatalf("expected ready=%v, got %v (%s)", tc.wantReady, got.Ready, got.Reason)
			}
			if got.Rule != tc.wantRule {
				t.Fatalf("expected rule %q, got %q", tc.wantRule, got.Rule)
			}
			if got.TotalMembers != len(tc.members) {
				t.Fatalf("expected %d members, got %d", len(tc.members), got.TotalMembers)
			}
		})
	}
}

func TestEvaluateReadinessCountsSubmissions(t *testing.T) {
	got := evaluateReadiness(members(true, false, true), nil, time.Now(), false)
	if got.SubmittedCount != 2 {
		t.Fatalf("expected 2 submitted, got %d", got.SubmittedCount)
	}
	if got.Ready {
		t.Fatal("expected not ready with a member outstanding")
	}
}
