package services

import (
	"testing"

	"procurement-management-api/models"
)

func ptr(v float64) *float64 { return &v }

func threeTierMatrix() []models.ApprovalThreshold {
	return []models.ApprovalThreshold{
		{
			MinAmount: 0,
			MaxAmount: ptr(50000),
			Steps: []models.ApprovalStep{
				{StepOrder: 1, RoleName: "dept_head"},
			},
		},
		{
			MinAmount: 50000,
			MaxAmount: ptr(500000),
			Steps: []models.ApprovalStep{
				{StepOrder: 2, RoleName: "finance_manager"},
				{StepOrder: 1, RoleName: "dept_head"},
			},
		},
		{
			MinAmount: 500000,
			MaxAmount: nil,
			Steps: []models.ApprovalStep{
				{StepOrder: 1, RoleName: "dept_head"},
				{StepOrder: 2, RoleName: "finance_manager"},
				{StepOrder: 3, RoleName: "director"},
			},
		},
	}
}

func chainRoles(steps []models.ApprovalStep) []string {
	roles := make([]string, len(steps))
	for i, step := range steps {
		roles[i] = step.RoleName
	}
	return roles
}

func TestEvaluateApprovalChainSelectsBandAndOrdersSteps(t *testing.T) {
	matrix := threeTierMatrix()

	cases := []struct {
		name   string
		amount float64
		want   []string
	}{
		{"small purchase", 100, []string{"dept_head"}},
		{"zero amount falls in the lowest band", 0, []string{"dept_head"}},
		{"boundary amount belongs to the upper band", 50000, []string{"dept_head", "finance_manager"}},
		{"just below boundary stays in the lower band", 49999.99, []string{"dept_head"}},
		{"major purchase needs the full chain", 750000, []string{"dept_head", "finance_manager", "director"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			steps, err := EvaluateApprovalChain(tc.amount, matrix)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := chainRoles(steps)
			if len(got) != len(tc.want) {
				t.Fatalf("expected %d steps, got %d (%v)", len(tc.want), len(got), got)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("step %d: expected %s, got %s", i, tc.want[i], got[i])
				}
			}
		})
	}
}

func TestEvaluateApprovalChainFailsClosedOnMatrixHole(t *testing.T) {
	matrix := []models.ApprovalThreshold{
		{
			MinAmount: 0,
			MaxAmount: ptr(1000),
			Steps:     []models.ApprovalStep{{StepOrder: 1, RoleName: "dept_head"}},
		},
		{
			MinAmount: 5000,
			MaxAmount: nil,
			Steps:     []models.ApprovalStep{{StepOrder: 1, RoleName: "director"}},
		},
	}

	_, err := EvaluateApprovalChain(2500, matrix)
	if !IsKind[*ConfigurationError](err) {
		t.Fatalf("expected ConfigurationError for amount in the hole, got %v", err)
	}
}

func TestEvaluateApprovalChainFailsClosedAboveTopBoundedBand(t *testing.T) {
	matrix := []models.ApprovalThreshold{
		{
			MinAmount: 0,
			MaxAmount: ptr(1000),
			Steps:     []models.ApprovalStep{{StepOrder: 1, RoleName: "dept_head"}},
		},
	}

	_, err := EvaluateApprovalChain(1000, matrix)
	if !IsKind[*ConfigurationError](err) {
		t.Fatalf("expected ConfigurationError above top band, got %v", err)
	}
}

func TestEvaluateApprovalChainFailsClosedOnEmptySteps(t *testing.T) {
	matrix := []models.ApprovalThreshold{
		{MinAmount: 0, MaxAmount: nil},
	}

	_, err := EvaluateApprovalChain(10, matrix)
	if !IsKind[*ConfigurationError](err) {
		t.Fatalf("expected ConfigurationError for a band with no steps, got %v", err)
	}
}

func TestEvaluateApprovalChainRejectsNegativeAmount(t *testing.T) {
	_, err := EvaluateApprovalChain(-1, threeTierMatrix())
	if !IsKind[*ValidationError](err) {
		t.Fatalf("expected ValidationError for negative amount, got %v", err)
	}
}

func TestEvaluateApprovalChainRejectsEmptyMatrix(t *testing.T) {
	_, err := EvaluateApprovalChain(10, nil)
	if !IsKind[*ConfigurationError](err) {
		t.Fatalf("expected ConfigurationError for empty matrix, got %v", err)
	}
}

func TestValidateMatrix(t *testing.T) {
	cases := []struct {
		name    string
		inputs  []ThresholdInput
		wantErr bool
	}{
		{
			name: "contiguous bands are accepted",
			inputs: []ThresholdInput{
				{MinAmount: 0, MaxAmount: ptr(100), Roles: []string{"dept_head"}},
				{MinAmount: 100, MaxAmount: nil, Roles: []string{"director"}},
			},
		},
		{
			name: "single unbounded band is accepted",
			inputs: []ThresholdInput{
				{MinAmount: 0, MaxAmount: nil, Roles: []string{"dept_head"}},
			},
		},
		{
			name:    "empty matrix is rejected",
			inputs:  nil,
			wantErr: true,
		},
		{
			name: "matrix not starting at zero is rejected",
			inputs: []ThresholdInput{
				{MinAmount: 10, MaxAmount: nil, Roles: []string{"dept_head"}},
			},
			wantErr: true,
		},
		{
			name: "gap between bands is rejected",
			inputs: []ThresholdInput{
				{MinAmount: 0, MaxAmount: ptr(100), Roles: []string{"dept_head"}},
				{MinAmount: 200, MaxAmount: nil, Roles: []string{"director"}},
			},
			wantErr: true,
		},
		{
			name: "overlapping bands are rejected",
			inputs: []ThresholdInput{
				{MinAmount: 0, MaxAmount: ptr(300), Roles: []string{"dept_head"}},
				{MinAmount: 200, MaxAmount: nil, Roles: []string{"director"}},
			},
			wantErr: true,
		},
		{
			name: "unbounded band below the top is rejected",
			inputs: []ThresholdInput{
				{MinAmount: 0, MaxAmount: nil, Roles: []string{"dept_head"}},
				{MinAmount: 100, MaxAmount: ptr(200), Roles: []string{"director"}},
			},
			wantErr: true,
		},
		{
			name: "band without roles is rejected",
			inputs: []ThresholdInput{
				{MinAmount: 0, MaxAmount: nil},
			},
			wantErr: true,
		},
		{
			name: "band with max below min is rejected",
			inputs: []ThresholdInput{
				{MinAmount: 0, MaxAmount: ptr(100), Roles: []string{"dept_head"}},
				{MinAmount: 100, MaxAmount: ptr(100), Roles: []string{"director"}},
			},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateMatrix(tc.inputs)
			if tc.wantErr && err == nil {
				t.Fatal("expected an error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}
