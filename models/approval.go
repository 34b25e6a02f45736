package models

import "time"

// ApprovalThreshold is one spend band of the approval matrix. Bands are
// half-open [MinAmount, MaxAmount); a NULL MaxAmount means unbounded above.
// Together the active bands must partition the non-negative line.
type ApprovalThreshold struct {
	ThresholdID int       `gorm:"primaryKey;column:threshold_id" json:"threshold_id"`
	MinAmount   float64   `gorm:"column:min_amount" json:"min_amount"`
	MaxAmount   *float64  `gorm:"column:max_amount" json:"max_amount,omitempty"`
	Description *string   `gorm:"column:description" json:"description,omitempty"`
	CreateAt    time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt    time.Time `gorm:"column:update_at" json:"update_at"`

	Steps []ApprovalStep `gorm:"foreignKey:ThresholdID" json:"steps,omitempty"`
}

// ApprovalStep is one required approver role within a threshold band,
// satisfied in StepOrder.
type ApprovalStep struct {
	StepID      int    `gorm:"primaryKey;column:step_id" json:"step_id"`
	ThresholdID int    `gorm:"column:threshold_id" json:"threshold_id"`
	StepOrder   int    `gorm:"column:step_order" json:"step_order"`
	RoleName    string `gorm:"column:role_name" json:"role_name"`
}

// RequisitionApproval records one satisfied step of a requisition's chain.
type RequisitionApproval struct {
	ApprovalID    int       `gorm:"primaryKey;column:approval_id" json:"approval_id"`
	RequisitionID int       `gorm:"column:requisition_id" json:"requisition_id"`
	StepOrder     int       `gorm:"column:step_order" json:"step_order"`
	RoleName      string    `gorm:"column:role_name" json:"role_name"`
	ApproverID    int       `gorm:"column:approver_id" json:"approver_id"`
	Comment       *string   `gorm:"column:comment" json:"comment,omitempty"`
	DecidedAt     time.Time `gorm:"column:decided_at" json:"decided_at"`

	Approver *User `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
}

// TableName overrides
func (ApprovalThreshold) TableName() string {
	return "approval_thresholds"
}

func (ApprovalStep) TableName() string {
	return "approval_steps"
}

func (RequisitionApproval) TableName() string {
	return "requisition_approvals"
}
