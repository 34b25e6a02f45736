package models

import "time"

// Audit action tags. Closed set; new state-changing operations add a tag
// here rather than inventing free-form strings at call sites.
const (
	AuditActionCreate        = "create"
	AuditActionUpdate        = "update"
	AuditActionSubmit        = "submit"
	AuditActionApprove       = "approve"
	AuditActionReject        = "reject"
	AuditActionStatusChange  = "status_change"
	AuditActionSendRFQ       = "send_rfq"
	AuditActionCancelRFQ     = "cancel_rfq"
	AuditActionExtendRFQ     = "extend_rfq_deadline"
	AuditActionQuote         = "submit_quotation"
	AuditActionAssignPanel   = "assign_committee"
	AuditActionExtendScoring = "extend_scoring_deadline"
	AuditActionScore         = "submit_scores"
	AuditActionAward         = "award"
	AuditActionResetAward    = "reset_award"
	AuditActionContract      = "record_contract"
	AuditActionIssuePO       = "issue_po"
	AuditActionReceiveGoods  = "receive_goods"
	AuditActionMatchOverride = "match_override"
	AuditActionInvoice       = "record_invoice"
	AuditActionApprovePay    = "approve_for_payment"
	AuditActionDispute       = "dispute"
	AuditActionPay           = "pay"
	AuditActionReplaceMatrix = "replace_approval_matrix"
)

// AuditLog rows are append-only. They are created inside the same database
// transaction as the state change they describe and are never updated or
// deleted afterwards. Canonical read order is newest first.
type AuditLog struct {
	LogID      int       `gorm:"primaryKey;column:log_id" json:"log_id"`
	UserID     int       `gorm:"column:user_id" json:"user_id"`
	UserName   string    `gorm:"column:user_name" json:"user_name"`
	UserRole   string    `gorm:"column:user_role" json:"user_role"`
	Action     string    `gorm:"column:action" json:"action"`
	EntityType string    `gorm:"column:entity_type" json:"entity_type"`
	EntityID   int       `gorm:"column:entity_id" json:"entity_id"`
	Details    *string   `gorm:"column:details" json:"details,omitempty"`
	IPAddress  *string   `gorm:"column:ip_address" json:"ip_address,omitempty"`
	CreatedAt  time.Time `gorm:"column:created_at" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
