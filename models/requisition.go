package models

import "time"

// RequisitionStatus values cover the whole document lifecycle. Transitions
// between them are validated in services/lifecycle.go.
type RequisitionStatus string

const (
	ReqStatusDraft              RequisitionStatus = "draft"
	ReqStatusPendingApproval    RequisitionStatus = "pending_approval"
	ReqStatusApproved           RequisitionStatus = "approved"
	ReqStatusRFQInProgress      RequisitionStatus = "rfq_in_progress"
	ReqStatusPOCreated          RequisitionStatus = "po_created"
	ReqStatusPartiallyDelivered RequisitionStatus = "partially_delivered"
	ReqStatusDelivered          RequisitionStatus = "delivered"
	ReqStatusInvoiced           RequisitionStatus = "invoiced"
	ReqStatusApprovedForPayment RequisitionStatus = "approved_for_payment"
	ReqStatusPaid               RequisitionStatus = "paid"
	ReqStatusDisputed           RequisitionStatus = "disputed"
	ReqStatusOnHold             RequisitionStatus = "on_hold"
	ReqStatusCancelled          RequisitionStatus = "cancelled"
)

// Vendor scope for the RFQ phase.
const (
	VendorScopeAll      = "all"
	VendorScopeSelected = "selected"
)

type Requisition struct {
	RequisitionID     int                `gorm:"primaryKey;column:requisition_id" json:"requisition_id"`
	RequisitionNumber string             `gorm:"column:requisition_number;unique" json:"requisition_number"`
	Title             string             `gorm:"column:title" json:"title"`
	Department        string             `gorm:"column:department" json:"department"`
	Justification     string             `gorm:"column:justification" json:"justification"`
	Status            RequisitionStatus  `gorm:"column:status" json:"status"`
	PrevStatus        *RequisitionStatus `gorm:"column:prev_status" json:"prev_status,omitempty"`
	RequesterID       int                `gorm:"column:requester_id" json:"requester_id"`
	TotalAmount       float64            `gorm:"column:total_amount" json:"total_amount"`
	VendorScope       *string            `gorm:"column:vendor_scope" json:"vendor_scope,omitempty"`
	QuotationDeadline *time.Time         `gorm:"column:quotation_deadline" json:"quotation_deadline,omitempty"`
	ScoringDeadline   *time.Time         `gorm:"column:scoring_deadline" json:"scoring_deadline,omitempty"`
	CommitteeName     *string            `gorm:"column:committee_name" json:"committee_name,omitempty"`
	CommitteePurpose  *string            `gorm:"column:committee_purpose" json:"committee_purpose,omitempty"`
	NegotiationNotes  *string            `gorm:"column:negotiation_notes" json:"negotiation_notes,omitempty"`
	ContractFilePath  *string            `gorm:"column:contract_file_path" json:"contract_file_path,omitempty"`
	ContractUploadAt  *time.Time         `gorm:"column:contract_uploaded_at" json:"contract_uploaded_at,omitempty"`
	SubmittedAt       *time.Time         `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreatedAt         time.Time          `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time          `gorm:"column:updated_at" json:"updated_at"`
	DeletedAt         *time.Time         `gorm:"column:deleted_at" json:"deleted_at,omitempty"`

	// Relations
	Requester        *User                 `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Items            []RequisitionItem     `gorm:"foreignKey:RequisitionID" json:"items,omitempty"`
	AllowedVendors   []RequisitionVendor   `gorm:"foreignKey:RequisitionID" json:"allowed_vendors,omitempty"`
	CommitteeMembers []CommitteeMember     `gorm:"foreignKey:RequisitionID" json:"committee_members,omitempty"`
	Quotations       []Quotation           `gorm:"foreignKey:RequisitionID" json:"quotations,omitempty"`
	Approvals        []RequisitionApproval `gorm:"foreignKey:RequisitionID" json:"approvals,omitempty"`
}

type RequisitionItem struct {
	ItemID        int     `gorm:"primaryKey;column:item_id" json:"item_id"`
	RequisitionID int     `gorm:"column:requisition_id" json:"requisition_id"`
	Description   string  `gorm:"column:description" json:"description"`
	Quantity      int     `gorm:"column:quantity" json:"quantity"`
	UnitPrice     float64 `gorm:"column:unit_price" json:"unit_price"`
	LineTotal     float64 `gorm:"column:line_total" json:"line_total"`
	ItemOrder     int     `gorm:"column:item_order" json:"item_order"`
}

// RequisitionVendor is one allow-list row; present only when VendorScope is
// "selected".
type RequisitionVendor struct {
	ID            int `gorm:"primaryKey;column:id" json:"id"`
	RequisitionID int `gorm:"column:requisition_id" json:"requisition_id"`
	VendorID      int `gorm:"column:vendor_id" json:"vendor_id"`

	Vendor *Vendor `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
}

// Committee member types.
const (
	CommitteeMemberFinancial = "financial"
	CommitteeMemberTechnical = "technical"
)

type CommitteeMember struct {
	ID              int    `gorm:"primaryKey;column:id" json:"id"`
	RequisitionID   int    `gorm:"column:requisition_id" json:"requisition_id"`
	UserID          int    `gorm:"column:user_id" json:"user_id"`
	MemberType      string `gorm:"column:member_type" json:"member_type"`
	ScoresSubmitted bool   `gorm:"column:scores_submitted" json:"scores_submitted"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// IsTerminal reports whether no further transition is legal from s.
func (s RequisitionStatus) IsTerminal() bool {
	return s == ReqStatusCancelled || s == ReqStatusPaid
}

// TableName overrides
func (Requisition) TableName() string {
	return "requisitions"
}

func (RequisitionItem) TableName() string {
	return "requisition_items"
}

func (RequisitionVendor) TableName() string {
	return "requisition_vendors"
}

func (CommitteeMember) TableName() string {
	return "committee_members"
}
