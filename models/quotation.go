package models

import "time"

type QuotationStatus string

const (
	QuotationSubmitted QuotationStatus = "submitted"
	QuotationRejected  QuotationStatus = "rejected"
	QuotationAwarded   QuotationStatus = "awarded"
)

// Quotation is one vendor's priced response to an RFQ. At most one row per
// (requisition_id, vendor_id) and at most one awarded row per requisition.
type Quotation struct {
	QuotationID   int             `gorm:"primaryKey;column:quotation_id" json:"quotation_id"`
	RequisitionID int             `gorm:"column:requisition_id;uniqueIndex:uq_req_vendor" json:"requisition_id"`
	VendorID      int             `gorm:"column:vendor_id;uniqueIndex:uq_req_vendor" json:"vendor_id"`
	TotalAmount   float64         `gorm:"column:total_amount" json:"total_amount"`
	Status        QuotationStatus `gorm:"column:status" json:"status"`
	Notes         *string         `gorm:"column:notes" json:"notes,omitempty"`
	CreatedAt     time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"column:updated_at" json:"updated_at"`

	// Relations
	Vendor *Vendor          `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Lines  []QuotationLine  `gorm:"foreignKey:QuotationID" json:"lines,omitempty"`
	Scores []CommitteeScore `gorm:"foreignKey:QuotationID" json:"scores,omitempty"`
}

// QuotationLine prices one requisition item.
type QuotationLine struct {
	LineID            int     `gorm:"primaryKey;column:line_id" json:"line_id"`
	QuotationID       int     `gorm:"column:quotation_id" json:"quotation_id"`
	RequisitionItemID int     `gorm:"column:requisition_item_id" json:"requisition_item_id"`
	UnitPrice         float64 `gorm:"column:unit_price" json:"unit_price"`
	LineTotal         float64 `gorm:"column:line_total" json:"line_total"`
}

// CommitteeScore is one member's evaluation of one quotation. Resubmission
// overwrites the existing row.
type CommitteeScore struct {
	ScoreID        int       `gorm:"primaryKey;column:score_id" json:"score_id"`
	QuotationID    int       `gorm:"column:quotation_id;uniqueIndex:uq_quote_member" json:"quotation_id"`
	MemberID       int       `gorm:"column:member_id;uniqueIndex:uq_quote_member" json:"member_id"`
	TechnicalScore float64   `gorm:"column:technical_score" json:"technical_score"`
	FinancialScore float64   `gorm:"column:financial_score" json:"financial_score"`
	Comment        *string   `gorm:"column:comment" json:"comment,omitempty"`
	ScoredAt       time.Time `gorm:"column:scored_at" json:"scored_at"`
}

// TableName overrides
func (Quotation) TableName() string {
	return "quotations"
}

func (QuotationLine) TableName() string {
	return "quotation_lines"
}

func (CommitteeScore) TableName() string {
	return "committee_scores"
}
