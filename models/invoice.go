package models

import "time"

type InvoiceStatus string

const (
	InvoicePending            InvoiceStatus = "pending"
	InvoiceApprovedForPayment InvoiceStatus = "approved_for_payment"
	InvoicePaid               InvoiceStatus = "paid"
	InvoiceDisputed           InvoiceStatus = "disputed"
)

type Invoice struct {
	InvoiceID        int           `gorm:"primaryKey;column:invoice_id" json:"invoice_id"`
	InvoiceNumber    string        `gorm:"column:invoice_number" json:"invoice_number"`
	POID             int           `gorm:"column:po_id" json:"po_id"`
	TotalAmount      float64       `gorm:"column:total_amount" json:"total_amount"`
	Status           InvoiceStatus `gorm:"column:status" json:"status"`
	InvoiceDate      time.Time     `gorm:"column:invoice_date" json:"invoice_date"`
	DisputeReason    *string       `gorm:"column:dispute_reason" json:"dispute_reason,omitempty"`
	PaidAt           *time.Time    `gorm:"column:paid_at" json:"paid_at,omitempty"`
	PaymentReference *string       `gorm:"column:payment_reference" json:"payment_reference,omitempty"`
	CreatedAt        time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

func (Invoice) TableName() string {
	return "invoices"
}
