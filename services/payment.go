package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"procurement-management-api/config"
	"procurement-management-api/models"

	"gorm.io/gorm"
)

// InvoiceService owns invoice status transitions. Paid is entered only
// through ProcessPayment, which stands at the boundary to the external
// payment collaborator and enforces its precondition.
type InvoiceService struct {
	db *gorm.DB
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db}
}

func loadInvoiceTx(tx *gorm.DB, id int) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := tx.Where("invoice_id = ?", id).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "invoice", ID: id}
		}
		return nil, err
	}
	return &invoice, nil
}

// InvoiceInput records a vendor invoice against a purchase order.
type InvoiceInput struct {
	InvoiceNumber string    `json:"invoice_number" binding:"required"`
	TotalAmount   float64   `json:"total_amount" binding:"required"`
	InvoiceDate   time.Time `json:"invoice_date" binding:"required"`
}

// Record stores a new invoice in pending. The owning requisition moves to
// invoiced on the first invoice.
func (s *InvoiceService) Record(actor Actor, poID int, input InvoiceInput) (*models.Invoice, error) {
	if err := RequireCapability(actor, "record", "invoice"); err != nil {
		return nil, err
	}
	if input.TotalAmount <= 0 {
		return nil, validationf("invoice amount must be positive")
	}
	if strings.TrimSpace(input.InvoiceNumber) == "" {
		return nil, validationf("invoice number is required")
	}

	var invoice models.Invoice
	err := withEntityTx(s.db, purchaseOrderLock(poID), func(tx *gorm.DB) error {
		po, err := loadPurchaseOrderTx(tx, poID)
		if err != nil {
			return err
		}
		if po.Status == models.POStatusCancelled {
			return preconditionf("purchase order %s is cancelled", po.PONumber)
		}

		var duplicate int64
		if err := tx.Model(&models.Invoice{}).
			Where("po_id = ? AND invoice_number = ?", poID, input.InvoiceNumber).
			Count(&duplicate).Error; err != nil {
			return err
		}
		if duplicate > 0 {
			return preconditionf("invoice %s is already recorded against %s", input.InvoiceNumber, po.PONumber)
		}

		now := time.Now()
		invoice = models.Invoice{
			InvoiceNumber: strings.TrimSpace(input.InvoiceNumber),
			POID:          poID,
			TotalAmount:   input.TotalAmount,
			Status:        models.InvoicePending,
			InvoiceDate:   input.InvoiceDate,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}

		var req models.Requisition
		if err := tx.Where("requisition_id = ?", po.RequisitionID).First(&req).Error; err == nil {
			if req.Status != models.ReqStatusInvoiced && CanTransition(req.Status, models.ReqStatusInvoiced) {
				if err := setStatusTx(tx, &req, models.ReqStatusInvoiced); err != nil {
					return err
				}
			}
		}

		details := fmt.Sprintf("%s amount=%.2f", invoice.InvoiceNumber, invoice.TotalAmount)
		return appendAudit(tx, actor, models.AuditActionInvoice, "invoice", invoice.InvoiceID, details)
	})
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// ApproveForPayment clears a pending invoice for payment. It consults the
// match engine first: payment clearance needs a matched verdict, either
// computed or manually overridden.
func (s *InvoiceService) ApproveForPayment(actor Actor, invoiceID int) (*models.Invoice, error) {
	if err := RequireCapability(actor, "approve_payment", "invoice"); err != nil {
		return nil, err
	}

	var updated *models.Invoice
	err := withEntityTx(s.db, invoiceLock(invoiceID), func(tx *gorm.DB) error {
		invoice, err := loadInvoiceTx(tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != models.InvoicePending {
			return preconditionf("invoice %s is %s, only pending invoices can be cleared", invoice.InvoiceNumber, invoice.Status)
		}

		po, err := loadPurchaseOrderTx(tx, invoice.POID)
		if err != nil {
			return err
		}
		var grns []models.GoodsReceiptNote
		if err := tx.Preload("Lines").Where("po_id = ?", po.POID).Find(&grns).Error; err != nil {
			return err
		}
		var invoices []models.Invoice
		if err := tx.Where("po_id = ?", po.POID).Find(&invoices).Error; err != nil {
			return err
		}
		verdict := ClassifyPurchaseOrder(po, grns, invoices, config.GetSettings().MatchAmountTolerance)
		if verdict.Verdict != MatchVerdictMatched {
			return preconditionf("three-way match for %s is %s, not matched", po.PONumber, verdict.Verdict)
		}

		now := time.Now()
		if err := tx.Model(&models.Invoice{}).
			Where("invoice_id = ?", invoiceID).
			Updates(map[string]interface{}{"status": models.InvoiceApprovedForPayment, "updated_at": now}).Error; err != nil {
			return err
		}
		invoice.Status = models.InvoiceApprovedForPayment
		updated = invoice

		var req models.Requisition
		if err := tx.Where("requisition_id = ?", po.RequisitionID).First(&req).Error; err == nil {
			if req.Status != models.ReqStatusApprovedForPayment && CanTransition(req.Status, models.ReqStatusApprovedForPayment) {
				if err := setStatusTx(tx, &req, models.ReqStatusApprovedForPayment); err != nil {
					return err
				}
			}
		}

		return appendAudit(tx, actor, models.AuditActionApprovePay, "invoice", invoiceID, invoice.InvoiceNumber)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Dispute flags an invoice. Disputed invoices drop out of the match
// engine's invoiced-amount sum until resolved.
func (s *InvoiceService) Dispute(actor Actor, invoiceID int, reason string) (*models.Invoice, error) {
	if err := RequireCapability(actor, "dispute", "invoice"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, validationf("a dispute reason is required")
	}

	var updated *models.Invoice
	err := withEntityTx(s.db, invoiceLock(invoiceID), func(tx *gorm.DB) error {
		invoice, err := loadInvoiceTx(tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status == models.InvoicePaid {
			return preconditionf("invoice %s is already paid", invoice.InvoiceNumber)
		}
		if invoice.Status == models.InvoiceDisputed {
			return preconditionf("invoice %s is already disputed", invoice.InvoiceNumber)
		}

		now := time.Now()
		trimmed := strings.TrimSpace(reason)
		if err := tx.Model(&models.Invoice{}).
			Where("invoice_id = ?", invoiceID).
			Updates(map[string]interface{}{
				"status":         models.InvoiceDisputed,
				"dispute_reason": trimmed,
				"updated_at":     now,
			}).Error; err != nil {
			return err
		}
		invoice.Status = models.InvoiceDisputed
		invoice.DisputeReason = &trimmed
		updated = invoice

		return appendAudit(tx, actor, models.AuditActionDispute, "invoice", invoiceID, trimmed)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ProcessPayment marks an approved invoice paid. Any other current status
// fails the precondition and leaves the invoice untouched. When every
// invoice on the PO is paid, the owning requisition closes as paid.
func (s *InvoiceService) ProcessPayment(actor Actor, invoiceID int, paymentReference string) (*models.Invoice, error) {
	if err := RequireCapability(actor, "pay", "invoice"); err != nil {
		return nil, err
	}

	var updated *models.Invoice
	err := withEntityTx(s.db, invoiceLock(invoiceID), func(tx *gorm.DB) error {
		invoice, err := loadInvoiceTx(tx, invoiceID)
		if err != nil {
			return err
		}
		if invoice.Status != models.InvoiceApprovedForPayment {
			return preconditionf("invoice %s is %s, not approved for payment", invoice.InvoiceNumber, invoice.Status)
		}

		now := time.Now()
		reference := strings.TrimSpace(paymentReference)
		if reference == "" {
			reference = newDocumentNumber("PAY")
		}
		if err := tx.Model(&models.Invoice{}).
			Where("invoice_id = ?", invoiceID).
			Updates(map[string]interface{}{
				"status":            models.InvoicePaid,
				"paid_at":           now,
				"payment_reference": reference,
				"updated_at":        now,
			}).Error; err != nil {
			return err
		}
		invoice.Status = models.InvoicePaid
		invoice.PaidAt = &now
		invoice.PaymentReference = &reference
		updated = invoice

		var outstanding int64
		if err := tx.Model(&models.Invoice{}).
			Where("po_id = ? AND status NOT IN ?", invoice.POID,
				[]models.InvoiceStatus{models.InvoicePaid, models.InvoiceDisputed}).
			Count(&outstanding).Error; err != nil {
			return err
		}
		if outstanding == 0 {
			var po models.PurchaseOrder
			if err := tx.Where("po_id = ?", invoice.POID).First(&po).Error; err == nil {
				var req models.Requisition
				if err := tx.Where("requisition_id = ?", po.RequisitionID).First(&req).Error; err == nil {
					if req.Status != models.ReqStatusPaid && CanTransition(req.Status, models.ReqStatusPaid) {
						if err := setStatusTx(tx, &req, models.ReqStatusPaid); err != nil {
							return err
						}
					}
				}
			}
		}

		return appendAudit(tx, actor, models.AuditActionPay, "invoice", invoiceID, reference)
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Get loads one invoice.
func (s *InvoiceService) Get(id int) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := s.db.Where("invoice_id = ?", id).First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "invoice", ID: id}
		}
		return nil, err
	}
	return &invoice, nil
}
