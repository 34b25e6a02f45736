package services

import (
	"errors"
	"fmt"
	"time"

	"procurement-management-api/config"
	"procurement-management-api/models"

	"gorm.io/gorm"
)

// POService owns purchase orders, goods receipts, and the PO status writes
// that follow receipt events. The match engine itself (match.go) only
// classifies; this service applies its side effects once per receipt.
type POService struct {
	db *gorm.DB
}

func NewPOService(db *gorm.DB) *POService {
	return &POService{db: db}
}

func loadPurchaseOrderTx(tx *gorm.DB, id int) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_order ASC") }).
		Where("po_id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "purchase order", ID: id}
		}
		return nil, err
	}
	return &po, nil
}

// Issue forms a purchase order from the awarded quotation. The requisition
// must be approved post-award: holding exactly one awarded quotation is what
// authorizes the PO, and the awarded prices are copied onto the PO lines.
func (s *POService) Issue(actor Actor, reqID int) (*models.PurchaseOrder, error) {
	if err := RequireCapability(actor, "issue", "purchase_order"); err != nil {
		return nil, err
	}

	var poID int
	err := withEntityTx(s.db, requisitionLock(reqID), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, reqID)
		if err != nil {
			return err
		}
		if req.Status != models.ReqStatusApproved {
			return preconditionf("requisition %s must be approved (post-award), currently %s", req.RequisitionNumber, req.Status)
		}

		var winner models.Quotation
		err = tx.Preload("Lines").
			Where("requisition_id = ? AND status = ?", reqID, models.QuotationAwarded).
			First(&winner).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return preconditionf("requisition %s has no awarded quotation", req.RequisitionNumber)
			}
			return err
		}

		var existing int64
		if err := tx.Model(&models.PurchaseOrder{}).
			Where("requisition_id = ? AND status <> ?", reqID, models.POStatusCancelled).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return preconditionf("requisition %s already has an open purchase order", req.RequisitionNumber)
		}

		priceByItem := make(map[int]float64, len(winner.Lines))
		for _, line := range winner.Lines {
			priceByItem[line.RequisitionItemID] = line.UnitPrice
		}

		now := time.Now()
		po := models.PurchaseOrder{
			PONumber:      newDocumentNumber("PO"),
			RequisitionID: reqID,
			VendorID:      winner.VendorID,
			TotalAmount:   winner.TotalAmount,
			Status:        models.POStatusPending,
			IssuedBy:      actor.UserID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := tx.Create(&po).Error; err != nil {
			return err
		}
		poID = po.POID

		for i, item := range req.Items {
			price, ok := priceByItem[item.ItemID]
			if !ok {
				return configurationf("awarded quotation does not price requisition item %d", item.ItemID)
			}
			poItem := models.PurchaseOrderItem{
				POID:            po.POID,
				Description:     item.Description,
				OrderedQuantity: item.Quantity,
				UnitPrice:       price,
				ItemOrder:       i + 1,
			}
			if err := tx.Create(&poItem).Error; err != nil {
				return err
			}
		}

		if err := setStatusTx(tx, req, models.ReqStatusPOCreated); err != nil {
			return err
		}

		details := fmt.Sprintf("%s vendor=%d total=%.2f", po.PONumber, po.VendorID, po.TotalAmount)
		return appendAudit(tx, actor, models.AuditActionIssuePO, "purchase_order", po.POID, details)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(poID)
}

// Get loads one purchase order with items, receipts, and invoices.
func (s *POService) Get(id int) (*models.PurchaseOrder, error) {
	var po models.PurchaseOrder
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_order ASC") }).
		Preload("Vendor").
		Preload("Receipts.Lines").
		Preload("Receipts.Receiver").
		Preload("Invoices").
		Where("po_id = ?", id).First(&po).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "purchase order", ID: id}
		}
		return nil, err
	}
	return &po, nil
}

// List returns purchase orders, optionally filtered by status.
func (s *POService) List(status string) ([]models.PurchaseOrder, error) {
	query := s.db.Preload("Vendor").Preload("Items")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var pos []models.PurchaseOrder
	if err := query.Order("po_id DESC").Find(&pos).Error; err != nil {
		return nil, err
	}
	return pos, nil
}

// ReceiptLineInput records one received line.
type ReceiptLineInput struct {
	POItemID int `json:"po_item_id" binding:"required"`
	Quantity int `json:"quantity" binding:"required"`
}

// RecordGoodsReceipt creates an immutable GRN and advances the PO's
// delivery status. Over-receipt beyond the ordered quantity is rejected;
// a correction is a new GRN, never an edit of an old one.
func (s *POService) RecordGoodsReceipt(actor Actor, poID int, lines []ReceiptLineInput) (*models.GoodsReceiptNote, models.POStatus, error) {
	if err := RequireCapability(actor, "receive", "goods"); err != nil {
		return nil, "", err
	}
	if len(lines) == 0 {
		return nil, "", validationf("goods receipt needs at least one line")
	}

	var grn models.GoodsReceiptNote
	var newStatus models.POStatus
	err := withEntityTx(s.db, purchaseOrderLock(poID), func(tx *gorm.DB) error {
		po, err := loadPurchaseOrderTx(tx, poID)
		if err != nil {
			return err
		}
		if po.Status == models.POStatusCancelled {
			return preconditionf("purchase order %s is cancelled", po.PONumber)
		}
		if po.Status == models.POStatusDelivered || po.Status == models.POStatusMatched {
			return preconditionf("purchase order %s is already fully delivered", po.PONumber)
		}

		itemsByID := make(map[int]*models.PurchaseOrderItem, len(po.Items))
		for i := range po.Items {
			itemsByID[po.Items[i].POItemID] = &po.Items[i]
		}

		seen := make(map[int]bool, len(lines))
		for _, line := range lines {
			item, ok := itemsByID[line.POItemID]
			if !ok {
				return validationf("line references unknown PO item %d", line.POItemID)
			}
			if seen[line.POItemID] {
				return validationf("PO item %d appears twice in the receipt", line.POItemID)
			}
			seen[line.POItemID] = true
			if line.Quantity <= 0 {
				return validationf("received quantity for item %d must be positive", line.POItemID)
			}
			if item.ReceivedQuantity+line.Quantity > item.OrderedQuantity {
				return validationf("receiving %d of item %d would exceed the ordered quantity %d",
					line.Quantity, line.POItemID, item.OrderedQuantity)
			}
		}

		now := time.Now()
		grn = models.GoodsReceiptNote{
			GRNNumber:  newDocumentNumber("GRN"),
			POID:       poID,
			ReceiverID: actor.UserID,
			ReceivedAt: now,
			CreatedAt:  now,
		}
		if err := tx.Create(&grn).Error; err != nil {
			return err
		}

		for _, line := range lines {
			row := models.GoodsReceiptLine{GRNID: grn.GRNID, POItemID: line.POItemID, Quantity: line.Quantity}
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
			item := itemsByID[line.POItemID]
			item.ReceivedQuantity += line.Quantity
			if err := tx.Model(&models.PurchaseOrderItem{}).
				Where("po_item_id = ?", line.POItemID).
				Update("received_quantity", item.ReceivedQuantity).Error; err != nil {
				return err
			}
		}

		newStatus = derivePOStatus(po.Items)
		if newStatus != po.Status {
			if err := tx.Model(&models.PurchaseOrder{}).
				Where("po_id = ?", poID).
				Updates(map[string]interface{}{"status": newStatus, "updated_at": now}).Error; err != nil {
				return err
			}
		}

		// Mirror the delivery state onto the owning requisition.
		var req models.Requisition
		if err := tx.Where("requisition_id = ?", po.RequisitionID).First(&req).Error; err == nil {
			var target models.RequisitionStatus
			switch newStatus {
			case models.POStatusDelivered:
				target = models.ReqStatusDelivered
			case models.POStatusPartiallyDelivered:
				target = models.ReqStatusPartiallyDelivered
			}
			if target != "" && req.Status != target && CanTransition(req.Status, target) {
				if err := setStatusTx(tx, &req, target); err != nil {
					return err
				}
			}
		}

		details := fmt.Sprintf("%s lines=%d po_status=%s", grn.GRNNumber, len(lines), newStatus)
		return appendAudit(tx, actor, models.AuditActionReceiveGoods, "purchase_order", poID, details)
	})
	if err != nil {
		return nil, "", err
	}

	if err := s.db.Preload("Lines").First(&grn, grn.GRNID).Error; err != nil {
		return nil, "", err
	}
	return &grn, newStatus, nil
}

// Match runs the three-way match read-only: it joins the PO with its GRNs
// and invoices and classifies without touching any of them.
func (s *POService) Match(poID int) (*MatchResult, error) {
	po, err := s.Get(poID)
	if err != nil {
		return nil, err
	}
	tolerance := config.GetSettings().MatchAmountTolerance
	result := ClassifyPurchaseOrder(po, po.Receipts, po.Invoices, tolerance)
	return &result, nil
}

// OverrideMatch forces a mismatched PO to matched. The engine never
// fabricates agreement on its own, so the override demands a reason and
// leaves an explicit audit entry naming the verdict it overrode.
func (s *POService) OverrideMatch(actor Actor, poID int, reason string) (*models.PurchaseOrder, error) {
	if err := RequireCapability(actor, "override", "match"); err != nil {
		return nil, err
	}
	if reason == "" {
		return nil, validationf("a manual match override requires a reason")
	}

	err := withEntityTx(s.db, purchaseOrderLock(poID), func(tx *gorm.DB) error {
		po, err := loadPurchaseOrderTx(tx, poID)
		if err != nil {
			return err
		}
		if po.Status == models.POStatusCancelled {
			return preconditionf("purchase order %s is cancelled", po.PONumber)
		}
		if po.Status == models.POStatusMatched {
			return preconditionf("purchase order %s is already matched", po.PONumber)
		}

		var grns []models.GoodsReceiptNote
		if err := tx.Preload("Lines").Where("po_id = ?", poID).Find(&grns).Error; err != nil {
			return err
		}
		var invoices []models.Invoice
		if err := tx.Where("po_id = ?", poID).Find(&invoices).Error; err != nil {
			return err
		}
		verdict := ClassifyPurchaseOrder(po, grns, invoices, config.GetSettings().MatchAmountTolerance)

		if err := tx.Model(&models.PurchaseOrder{}).
			Where("po_id = ?", poID).
			Updates(map[string]interface{}{"status": models.POStatusMatched, "updated_at": time.Now()}).Error; err != nil {
			return err
		}

		details := fmt.Sprintf("overrode verdict %s: %s", verdict.Verdict, reason)
		return appendAudit(tx, actor, models.AuditActionMatchOverride, "purchase_order", poID, details)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(poID)
}
