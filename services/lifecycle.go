package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"procurement-management-api/models"

	"gorm.io/gorm"
)

// validNext encodes the mainline document flow. Side branches (on_hold,
// disputed, cancelled) are reachable from any in-flight state through
// UpdateStatus and are not listed here.
var validNext = map[models.RequisitionStatus]map[models.RequisitionStatus]bool{
	models.ReqStatusDraft:              {models.ReqStatusPendingApproval: true},
	models.ReqStatusPendingApproval:    {models.ReqStatusApproved: true},
	models.ReqStatusApproved:           {models.ReqStatusRFQInProgress: true, models.ReqStatusPOCreated: true},
	models.ReqStatusRFQInProgress:      {models.ReqStatusApproved: true},
	models.ReqStatusPOCreated:          {models.ReqStatusPartiallyDelivered: true, models.ReqStatusDelivered: true, models.ReqStatusInvoiced: true},
	models.ReqStatusPartiallyDelivered: {models.ReqStatusPartiallyDelivered: true, models.ReqStatusDelivered: true, models.ReqStatusInvoiced: true},
	models.ReqStatusDelivered:          {models.ReqStatusInvoiced: true},
	models.ReqStatusInvoiced:           {models.ReqStatusApprovedForPayment: true},
	models.ReqStatusApprovedForPayment: {models.ReqStatusPaid: true},
	models.ReqStatusPaid:               {},
	models.ReqStatusCancelled:          {},
}

// CanTransition reports whether from -> to is a legal mainline move.
func CanTransition(from, to models.RequisitionStatus) bool {
	return validNext[from][to]
}

// LifecycleService is the sole writer of Requisition.status.
type LifecycleService struct {
	db     *gorm.DB
	notify *NotifyService
}

func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db, notify: NewNotifyService(db)}
}

// RequisitionItemInput is one line of a draft.
type RequisitionItemInput struct {
	Description string  `json:"description" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required"`
	UnitPrice   float64 `json:"unit_price" binding:"required"`
}

// RequisitionInput carries the writable draft fields.
type RequisitionInput struct {
	Title         string                 `json:"title" binding:"required"`
	Department    string                 `json:"department" binding:"required"`
	Justification string                 `json:"justification"`
	Items         []RequisitionItemInput `json:"items" binding:"required"`
}

func validateItems(items []RequisitionItemInput) error {
	if len(items) == 0 {
		return validationf("requisition needs at least one line item")
	}
	for i, item := range items {
		if strings.TrimSpace(item.Description) == "" {
			return validationf("item %d is missing a description", i+1)
		}
		if item.Quantity <= 0 {
			return validationf("item %d has non-positive quantity", i+1)
		}
		if item.UnitPrice < 0 {
			return validationf("item %d has negative unit price", i+1)
		}
	}
	return nil
}

func itemsTotal(items []models.RequisitionItem) float64 {
	var total float64
	for _, item := range items {
		total += item.LineTotal
	}
	return total
}

func loadRequisitionTx(tx *gorm.DB, id int) (*models.Requisition, error) {
	var req models.Requisition
	err := tx.Preload("Items").Where("requisition_id = ? AND deleted_at IS NULL", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "requisition", ID: id}
		}
		return nil, err
	}
	return &req, nil
}

// setStatusTx is the one place a requisition status is written. It refuses
// illegal mainline moves; side-branch writes go through setSideStatusTx.
func setStatusTx(tx *gorm.DB, req *models.Requisition, to models.RequisitionStatus) error {
	if !CanTransition(req.Status, to) {
		return preconditionf("requisition %s cannot move from %s to %s", req.RequisitionNumber, req.Status, to)
	}
	now := time.Now()
	if err := tx.Model(&models.Requisition{}).
		Where("requisition_id = ?", req.RequisitionID).
		Updates(map[string]interface{}{"status": to, "updated_at": now}).Error; err != nil {
		return err
	}
	req.Status = to
	req.UpdatedAt = now
	return nil
}

// Create stores a new draft owned by the actor.
func (s *LifecycleService) Create(actor Actor, input RequisitionInput) (*models.Requisition, error) {
	if err := RequireCapability(actor, "create", "requisition"); err != nil {
		return nil, err
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	now := time.Now()
	req := models.Requisition{
		RequisitionNumber: newDocumentNumber("REQ"),
		Title:             strings.TrimSpace(input.Title),
		Department:        strings.TrimSpace(input.Department),
		Justification:     input.Justification,
		Status:            models.ReqStatusDraft,
		RequesterID:       actor.UserID,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&req).Error; err != nil {
			return err
		}
		var total float64
		for i, item := range input.Items {
			line := models.RequisitionItem{
				RequisitionID: req.RequisitionID,
				Description:   strings.TrimSpace(item.Description),
				Quantity:      item.Quantity,
				UnitPrice:     item.UnitPrice,
				LineTotal:     float64(item.Quantity) * item.UnitPrice,
				ItemOrder:     i + 1,
			}
			total += line.LineTotal
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}
		req.TotalAmount = total
		if err := tx.Model(&models.Requisition{}).
			Where("requisition_id = ?", req.RequisitionID).
			Update("total_amount", total).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, models.AuditActionCreate, "requisition", req.RequisitionID, req.RequisitionNumber)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(req.RequisitionID)
}

// UpdateDraft replaces the editable fields and lines of a draft. Only the
// owner (or an admin) may touch it, and only while status is draft.
func (s *LifecycleService) UpdateDraft(actor Actor, id int, input RequisitionInput) (*models.Requisition, error) {
	if err := RequireCapability(actor, "update", "requisition"); err != nil {
		return nil, err
	}
	if err := validateItems(input.Items); err != nil {
		return nil, err
	}

	err := withEntityTx(s.db, requisitionLock(id), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, id)
		if err != nil {
			return err
		}
		if req.RequesterID != actor.UserID && actor.RoleID != models.RoleAdmin {
			return authorizationf("only the requester may edit this requisition")
		}
		if req.Status != models.ReqStatusDraft {
			return preconditionf("requisition %s is not editable in status %s", req.RequisitionNumber, req.Status)
		}

		if err := tx.Where("requisition_id = ?", id).Delete(&models.RequisitionItem{}).Error; err != nil {
			return err
		}
		var total float64
		for i, item := range input.Items {
			line := models.RequisitionItem{
				RequisitionID: id,
				Description:   strings.TrimSpace(item.Description),
				Quantity:      item.Quantity,
				UnitPrice:     item.UnitPrice,
				LineTotal:     float64(item.Quantity) * item.UnitPrice,
				ItemOrder:     i + 1,
			}
			total += line.LineTotal
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"title":         strings.TrimSpace(input.Title),
			"department":    strings.TrimSpace(input.Department),
			"justification": input.Justification,
			"total_amount":  total,
			"updated_at":    time.Now(),
		}
		if err := tx.Model(&models.Requisition{}).Where("requisition_id = ?", id).Updates(updates).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, models.AuditActionUpdate, "requisition", id, "draft updated")
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// DeleteDraft soft-deletes a draft.
func (s *LifecycleService) DeleteDraft(actor Actor, id int) error {
	return withEntityTx(s.db, requisitionLock(id), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, id)
		if err != nil {
			return err
		}
		if req.RequesterID != actor.UserID && actor.RoleID != models.RoleAdmin {
			return authorizationf("only the requester may delete this requisition")
		}
		if req.Status != models.ReqStatusDraft {
			return preconditionf("only drafts can be deleted, requisition is %s", req.Status)
		}
		now := time.Now()
		if err := tx.Model(&models.Requisition{}).
			Where("requisition_id = ?", id).
			Updates(map[string]interface{}{"deleted_at": now, "updated_at": now}).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, models.AuditActionUpdate, "requisition", id, "draft deleted")
	})
}

// Get loads one requisition with its children.
func (s *LifecycleService) Get(id int) (*models.Requisition, error) {
	var req models.Requisition
	err := s.db.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("item_order ASC") }).
		Preload("Requester").
		Preload("AllowedVendors.Vendor").
		Preload("CommitteeMembers.User").
		Preload("Quotations.Vendor").
		Preload("Quotations.Lines").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB { return db.Order("step_order ASC") }).
		Preload("Approvals.Approver").
		Where("requisition_id = ? AND deleted_at IS NULL", id).
		First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "requisition", ID: id}
		}
		return nil, err
	}
	return &req, nil
}

// Submit moves a draft to pending_approval: recomputes the total from the
// stored lines and resolves the required approval chain for that total.
// The chain is returned so the caller can show who must act next.
func (s *LifecycleService) Submit(actor Actor, id int) (*models.Requisition, []models.ApprovalStep, error) {
	if err := RequireCapability(actor, "submit", "requisition"); err != nil {
		return nil, nil, err
	}

	var chain []models.ApprovalStep
	err := withEntityTx(s.db, requisitionLock(id), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, id)
		if err != nil {
			return err
		}
		if req.RequesterID != actor.UserID && actor.RoleID != models.RoleAdmin {
			return authorizationf("only the requester may submit this requisition")
		}
		if req.Status != models.ReqStatusDraft {
			return preconditionf("requisition %s has already been submitted", req.RequisitionNumber)
		}
		if len(req.Items) == 0 {
			return validationf("requisition has no line items")
		}

		total := itemsTotal(req.Items)
		thresholds, err := loadThresholds(tx)
		if err != nil {
			return err
		}
		chain, err = EvaluateApprovalChain(total, thresholds)
		if err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&models.Requisition{}).
			Where("requisition_id = ?", id).
			Updates(map[string]interface{}{"total_amount": total, "submitted_at": now}).Error; err != nil {
			return err
		}
		req.TotalAmount = total
		if err := setStatusTx(tx, req, models.ReqStatusPendingApproval); err != nil {
			return err
		}

		details := fmt.Sprintf("total=%.2f steps=%d", total, len(chain))
		return appendAudit(tx, actor, models.AuditActionSubmit, "requisition", id, details)
	})
	if err != nil {
		return nil, nil, err
	}

	req, err := s.Get(id)
	if err != nil {
		return nil, nil, err
	}
	return req, chain, nil
}

// RecordApproval applies one step of the approval chain. Steps must be
// satisfied in evaluator order; an approval from the wrong role, or out of
// order, is an authorization error, never silently ignored. The final step
// flips the requisition to approved.
func (s *LifecycleService) RecordApproval(actor Actor, id int, comment string) (*models.Requisition, error) {
	if err := RequireCapability(actor, "approve", "requisition"); err != nil {
		return nil, err
	}

	err := withEntityTx(s.db, requisitionLock(id), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, id)
		if err != nil {
			return err
		}
		if req.Status != models.ReqStatusPendingApproval {
			return preconditionf("requisition %s is not awaiting approval", req.RequisitionNumber)
		}

		thresholds, err := loadThresholds(tx)
		if err != nil {
			return err
		}
		chain, err := EvaluateApprovalChain(req.TotalAmount, thresholds)
		if err != nil {
			return err
		}

		var done int64
		if err := tx.Model(&models.RequisitionApproval{}).
			Where("requisition_id = ?", id).Count(&done).Error; err != nil {
			return err
		}
		if int(done) >= len(chain) {
			return preconditionf("approval chain for %s is already complete", req.RequisitionNumber)
		}

		next := chain[done]
		if !strings.EqualFold(next.RoleName, actor.RoleName) {
			return authorizationf("step %d requires role %q, not %q", next.StepOrder, next.RoleName, actor.RoleName)
		}

		now := time.Now()
		approval := models.RequisitionApproval{
			RequisitionID: id,
			StepOrder:     next.StepOrder,
			RoleName:      next.RoleName,
			ApproverID:    actor.UserID,
			DecidedAt:     now,
		}
		if c := strings.TrimSpace(comment); c != "" {
			approval.Comment = &c
		}
		if err := tx.Create(&approval).Error; err != nil {
			return err
		}

		if int(done)+1 == len(chain) {
			if err := setStatusTx(tx, req, models.ReqStatusApproved); err != nil {
				return err
			}
		}

		details := fmt.Sprintf("step=%d role=%s", next.StepOrder, next.RoleName)
		return appendAudit(tx, actor, models.AuditActionApprove, "requisition", id, details)
	})
	if err != nil {
		return nil, err
	}

	req, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if req.Status == models.ReqStatusApproved {
		s.notify.RequisitionEvent(req, "Requisition approved",
			fmt.Sprintf("Requisition %s passed its full approval chain.", req.RequisitionNumber), "success")
	}
	return req, nil
}

// Reject ends the approval phase: the requisition is cancelled with the
// approver's reason on record.
func (s *LifecycleService) Reject(actor Actor, id int, reason string) (*models.Requisition, error) {
	if err := RequireCapability(actor, "approve", "requisition"); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, validationf("a rejection reason is required")
	}

	err := withEntityTx(s.db, requisitionLock(id), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, id)
		if err != nil {
			return err
		}
		if req.Status != models.ReqStatusPendingApproval {
			return preconditionf("requisition %s is not awaiting approval", req.RequisitionNumber)
		}
		if err := setSideStatusTx(tx, req, models.ReqStatusCancelled, false); err != nil {
			return err
		}
		return appendAudit(tx, actor, models.AuditActionReject, "requisition", id, reason)
	})
	if err != nil {
		return nil, err
	}

	req, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.notify.RequisitionEvent(req, "Requisition rejected", reason, "error")
	return req, nil
}

// setSideStatusTx writes the side-branch statuses (on_hold, disputed,
// cancelled) and the resume path back out of them. keepPrev records the
// current status so resume can restore it.
func setSideStatusTx(tx *gorm.DB, req *models.Requisition, to models.RequisitionStatus, keepPrev bool) error {
	if req.Status.IsTerminal() {
		return preconditionf("requisition %s is final in status %s", req.RequisitionNumber, req.Status)
	}
	updates := map[string]interface{}{
		"status":     to,
		"updated_at": time.Now(),
	}
	if keepPrev {
		updates["prev_status"] = req.Status
	} else {
		updates["prev_status"] = nil
	}
	if err := tx.Model(&models.Requisition{}).
		Where("requisition_id = ?", req.RequisitionID).
		Updates(updates).Error; err != nil {
		return err
	}
	req.Status = to
	return nil
}

// UpdateStatus applies the explicit authorized side-branch moves:
// hold, dispute (both resumable), resume, and cancel (final).
func (s *LifecycleService) UpdateStatus(actor Actor, id int, action, reason string) (*models.Requisition, error) {
	action = strings.ToLower(strings.TrimSpace(action))

	capability := "hold"
	if action == "cancel" {
		capability = "cancel"
	}
	if err := RequireCapability(actor, capability, "requisition"); err != nil {
		return nil, err
	}

	err := withEntityTx(s.db, requisitionLock(id), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, id)
		if err != nil {
			return err
		}

		switch action {
		case "hold":
			if req.Status == models.ReqStatusOnHold {
				return preconditionf("requisition %s is already on hold", req.RequisitionNumber)
			}
			if err := setSideStatusTx(tx, req, models.ReqStatusOnHold, true); err != nil {
				return err
			}
		case "dispute":
			if req.Status == models.ReqStatusDisputed {
				return preconditionf("requisition %s is already disputed", req.RequisitionNumber)
			}
			if err := setSideStatusTx(tx, req, models.ReqStatusDisputed, true); err != nil {
				return err
			}
		case "resume":
			if req.Status != models.ReqStatusOnHold && req.Status != models.ReqStatusDisputed {
				return preconditionf("requisition %s has nothing to resume from", req.RequisitionNumber)
			}
			if req.PrevStatus == nil {
				return preconditionf("requisition %s has no recorded prior status", req.RequisitionNumber)
			}
			prev := *req.PrevStatus
			if err := tx.Model(&models.Requisition{}).
				Where("requisition_id = ?", id).
				Updates(map[string]interface{}{
					"status":      prev,
					"prev_status": nil,
					"updated_at":  time.Now(),
				}).Error; err != nil {
				return err
			}
			req.Status = prev
		case "cancel":
			if err := setSideStatusTx(tx, req, models.ReqStatusCancelled, false); err != nil {
				return err
			}
		default:
			return validationf("unknown status action %q", action)
		}

		details := action
		if reason != "" {
			details = fmt.Sprintf("%s: %s", action, reason)
		}
		return appendAudit(tx, actor, models.AuditActionStatusChange, "requisition", id, details)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(id)
}

// List returns requisitions visible to the actor: requesters see their own,
// vendors see the ones they may quote on, everyone else sees all.
func (s *LifecycleService) List(actor Actor, status string) ([]models.Requisition, error) {
	query := s.db.Preload("Items").Preload("Requester").
		Where("deleted_at IS NULL")

	switch actor.RoleID {
	case models.RoleStaff:
		query = query.Where("requester_id = ?", actor.UserID)
	case models.RoleVendor:
		if actor.VendorID == nil {
			return nil, authorizationf("vendor account is not linked to a vendor record")
		}
		query = query.Where("status = ?", models.ReqStatusRFQInProgress).
			Where("vendor_scope = ? OR requisition_id IN (SELECT requisition_id FROM requisition_vendors WHERE vendor_id = ?)",
				models.VendorScopeAll, *actor.VendorID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reqs []models.Requisition
	if err := query.Order("updated_at DESC").Find(&reqs).Error; err != nil {
		return nil, err
	}
	return reqs, nil
}
