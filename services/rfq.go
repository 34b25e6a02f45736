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

// RFQService manages the solicitation phase: vendor scope, quotation intake,
// committee assignment, and the award decision over quotations.
type RFQService struct {
	db     *gorm.DB
	notify *NotifyService
}

func NewRFQService(db *gorm.DB) *RFQService {
	return &RFQService{db: db, notify: NewNotifyService(db)}
}

// SendRFQInput opens the solicitation window. Deadlines left unset fall
// back to the configured default windows.
type SendRFQInput struct {
	VendorScope       string     `json:"vendor_scope" binding:"required"` // all | selected
	VendorIDs         []int      `json:"vendor_ids"`
	QuotationDeadline *time.Time `json:"quotation_deadline"`
	ScoringDeadline   *time.Time `json:"scoring_deadline"`
}

// defaultQuotationDeadline resolves the solicitation window end: the explicit
// deadline when given, otherwise now plus the configured window.
func defaultQuotationDeadline(explicit *time.Time, now time.Time) time.Time {
	if explicit != nil {
		return *explicit
	}
	return now.Add(time.Duration(config.GetSettings().QuotationWindowHours) * time.Hour)
}

// defaultScoringDeadline resolves the committee scoring window the same way.
func defaultScoringDeadline(explicit *time.Time, now time.Time) time.Time {
	if explicit != nil {
		return *explicit
	}
	return now.Add(time.Duration(config.GetSettings().ScoringWindowHours) * time.Hour)
}

// SendRFQ moves an approved requisition into rfq_in_progress. The vendor
// target must be non-empty: either "all" or a concrete vendor set.
func (s *RFQService) SendRFQ(actor Actor, reqID int, input SendRFQInput) (*models.Requisition, error) {
	if err := RequireCapability(actor, "send", "rfq"); err != nil {
		return nil, err
	}

	scope := strings.ToLower(strings.TrimSpace(input.VendorScope))
	if scope != models.VendorScopeAll && scope != models.VendorScopeSelected {
		return nil, validationf("vendor_scope must be %q or %q", models.VendorScopeAll, models.VendorScopeSelected)
	}
	if scope == models.VendorScopeSelected && len(input.VendorIDs) == 0 {
		return nil, validationf("a selected vendor scope needs at least one vendor")
	}
	deadline := defaultQuotationDeadline(input.QuotationDeadline, time.Now())
	if !deadline.After(time.Now()) {
		return nil, validationf("quotation deadline must be in the future")
	}

	var invited []models.Vendor
	err := withEntityTx(s.db, requisitionLock(reqID), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, reqID)
		if err != nil {
			return err
		}
		if req.Status != models.ReqStatusApproved {
			return preconditionf("requisition %s must be approved before an RFQ, currently %s", req.RequisitionNumber, req.Status)
		}

		if scope == models.VendorScopeSelected {
			if err := tx.Where("vendor_id IN ? AND is_active = ? AND delete_at IS NULL", input.VendorIDs, true).
				Find(&invited).Error; err != nil {
				return err
			}
			if len(invited) != len(input.VendorIDs) {
				return validationf("vendor set contains unknown or inactive vendors")
			}
			if err := tx.Where("requisition_id = ?", reqID).Delete(&models.RequisitionVendor{}).Error; err != nil {
				return err
			}
			for _, vendor := range invited {
				row := models.RequisitionVendor{RequisitionID: reqID, VendorID: vendor.VendorID}
				if err := tx.Create(&row).Error; err != nil {
					return err
				}
			}
		} else {
			if err := tx.Where("is_active = ? AND delete_at IS NULL", true).Find(&invited).Error; err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"vendor_scope":       scope,
			"quotation_deadline": deadline,
			"updated_at":         time.Now(),
		}
		if input.ScoringDeadline != nil {
			updates["scoring_deadline"] = *input.ScoringDeadline
		}
		if err := tx.Model(&models.Requisition{}).Where("requisition_id = ?", reqID).Updates(updates).Error; err != nil {
			return err
		}

		if err := setStatusTx(tx, req, models.ReqStatusRFQInProgress); err != nil {
			return err
		}

		details := fmt.Sprintf("scope=%s vendors=%d deadline=%s", scope, len(invited),
			deadline.Format(time.RFC3339))
		return appendAudit(tx, actor, models.AuditActionSendRFQ, "requisition", reqID, details)
	})
	if err != nil {
		return nil, err
	}

	req, err := NewLifecycleService(s.db).Get(reqID)
	if err != nil {
		return nil, err
	}
	for i := range invited {
		s.notify.VendorInvited(&invited[i], req)
	}
	return req, nil
}

// CancelRFQ reverts an in-progress RFQ: every open quotation is rejected,
// the deadlines are cleared, and the requisition returns to approved.
// All three writes land in one transaction.
func (s *RFQService) CancelRFQ(actor Actor, reqID int, reason string) (*models.Requisition, error) {
	if err := RequireCapability(actor, "cancel", "rfq"); err != nil {
		return nil, err
	}

	err := withEntityTx(s.db, requisitionLock(reqID), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, reqID)
		if err != nil {
			return err
		}
		if req.Status != models.ReqStatusRFQInProgress {
			return preconditionf("requisition %s has no RFQ in progress", req.RequisitionNumber)
		}

		if err := tx.Model(&models.Quotation{}).
			Where("requisition_id = ? AND status = ?", reqID, models.QuotationSubmitted).
			Updates(map[string]interface{}{"status": models.QuotationRejected, "updated_at": time.Now()}).Error; err != nil {
			return err
		}

		if err := tx.Model(&models.Requisition{}).
			Where("requisition_id = ?", reqID).
			Updates(map[string]interface{}{
				"quotation_deadline": nil,
				"updated_at":         time.Now(),
			}).Error; err != nil {
			return err
		}

		if err := setStatusTx(tx, req, models.ReqStatusApproved); err != nil {
			return err
		}
		return appendAudit(tx, actor, models.AuditActionCancelRFQ, "requisition", reqID, reason)
	})
	if err != nil {
		return nil, err
	}
	return NewLifecycleService(s.db).Get(reqID)
}

// ExtendQuotationDeadline replaces the quotation deadline while the RFQ is
// still open. It is the only RFQ field that can change mid-flight.
func (s *RFQService) ExtendQuotationDeadline(actor Actor, reqID int, deadline time.Time) (*models.Requisition, error) {
	if err := RequireCapability(actor, "extend", "rfq"); err != nil {
		return nil, err
	}
	if !deadline.After(time.Now()) {
		return nil, validationf("new quotation deadline must be in the future")
	}

	err := withEntityTx(s.db, requisitionLock(reqID), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, reqID)
		if err != nil {
			return err
		}
		if req.Status != models.ReqStatusRFQInProgress {
			return preconditionf("requisition %s has no RFQ in progress", req.RequisitionNumber)
		}
		if err := tx.Model(&models.Requisition{}).
			Where("requisition_id = ?", reqID).
			Updates(map[string]interface{}{"quotation_deadline": deadline, "updated_at": time.Now()}).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, models.AuditActionExtendRFQ, "requisition", reqID,
			"quotation deadline "+deadline.Format(time.RFC3339))
	})
	if err != nil {
		return nil, err
	}
	return NewLifecycleService(s.db).Get(reqID)
}

// QuotationLineInput prices one requisition item.
type QuotationLineInput struct {
	RequisitionItemID int     `json:"requisition_item_id" binding:"required"`
	UnitPrice         float64 `json:"unit_price" binding:"required"`
}

// SubmitQuotation accepts a vendor's priced response. Only vendors in scope,
// only while the RFQ is open, and only before the deadline; anything else is
// a clear "not eligible" answer, never a silent drop.
func (s *RFQService) SubmitQuotation(actor Actor, reqID int, lines []QuotationLineInput, notes string) (*models.Quotation, error) {
	if err := RequireCapability(actor, "submit", "quotation"); err != nil {
		return nil, err
	}
	if actor.VendorID == nil {
		return nil, authorizationf("vendor account is not linked to a vendor record")
	}
	if len(lines) == 0 {
		return nil, validationf("quotation needs at least one priced line")
	}
	vendorID := *actor.VendorID

	var quotation models.Quotation
	err := withEntityTx(s.db, requisitionLock(reqID), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, reqID)
		if err != nil {
			return err
		}
		if req.Status != models.ReqStatusRFQInProgress {
			return preconditionf("requisition %s is not accepting quotations", req.RequisitionNumber)
		}
		if req.QuotationDeadline == nil || time.Now().After(*req.QuotationDeadline) {
			return preconditionf("the quotation deadline for %s has passed", req.RequisitionNumber)
		}

		if req.VendorScope == nil {
			return configurationf("requisition %s has no vendor scope recorded", req.RequisitionNumber)
		}
		if *req.VendorScope == models.VendorScopeSelected {
			var allowed int64
			if err := tx.Model(&models.RequisitionVendor{}).
				Where("requisition_id = ? AND vendor_id = ?", reqID, vendorID).
				Count(&allowed).Error; err != nil {
				return err
			}
			if allowed == 0 {
				return authorizationf("vendor is not eligible for this RFQ")
			}
		}

		var existing int64
		if err := tx.Model(&models.Quotation{}).
			Where("requisition_id = ? AND vendor_id = ?", reqID, vendorID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return preconditionf("this vendor already submitted a quotation for %s", req.RequisitionNumber)
		}

		itemsByID := make(map[int]models.RequisitionItem, len(req.Items))
		for _, item := range req.Items {
			itemsByID[item.ItemID] = item
		}
		if len(lines) != len(req.Items) {
			return validationf("quotation must price all %d requisition items", len(req.Items))
		}

		now := time.Now()
		quotation = models.Quotation{
			RequisitionID: reqID,
			VendorID:      vendorID,
			Status:        models.QuotationSubmitted,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if n := strings.TrimSpace(notes); n != "" {
			quotation.Notes = &n
		}
		if err := tx.Create(&quotation).Error; err != nil {
			return err
		}

		var total float64
		seen := make(map[int]bool, len(lines))
		for _, line := range lines {
			item, ok := itemsByID[line.RequisitionItemID]
			if !ok {
				return validationf("line references unknown requisition item %d", line.RequisitionItemID)
			}
			if seen[line.RequisitionItemID] {
				return validationf("requisition item %d is priced twice", line.RequisitionItemID)
			}
			seen[line.RequisitionItemID] = true
			if line.UnitPrice < 0 {
				return validationf("unit price for item %d must not be negative", line.RequisitionItemID)
			}
			row := models.QuotationLine{
				QuotationID:       quotation.QuotationID,
				RequisitionItemID: line.RequisitionItemID,
				UnitPrice:         line.UnitPrice,
				LineTotal:         float64(item.Quantity) * line.UnitPrice,
			}
			total += row.LineTotal
			if err := tx.Create(&row).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.Quotation{}).
			Where("quotation_id = ?", quotation.QuotationID).
			Update("total_amount", total).Error; err != nil {
			return err
		}
		quotation.TotalAmount = total

		details := fmt.Sprintf("vendor=%d total=%.2f", vendorID, total)
		return appendAudit(tx, actor, models.AuditActionQuote, "quotation", quotation.QuotationID, details)
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.Preload("Lines").Preload("Vendor").
		First(&quotation, quotation.QuotationID).Error; err != nil {
		return nil, err
	}
	return &quotation, nil
}

// CommitteeInput assigns the evaluation committee.
type CommitteeInput struct {
	Name             string     `json:"name" binding:"required"`
	Purpose          string     `json:"purpose"`
	FinancialUserIDs []int      `json:"financial_user_ids" binding:"required"`
	TechnicalUserIDs []int      `json:"technical_user_ids" binding:"required"`
	ScoringDeadline  *time.Time `json:"scoring_deadline"`
}

// AssignCommittee sets disjoint financial and technical member sets on a
// requisition. Reassignment replaces the member list while scoring has not
// finished.
func (s *RFQService) AssignCommittee(actor Actor, reqID int, input CommitteeInput) (*models.Requisition, error) {
	if err := RequireCapability(actor, "assign", "committee"); err != nil {
		return nil, err
	}
	if len(input.FinancialUserIDs) == 0 || len(input.TechnicalUserIDs) == 0 {
		return nil, validationf("committee needs both financial and technical members")
	}
	financial := make(map[int]bool, len(input.FinancialUserIDs))
	for _, id := range input.FinancialUserIDs {
		financial[id] = true
	}
	for _, id := range input.TechnicalUserIDs {
		if financial[id] {
			return nil, validationf("user %d cannot sit in both member sets", id)
		}
	}

	err := withEntityTx(s.db, requisitionLock(reqID), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, reqID)
		if err != nil {
			return err
		}
		if req.Status != models.ReqStatusRFQInProgress && req.Status != models.ReqStatusApproved {
			return preconditionf("committee can only be assigned during the RFQ phase, requisition is %s", req.Status)
		}

		allIDs := append(append([]int{}, input.FinancialUserIDs...), input.TechnicalUserIDs...)
		var count int64
		if err := tx.Model(&models.User{}).
			Where("user_id IN ? AND delete_at IS NULL", allIDs).
			Count(&count).Error; err != nil {
			return err
		}
		if int(count) != len(allIDs) {
			return validationf("committee contains unknown users")
		}

		if err := tx.Where("requisition_id = ?", reqID).Delete(&models.CommitteeMember{}).Error; err != nil {
			return err
		}
		for _, id := range input.FinancialUserIDs {
			member := models.CommitteeMember{RequisitionID: reqID, UserID: id, MemberType: models.CommitteeMemberFinancial}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}
		for _, id := range input.TechnicalUserIDs {
			member := models.CommitteeMember{RequisitionID: reqID, UserID: id, MemberType: models.CommitteeMemberTechnical}
			if err := tx.Create(&member).Error; err != nil {
				return err
			}
		}

		updates := map[string]interface{}{
			"committee_name": strings.TrimSpace(input.Name),
			"updated_at":     time.Now(),
		}
		if p := strings.TrimSpace(input.Purpose); p != "" {
			updates["committee_purpose"] = p
		}
		if input.ScoringDeadline != nil {
			updates["scoring_deadline"] = *input.ScoringDeadline
		} else if req.ScoringDeadline == nil {
			updates["scoring_deadline"] = defaultScoringDeadline(nil, time.Now())
		}
		if err := tx.Model(&models.Requisition{}).Where("requisition_id = ?", reqID).Updates(updates).Error; err != nil {
			return err
		}

		details := fmt.Sprintf("financial=%d technical=%d", len(input.FinancialUserIDs), len(input.TechnicalUserIDs))
		return appendAudit(tx, actor, models.AuditActionAssignPanel, "requisition", reqID, details)
	})
	if err != nil {
		return nil, err
	}
	return NewLifecycleService(s.db).Get(reqID)
}

// ExtendScoringDeadline pushes the scoring deadline out while final scores
// are still outstanding.
func (s *RFQService) ExtendScoringDeadline(actor Actor, reqID int, deadline time.Time) (*models.Requisition, error) {
	if err := RequireCapability(actor, "extend", "scoring"); err != nil {
		return nil, err
	}
	if !deadline.After(time.Now()) {
		return nil, validationf("new scoring deadline must be in the future")
	}

	err := withEntityTx(s.db, requisitionLock(reqID), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, reqID)
		if err != nil {
			return err
		}

		var members []models.CommitteeMember
		if err := tx.Where("requisition_id = ?", reqID).Find(&members).Error; err != nil {
			return err
		}
		if len(members) == 0 {
			return preconditionf("requisition %s has no committee assigned", req.RequisitionNumber)
		}
		allDone := true
		for _, member := range members {
			if !member.ScoresSubmitted {
				allDone = false
				break
			}
		}
		if allDone {
			return preconditionf("all scores for %s are already in", req.RequisitionNumber)
		}

		if err := tx.Model(&models.Requisition{}).
			Where("requisition_id = ?", reqID).
			Updates(map[string]interface{}{"scoring_deadline": deadline, "updated_at": time.Now()}).Error; err != nil {
			return err
		}
		return appendAudit(tx, actor, models.AuditActionExtendScoring, "requisition", reqID,
			"scoring deadline "+deadline.Format(time.RFC3339))
	})
	if err != nil {
		return nil, err
	}
	return NewLifecycleService(s.db).Get(reqID)
}

// Award marks one quotation as the winner: that quotation becomes awarded,
// every other one is rejected, and the requisition returns to approved
// (post-award) so a purchase order can be issued. Requires scoring
// readiness.
func (s *RFQService) Award(actor Actor, reqID, quotationID int, notes string) (*models.Requisition, error) {
	if err := RequireCapability(actor, "award", "quotation"); err != nil {
		return nil, err
	}

	err := withEntityTx(s.db, requisitionLock(reqID), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, reqID)
		if err != nil {
			return err
		}
		if req.Status != models.ReqStatusRFQInProgress {
			return preconditionf("requisition %s has no RFQ to award", req.RequisitionNumber)
		}

		readiness, err := awardReadinessTx(tx, req)
		if err != nil {
			return err
		}
		if !readiness.Ready {
			return preconditionf("scoring for %s is not complete: %s", req.RequisitionNumber, readiness.Reason)
		}

		var winner models.Quotation
		if err := tx.Where("quotation_id = ? AND requisition_id = ?", quotationID, reqID).First(&winner).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Entity: "quotation", ID: quotationID}
			}
			return err
		}
		if winner.Status != models.QuotationSubmitted {
			return preconditionf("quotation %d is %s and cannot be awarded", quotationID, winner.Status)
		}

		var awarded int64
		if err := tx.Model(&models.Quotation{}).
			Where("requisition_id = ? AND status = ?", reqID, models.QuotationAwarded).
			Count(&awarded).Error; err != nil {
			return err
		}
		if awarded > 0 {
			return preconditionf("requisition %s already has an awarded quotation", req.RequisitionNumber)
		}

		now := time.Now()
		if err := tx.Model(&models.Quotation{}).
			Where("requisition_id = ? AND quotation_id <> ? AND status = ?", reqID, quotationID, models.QuotationSubmitted).
			Updates(map[string]interface{}{"status": models.QuotationRejected, "updated_at": now}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Quotation{}).
			Where("quotation_id = ?", quotationID).
			Updates(map[string]interface{}{"status": models.QuotationAwarded, "updated_at": now}).Error; err != nil {
			return err
		}

		if n := strings.TrimSpace(notes); n != "" {
			if err := tx.Model(&models.Requisition{}).
				Where("requisition_id = ?", reqID).
				Update("negotiation_notes", n).Error; err != nil {
				return err
			}
		}

		if err := setStatusTx(tx, req, models.ReqStatusApproved); err != nil {
			return err
		}

		details := fmt.Sprintf("quotation=%d rule=%s", quotationID, readiness.Rule)
		return appendAudit(tx, actor, models.AuditActionAward, "requisition", reqID, details)
	})
	if err != nil {
		return nil, err
	}
	return NewLifecycleService(s.db).Get(reqID)
}

// ResetAward undoes an award atomically: every quotation under the
// requisition returns to submitted and the requisition status reverts to
// approved. Both sides commit together or not at all. A purchase order
// issued from the award blocks the reset.
func (s *RFQService) ResetAward(actor Actor, reqID int, reason string) (*models.Requisition, error) {
	if err := RequireCapability(actor, "reset", "award"); err != nil {
		return nil, err
	}

	err := withEntityTx(s.db, requisitionLock(reqID), func(tx *gorm.DB) error {
		req, err := loadRequisitionTx(tx, reqID)
		if err != nil {
			return err
		}

		var awarded int64
		if err := tx.Model(&models.Quotation{}).
			Where("requisition_id = ? AND status = ?", reqID, models.QuotationAwarded).
			Count(&awarded).Error; err != nil {
			return err
		}
		if awarded == 0 {
			return preconditionf("requisition %s has no award to reset", req.RequisitionNumber)
		}

		var pos int64
		if err := tx.Model(&models.PurchaseOrder{}).
			Where("requisition_id = ? AND status <> ?", reqID, models.POStatusCancelled).
			Count(&pos).Error; err != nil {
			return err
		}
		if pos > 0 {
			return preconditionf("requisition %s already has a purchase order; cancel it first", req.RequisitionNumber)
		}

		now := time.Now()
		if err := tx.Model(&models.Quotation{}).
			Where("requisition_id = ?", reqID).
			Updates(map[string]interface{}{"status": models.QuotationSubmitted, "updated_at": now}).Error; err != nil {
			return err
		}

		if req.Status != models.ReqStatusApproved {
			if err := tx.Model(&models.Requisition{}).
				Where("requisition_id = ?", reqID).
				Updates(map[string]interface{}{"status": models.ReqStatusApproved, "updated_at": now}).Error; err != nil {
				return err
			}
			req.Status = models.ReqStatusApproved
		}

		return appendAudit(tx, actor, models.AuditActionResetAward, "requisition", reqID, reason)
	})
	if err != nil {
		return nil, err
	}
	return NewLifecycleService(s.db).Get(reqID)
}

// RecordContract files the signed contract reference for an awarded
// requisition. Storage of the document itself lives outside this service;
// only the path and upload time are kept.
func (s *RFQService) RecordContract(actor Actor, reqID int, filePath string) (*models.Requisition, error) {
	if err := RequireCapability(actor, "record", "contract"); err != nil {
		return nil, err
	}
	path := strings.TrimSpace(filePath)
	if path == "" {
		return nil, validationf("a contract file path is required")
	}

	var req *models.Requisition
	err := withEntityTx(s.db, requisitionLock(reqID), func(tx *gorm.DB) error {
		loaded, err := loadRequisitionTx(tx, reqID)
		if err != nil {
			return err
		}
		req = loaded

		var awarded int64
		if err := tx.Model(&models.Quotation{}).
			Where("requisition_id = ? AND status = ?", reqID, models.QuotationAwarded).
			Count(&awarded).Error; err != nil {
			return err
		}
		if awarded == 0 {
			return preconditionf("requisition %s has no awarded quotation to contract against", req.RequisitionNumber)
		}

		now := time.Now()
		if err := tx.Model(&models.Requisition{}).
			Where("requisition_id = ?", reqID).
			Updates(map[string]interface{}{
				"contract_file_path":   path,
				"contract_uploaded_at": now,
				"updated_at":           now,
			}).Error; err != nil {
			return err
		}
		req.ContractFilePath = &path
		req.ContractUploadAt = &now
		req.UpdatedAt = now

		return appendAudit(tx, actor, models.AuditActionContract, "requisition", reqID, path)
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}
