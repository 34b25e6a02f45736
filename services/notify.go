package services

import (
	"fmt"
	"log"
	"time"

	"procurement-management-api/config"
	"procurement-management-api/models"

	"gorm.io/gorm"
)

// NotifyService writes in-app notification rows and fires mail. Delivery is
// best effort: a failed notification never fails the business operation it
// follows, it only logs.
type NotifyService struct {
	db *gorm.DB
}

func NewNotifyService(db *gorm.DB) *NotifyService {
	return &NotifyService{db: db}
}

// RequisitionEvent notifies the requester about a lifecycle event.
func (s *NotifyService) RequisitionEvent(req *models.Requisition, title, message, kind string) {
	reqID := uint(req.RequisitionID)
	notification := models.Notification{
		UserID:               uint(req.RequesterID),
		Title:                title,
		Message:              message,
		Type:                 kind,
		RelatedRequisitionID: &reqID,
		CreateAt:             time.Now(),
	}
	if err := s.db.Create(&notification).Error; err != nil {
		log.Printf("Warning: failed to store notification for requisition %d: %v", req.RequisitionID, err)
	}

	if req.Requester != nil && req.Requester.Email != "" {
		go func(email string) {
			body := fmt.Sprintf("<p>%s</p><p>%s</p>", title, message)
			if err := config.SendMail([]string{email}, title, body); err != nil {
				log.Printf("Warning: failed to send mail for requisition %d: %v", req.RequisitionID, err)
			}
		}(req.Requester.Email)
	}
}

// VendorInvited mails an RFQ invitation to a vendor contact.
func (s *NotifyService) VendorInvited(vendor *models.Vendor, req *models.Requisition) {
	if vendor == nil || vendor.ContactEmail == "" {
		return
	}
	go func(email string) {
		subject := fmt.Sprintf("Request for quotation: %s", req.Title)
		deadline := "not set"
		if req.QuotationDeadline != nil {
			deadline = req.QuotationDeadline.Format("2006-01-02 15:04")
		}
		body := fmt.Sprintf("<p>You are invited to quote on %s (%s).</p><p>Quotation deadline: %s</p>",
			req.Title, req.RequisitionNumber, deadline)
		if err := config.SendMail([]string{email}, subject, body); err != nil {
			log.Printf("Warning: failed to send RFQ invite to vendor %d: %v", vendor.VendorID, err)
		}
	}(vendor.ContactEmail)
}

// ListForUser returns a user's notifications, newest first.
func (s *NotifyService) ListForUser(userID int, unreadOnly bool) ([]models.Notification, error) {
	query := s.db.Where("user_id = ?", userID)
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}
	var notifications []models.Notification
	if err := query.Order("notification_id DESC").Limit(100).Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkRead flags one notification as read.
func (s *NotifyService) MarkRead(userID int, notificationID int) error {
	now := time.Now()
	result := s.db.Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{"is_read": true, "update_at": now})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return &NotFoundError{Entity: "notification", ID: notificationID}
	}
	return nil
}
