package services

import (
	"procurement-management-api/models"

	"gorm.io/gorm"
)

// StatusCount is one status bucket of a grouped count.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// DashboardCounts are the headline numbers for the procurement pipeline.
type DashboardCounts struct {
	Requisitions      []StatusCount `json:"requisitions"`
	PurchaseOrders    []StatusCount `json:"purchase_orders"`
	Invoices          []StatusCount `json:"invoices"`
	OpenRFQs          int64         `json:"open_rfqs"`
	PendingQuotations int64         `json:"pending_quotations"`
}

type DashboardService struct {
	db *gorm.DB
}

func NewDashboardService(db *gorm.DB) *DashboardService {
	return &DashboardService{db: db}
}

// Counts aggregates per-status totals. Soft-deleted requisitions are
// excluded; purchase orders and invoices are never soft-deleted.
func (s *DashboardService) Counts() (*DashboardCounts, error) {
	counts := DashboardCounts{}

	if err := s.db.Model(&models.Requisition{}).
		Select("status, COUNT(*) as count").
		Where("deleted_at IS NULL").
		Group("status").
		Scan(&counts.Requisitions).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.PurchaseOrder{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts.PurchaseOrders).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Invoice{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts.Invoices).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Requisition{}).
		Where("status = ? AND deleted_at IS NULL", models.ReqStatusRFQInProgress).
		Count(&counts.OpenRFQs).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Quotation{}).
		Where("status = ?", models.QuotationSubmitted).
		Count(&counts.PendingQuotations).Error; err != nil {
		return nil, err
	}

	return &counts, nil
}
