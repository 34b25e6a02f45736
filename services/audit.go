package services

import (
	"time"

	"procurement-management-api/models"

	"gorm.io/gorm"
)

// appendAudit writes one audit row inside the caller's transaction. Callers
// never log outside a transaction: a rejected transition leaves no trail,
// a committed one leaves exactly one entry.
func appendAudit(tx *gorm.DB, actor Actor, action, entityType string, entityID int, details string) error {
	entry := models.AuditLog{
		UserID:     actor.UserID,
		UserName:   actor.Name,
		UserRole:   actor.RoleName,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
	}
	if details != "" {
		entry.Details = &details
	}
	if actor.IP != "" {
		ip := actor.IP
		entry.IPAddress = &ip
	}
	return tx.Create(&entry).Error
}

// AuditService serves the read side of the ledger.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// List returns entries newest first, optionally filtered by entity.
func (s *AuditService) List(entityType string, entityID, limit, offset int) ([]models.AuditLog, int64, error) {
	query := s.db.Model(&models.AuditLog{})
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}
	if entityID > 0 {
		query = query.Where("entity_id = ?", entityID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLog
	if err := query.Order("log_id DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
