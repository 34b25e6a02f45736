package models

import "time"

type Vendor struct {
	VendorID     int        `gorm:"primaryKey;column:vendor_id" json:"vendor_id"`
	VendorName   string     `gorm:"column:vendor_name" json:"vendor_name"`
	ContactName  *string    `gorm:"column:contact_name" json:"contact_name,omitempty"`
	ContactEmail string     `gorm:"column:contact_email" json:"contact_email"`
	Phone        *string    `gorm:"column:phone" json:"phone,omitempty"`
	Address      *string    `gorm:"column:address" json:"address,omitempty"`
	TaxNumber    *string    `gorm:"column:tax_number" json:"tax_number,omitempty"`
	IsActive     bool       `gorm:"column:is_active" json:"is_active"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

func (Vendor) TableName() string {
	return "vendors"
}
