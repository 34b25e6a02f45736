package controllers

import (
	"net/http"
	"time"

	"procurement-management-api/config"
	"procurement-management-api/models"
	"procurement-management-api/utils"

	"github.com/gin-gonic/gin"
)

// GetVendors lists active vendors.
func GetVendors(c *gin.Context) {
	var vendors []models.Vendor
	query := config.DB.Where("delete_at IS NULL")
	if c.Query("include_inactive") != "true" {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("vendor_name ASC").Find(&vendors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch vendors"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "vendors": vendors, "total": len(vendors)})
}

// GetVendor returns one vendor.
func GetVendor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var vendor models.Vendor
	if err := config.DB.Where("vendor_id = ? AND delete_at IS NULL", id).First(&vendor).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "vendor": vendor})
}

// CreateVendor registers a new vendor (admin only, enforced in routes).
func CreateVendor(c *gin.Context) {
	var input struct {
		VendorName   string  `json:"vendor_name" binding:"required"`
		ContactName  *string `json:"contact_name"`
		ContactEmail string  `json:"contact_email" binding:"required"`
		Phone        *string `json:"phone"`
		Address      *string `json:"address"`
		TaxNumber    *string `json:"tax_number"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Vendor name and contact email are required"})
		return
	}
	if !utils.ValidateEmail(input.ContactEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact email"})
		return
	}

	vendor := models.Vendor{
		VendorName:   utils.SanitizeInput(input.VendorName),
		ContactName:  input.ContactName,
		ContactEmail: input.ContactEmail,
		Phone:        input.Phone,
		Address:      input.Address,
		TaxNumber:    input.TaxNumber,
		IsActive:     true,
		CreateAt:     time.Now(),
		UpdateAt:     time.Now(),
	}
	if err := config.DB.Create(&vendor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vendor"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "vendor": vendor})
}

// UpdateVendor edits vendor contact details or active flag.
func UpdateVendor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var vendor models.Vendor
	if err := config.DB.Where("vendor_id = ? AND delete_at IS NULL", id).First(&vendor).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}

	var input struct {
		VendorName   *string `json:"vendor_name"`
		ContactName  *string `json:"contact_name"`
		ContactEmail *string `json:"contact_email"`
		Phone        *string `json:"phone"`
		Address      *string `json:"address"`
		TaxNumber    *string `json:"tax_number"`
		IsActive     *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if input.ContactEmail != nil && !utils.ValidateEmail(*input.ContactEmail) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid contact email"})
		return
	}

	updates := map[string]interface{}{"update_at": time.Now()}
	if input.VendorName != nil {
		updates["vendor_name"] = utils.SanitizeInput(*input.VendorName)
	}
	if input.ContactName != nil {
		updates["contact_name"] = *input.ContactName
	}
	if input.ContactEmail != nil {
		updates["contact_email"] = *input.ContactEmail
	}
	if input.Phone != nil {
		updates["phone"] = *input.Phone
	}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.TaxNumber != nil {
		updates["tax_number"] = *input.TaxNumber
	}
	if input.IsActive != nil {
		updates["is_active"] = *input.IsActive
	}

	if err := config.DB.Model(&vendor).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vendor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "vendor": vendor})
}

// DeleteVendor soft deletes a vendor.
func DeleteVendor(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var vendor models.Vendor
	if err := config.DB.Where("vendor_id = ? AND delete_at IS NULL", id).First(&vendor).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vendor not found"})
		return
	}

	now := time.Now()
	if err := config.DB.Model(&vendor).Updates(map[string]interface{}{
		"delete_at": now,
		"is_active": false,
		"update_at": now,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vendor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Vendor deleted"})
}
