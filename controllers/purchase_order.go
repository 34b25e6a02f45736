package controllers

import (
	"net/http"

	"procurement-management-api/config"
	"procurement-management-api/services"

	"github.com/gin-gonic/gin"
)

// IssuePurchaseOrder creates a PO from the awarded quotation.
func IssuePurchaseOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewPOService(config.DB)
	po, err := svc.Issue(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "purchase_order": po})
}

// GetPurchaseOrders lists purchase orders, optionally filtered by status.
func GetPurchaseOrders(c *gin.Context) {
	svc := services.NewPOService(config.DB)
	orders, err := svc.List(c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "purchase_orders": orders, "total": len(orders)})
}

// GetPurchaseOrder returns one purchase order with its items and receipts.
func GetPurchaseOrder(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewPOService(config.DB)
	po, err := svc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "purchase_order": po})
}

// RecordGoodsReceipt registers an immutable goods receipt note.
func RecordGoodsReceipt(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Lines []services.ReceiptLineInput `json:"lines" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewPOService(config.DB)
	grn, poStatus, err := svc.RecordGoodsReceipt(currentActor(c), id, body.Lines)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":       true,
		"goods_receipt": grn,
		"po_status":     poStatus,
	})
}

// GetMatchVerdict runs the three-way comparison for a purchase order.
func GetMatchVerdict(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewPOService(config.DB)
	result, err := svc.Match(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "match": result})
}

// OverrideMatch forces a matched verdict with a recorded reason.
func OverrideMatch(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Override reason is required"})
		return
	}

	svc := services.NewPOService(config.DB)
	po, err := svc.OverrideMatch(currentActor(c), id, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "purchase_order": po})
}
