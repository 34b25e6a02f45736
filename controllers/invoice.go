package controllers

import (
	"net/http"

	"procurement-management-api/config"
	"procurement-management-api/services"

	"github.com/gin-gonic/gin"
)

// RecordInvoice registers a vendor invoice against a purchase order.
func RecordInvoice(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.InvoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewInvoiceService(config.DB)
	invoice, err := svc.Record(currentActor(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "invoice": invoice})
}

// GetInvoice returns one invoice.
func GetInvoice(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewInvoiceService(config.DB)
	invoice, err := svc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": invoice})
}

// ApproveInvoice moves an invoice to approved_for_payment.
func ApproveInvoice(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewInvoiceService(config.DB)
	invoice, err := svc.ApproveForPayment(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": invoice})
}

// DisputeInvoice flags an invoice as disputed.
func DisputeInvoice(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dispute reason is required"})
		return
	}

	svc := services.NewInvoiceService(config.DB)
	invoice, err := svc.Dispute(currentActor(c), id, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": invoice})
}

// PayInvoice settles an approved invoice.
func PayInvoice(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		PaymentReference string `json:"payment_reference"`
	}
	_ = c.ShouldBindJSON(&body)

	svc := services.NewInvoiceService(config.DB)
	invoice, err := svc.ProcessPayment(currentActor(c), id, body.PaymentReference)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "invoice": invoice})
}
