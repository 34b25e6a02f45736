package controllers

import (
	"net/http"
	"time"

	"procurement-management-api/config"
	"procurement-management-api/services"

	"github.com/gin-gonic/gin"
)

// SendRFQ opens the solicitation window for an approved requisition.
func SendRFQ(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.SendRFQInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewRFQService(config.DB)
	req, err := svc.SendRFQ(currentActor(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}

// CancelRFQ reverts an in-progress RFQ.
func CancelRFQ(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	svc := services.NewRFQService(config.DB)
	req, err := svc.CancelRFQ(currentActor(c), id, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}

// ExtendQuotationDeadline replaces the quotation deadline.
func ExtendQuotationDeadline(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Deadline time.Time `json:"deadline" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewRFQService(config.DB)
	req, err := svc.ExtendQuotationDeadline(currentActor(c), id, body.Deadline)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}

// SubmitQuotation accepts a vendor's priced response.
func SubmitQuotation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Lines []services.QuotationLineInput `json:"lines" binding:"required"`
		Notes string                        `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewRFQService(config.DB)
	quotation, err := svc.SubmitQuotation(currentActor(c), id, body.Lines, body.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "quotation": quotation})
}

// AssignCommittee sets the evaluation committee.
func AssignCommittee(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.CommitteeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewRFQService(config.DB)
	req, err := svc.AssignCommittee(currentActor(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}

// ExtendScoringDeadline pushes the scoring deadline out.
func ExtendScoringDeadline(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Deadline time.Time `json:"deadline" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewRFQService(config.DB)
	req, err := svc.ExtendScoringDeadline(currentActor(c), id, body.Deadline)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}

// AwardQuotation marks the winning quotation.
func AwardQuotation(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		QuotationID int    `json:"quotation_id" binding:"required"`
		Notes       string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewRFQService(config.DB)
	req, err := svc.Award(currentActor(c), id, body.QuotationID, body.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}

// ResetAward undoes an award atomically.
func ResetAward(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	svc := services.NewRFQService(config.DB)
	req, err := svc.ResetAward(currentActor(c), id, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}

// RecordContract files the signed contract reference for an awarded
// requisition.
func RecordContract(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		FilePath string `json:"file_path" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewRFQService(config.DB)
	req, err := svc.RecordContract(currentActor(c), id, body.FilePath)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}
