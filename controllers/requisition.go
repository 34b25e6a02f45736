package controllers

import (
	"net/http"

	"procurement-management-api/config"
	"procurement-management-api/services"

	"github.com/gin-gonic/gin"
)

// GetRequisitions lists requisitions visible to the acting user.
func GetRequisitions(c *gin.Context) {
	svc := services.NewLifecycleService(config.DB)
	reqs, err := svc.List(currentActor(c), c.Query("status"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"requisitions": reqs,
		"total":        len(reqs),
	})
}

// GetRequisition returns one requisition with its children.
func GetRequisition(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	svc := services.NewLifecycleService(config.DB)
	req, err := svc.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}

// CreateRequisition stores a new draft.
func CreateRequisition(c *gin.Context) {
	var input services.RequisitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewLifecycleService(config.DB)
	req, err := svc.Create(currentActor(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "requisition": req})
}

// UpdateRequisition edits a draft.
func UpdateRequisition(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input services.RequisitionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewLifecycleService(config.DB)
	req, err := svc.UpdateDraft(currentActor(c), id, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}

// DeleteRequisition removes a draft.
func DeleteRequisition(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	svc := services.NewLifecycleService(config.DB)
	if err := svc.DeleteDraft(currentActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Requisition deleted"})
}

// SubmitRequisition moves a draft into the approval pipeline and returns
// the resolved approval chain.
func SubmitRequisition(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	svc := services.NewLifecycleService(config.DB)
	req, chain, err := svc.Submit(currentActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"requisition":    req,
		"approval_chain": chain,
	})
}

// ApproveRequisition records one step of the approval chain.
func ApproveRequisition(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Comment string `json:"comment"`
	}
	_ = c.ShouldBindJSON(&body)

	svc := services.NewLifecycleService(config.DB)
	req, err := svc.RecordApproval(currentActor(c), id, body.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}

// RejectRequisition ends the approval phase with a reason.
func RejectRequisition(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A rejection reason is required"})
		return
	}

	svc := services.NewLifecycleService(config.DB)
	req, err := svc.Reject(currentActor(c), id, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}

// UpdateRequisitionStatus applies hold/resume/dispute/cancel.
func UpdateRequisitionStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Action string `json:"action" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewLifecycleService(config.DB)
	req, err := svc.UpdateStatus(currentActor(c), id, body.Action, body.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "requisition": req})
}
