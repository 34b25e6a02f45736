package controllers

import (
	"net/http"

	"procurement-management-api/config"
	"procurement-management-api/services"

	"github.com/gin-gonic/gin"
)

// GetApprovalMatrix returns the configured thresholds in ascending order.
func GetApprovalMatrix(c *gin.Context) {
	svc := services.NewApprovalMatrixService(config.DB)
	thresholds, err := svc.LoadThresholds()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "thresholds": thresholds})
}

// ReplaceApprovalMatrix swaps the full matrix in one transaction.
func ReplaceApprovalMatrix(c *gin.Context) {
	var body struct {
		Thresholds []services.ThresholdInput `json:"thresholds" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewApprovalMatrixService(config.DB)
	thresholds, err := svc.Replace(currentActor(c), body.Thresholds)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "thresholds": thresholds})
}
