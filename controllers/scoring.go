package controllers

import (
	"net/http"

	"procurement-management-api/config"
	"procurement-management-api/services"

	"github.com/gin-gonic/gin"
)

// SubmitScores records a committee member's scores for all quotations.
func SubmitScores(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var body struct {
		Scores []services.ScoreInput `json:"scores" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	svc := services.NewScoringService(config.DB)
	if err := svc.SubmitScores(currentActor(c), id, body.Scores); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Scores recorded"})
}

// GetAwardReadiness reports whether the requisition can be awarded and why.
func GetAwardReadiness(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewScoringService(config.DB)
	readiness, err := svc.AwardReadiness(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "readiness": readiness})
}

// GetScoreSummary returns averaged scores per quotation.
func GetScoreSummary(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewScoringService(config.DB)
	summary, err := svc.Summarize(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "scores": summary})
}
