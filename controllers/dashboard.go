package controllers

import (
	"net/http"

	"procurement-management-api/config"
	"procurement-management-api/services"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns headline counts for the procurement pipeline.
func GetDashboard(c *gin.Context) {
	svc := services.NewDashboardService(config.DB)
	counts, err := svc.Counts()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch dashboard data"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":            true,
		"requisitions":       counts.Requisitions,
		"purchase_orders":    counts.PurchaseOrders,
		"invoices":           counts.Invoices,
		"open_rfqs":          counts.OpenRFQs,
		"pending_quotations": counts.PendingQuotations,
	})
}
