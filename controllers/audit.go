package controllers

import (
	"net/http"
	"strconv"

	"procurement-management-api/config"
	"procurement-management-api/services"

	"github.com/gin-gonic/gin"
)

// GetAuditLogs lists audit entries newest first, with optional entity filter.
func GetAuditLogs(c *gin.Context) {
	pageSize := config.GetSettings().AuditPageSize
	entityType := c.Query("entity_type")
	entityID, _ := strconv.Atoi(c.Query("entity_id"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(pageSize)))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 200 {
		limit = pageSize
	}

	svc := services.NewAuditService(config.DB)
	logs, total, err := svc.List(entityType, entityID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"logs":    logs,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}
