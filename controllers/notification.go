package controllers

import (
	"net/http"

	"procurement-management-api/config"
	"procurement-management-api/services"

	"github.com/gin-gonic/gin"
)

// GetNotifications lists the caller's notifications.
func GetNotifications(c *gin.Context) {
	actor := currentActor(c)
	unreadOnly := c.Query("unread") == "true"

	svc := services.NewNotifyService(config.DB)
	notifications, err := svc.ListForUser(actor.UserID, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications, "total": len(notifications)})
}

// MarkNotificationRead marks one of the caller's notifications as read.
func MarkNotificationRead(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	svc := services.NewNotifyService(config.DB)
	if err := svc.MarkRead(currentActor(c).UserID, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification marked as read"})
}
