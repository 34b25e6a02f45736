package controllers

import (
	"net/http"
	"strconv"

	"procurement-management-api/services"

	"github.com/gin-gonic/gin"
)

// currentActor builds the acting user from the values the auth middleware
// stored on the context.
func currentActor(c *gin.Context) services.Actor {
	actor := services.Actor{IP: c.ClientIP()}
	if v, ok := c.Get("userID"); ok {
		actor.UserID = v.(int)
	}
	if v, ok := c.Get("userName"); ok {
		actor.Name = v.(string)
	}
	if v, ok := c.Get("roleID"); ok {
		actor.RoleID = v.(int)
	}
	if v, ok := c.Get("roleName"); ok {
		actor.RoleName = v.(string)
	}
	if v, ok := c.Get("vendorID"); ok {
		vendorID := v.(int)
		actor.VendorID = &vendorID
	}
	return actor
}

// idParam parses a positive integer path parameter.
func idParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// respondError maps the service error taxonomy onto HTTP statuses. Every
// kind surfaces with its message; nothing is collapsed into a generic 500
// unless it truly is one.
func respondError(c *gin.Context, err error) {
	switch {
	case services.IsKind[*services.ValidationError](err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case services.IsKind[*services.NotFoundError](err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case services.IsKind[*services.AuthorizationError](err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case services.IsKind[*services.PreconditionError](err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case services.IsKind[*services.ContentionError](err):
		c.JSON(http.StatusLocked, gin.H{"error": err.Error()})
	case services.IsKind[*services.ConfigurationError](err):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
