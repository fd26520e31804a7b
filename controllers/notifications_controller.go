package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/services"
)

func GetNotifications(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := notifications.List(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "notifications": list})
	}
}

func UpdateNotification(notifications *services.NotificationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := notifications.MarkRead(c.Request.Context(), c.Param("id"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "notifications": list})
	}
}
