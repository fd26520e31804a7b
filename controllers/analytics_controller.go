package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/services"
)

func UserAnalytics(a *services.AnalyticsService) gin.HandlerFunc {
	return total("users", a.Users)
}

func CourseAnalytics(a *services.AnalyticsService) gin.HandlerFunc {
	return total("courses", a.Courses)
}

func OrderAnalytics(a *services.AnalyticsService) gin.HandlerFunc {
	return total("orders", a.Orders)
}

func total(key string, count func(context.Context) (int64, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := count(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, key: gin.H{"total": n}})
	}
}
