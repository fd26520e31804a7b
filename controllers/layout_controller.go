package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/dto"
	"github.com/princinho/elearnbackend/services"
)

func CreateLayout(layouts *services.LayoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LayoutDTO
		if !bindJSON(c, &body) {
			return
		}

		if _, err := layouts.Create(c.Request.Context(), body); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Layout created successfully"})
	}
}

func EditLayout(layouts *services.LayoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LayoutDTO
		if !bindJSON(c, &body) {
			return
		}

		if _, err := layouts.Edit(c.Request.Context(), body); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Layout updated successfully"})
	}
}

func GetLayout(layouts *services.LayoutService) gin.HandlerFunc {
	return func(c *gin.Context) {
		layout, err := layouts.Get(c.Request.Context(), c.Param("type"))
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "layout": layout})
	}
}
