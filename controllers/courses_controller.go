package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/dto"
	"github.com/princinho/elearnbackend/services"
	"github.com/princinho/elearnbackend/utils"
)

// GetCourses lists the catalog, newest first, with optional page/limit.
func GetCourses(courses *services.CourseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := utils.ParseIntDefault(c.Query("page"), 1)
		limit := utils.ParseIntDefault(c.Query("limit"), 50)
		if page < 1 {
			page = 1
		}
		if limit < 1 {
			limit = 50
		}
		if limit > 200 {
			limit = 200
		}

		list, err := courses.List(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}

		total := len(list)
		start := min((page-1)*limit, total)
		end := min(start+limit, total)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"courses": list[start:end],
			"page":    page,
			"limit":   limit,
			"total":   total,
		})
	}
}

func CreateCourse(courses *services.CourseService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CreateCourseDTO
		if !bindJSON(c, &body) {
			return
		}

		course, err := courses.Create(c.Request.Context(), body)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "course": course})
	}
}
