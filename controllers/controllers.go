// Package controllers holds the gin handlers. Each handler takes its
// dependencies and returns a gin.HandlerFunc; failures are recorded with
// c.Error and rendered by middleware.ErrorHandler.
package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/middleware"
	"github.com/princinho/elearnbackend/models"
)

func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		_ = c.Error(apperr.Wrap(apperr.Invalid, err.Error(), err))
		return false
	}
	return true
}

func currentUser(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		_ = c.Error(apperr.New(apperr.Unauthenticated, "Please login to access this resource"))
	}
	return user, ok
}
