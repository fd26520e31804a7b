package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/dto"
	"github.com/princinho/elearnbackend/services"
)

func Me() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
	}
}

func UpdateUserInfo(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		var body dto.UpdateUserInfoDTO
		if !bindJSON(c, &body) {
			return
		}

		updated, err := users.UpdateInfo(c.Request.Context(), user.ID.Hex(), body)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "user": updated})
	}
}

func UpdatePassword(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		var body dto.UpdatePasswordDTO
		if !bindJSON(c, &body) {
			return
		}

		updated, err := users.UpdatePassword(c.Request.Context(), user.ID.Hex(), body)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "user": updated})
	}
}

func UpdateAvatar(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}
		var body dto.UpdateAvatarDTO
		if !bindJSON(c, &body) {
			return
		}

		updated, err := users.UpdateAvatar(c.Request.Context(), user.ID.Hex(), body)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": updated})
	}
}

func GetUsers(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := users.List(c.Request.Context())
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "users": list})
	}
}

func UpdateUserRole(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.UpdateRoleDTO
		if !bindJSON(c, &body) {
			return
		}

		updated, err := users.UpdateRole(c.Request.Context(), body)
		if err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "user": updated})
	}
}

func DeleteUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			_ = c.Error(apperr.New(apperr.Invalid, "User id is required"))
			return
		}

		if err := users.Delete(c.Request.Context(), id); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "User deleted successfully"})
	}
}
