package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/auth"
	"github.com/princinho/elearnbackend/config"
	"github.com/princinho/elearnbackend/dto"
	"github.com/princinho/elearnbackend/services"
	"github.com/princinho/elearnbackend/utils"
)

func Registration(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.RegistrationDTO
		if !bindJSON(c, &body) {
			return
		}

		token, err := users.Register(c.Request.Context(), body)
		if err != nil {
			_ = c.Error(err)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success":         true,
			"message":         "Please check your email: " + body.Email + " to activate your account!",
			"activationToken": token,
		})
	}
}

func ActivateUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.ActivationDTO
		if !bindJSON(c, &body) {
			return
		}

		if _, err := users.Activate(c.Request.Context(), body); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true})
	}
}

func Login(users *services.UserService, cookies config.Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.LoginDTO
		if !bindJSON(c, &body) {
			return
		}

		user, pair, err := users.Login(c.Request.Context(), body)
		if err != nil {
			_ = c.Error(err)
			return
		}

		utils.SetTokenCookies(c, cookies, pair)
		c.JSON(http.StatusOK, gin.H{"success": true, "user": user, "accessToken": pair.AccessToken})
	}
}

func SocialAuth(users *services.UserService, cookies config.Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.SocialAuthDTO
		if !bindJSON(c, &body) {
			return
		}

		user, pair, err := users.SocialAuth(c.Request.Context(), body.IDToken)
		if err != nil {
			_ = c.Error(err)
			return
		}

		utils.SetTokenCookies(c, cookies, pair)
		c.JSON(http.StatusOK, gin.H{"success": true, "user": user, "accessToken": pair.AccessToken})
	}
}

func Logout(users *services.UserService, cookies config.Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		utils.ClearTokenCookies(c, cookies)
		if err := users.Logout(c.Request.Context(), user.ID.Hex()); err != nil {
			_ = c.Error(err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
	}
}

// RefreshToken runs behind middleware.RefreshSession, which has already
// rotated the cookies.
func RefreshToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := auth.IdentityFrom(c.Request.Context())
		if !ok {
			_ = c.Error(apperr.New(apperr.SessionExpired, "Please login to access this resource"))
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "accessToken": id.AccessToken})
	}
}
