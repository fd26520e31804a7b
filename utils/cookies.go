package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/auth"
	"github.com/princinho/elearnbackend/config"
)

const (
	AccessTokenCookie  = "access_token"
	RefreshTokenCookie = "refresh_token"
)

// SetTokenCookies writes both session cookies with max-ages matching the
// token lifetimes.
func SetTokenCookies(c *gin.Context, cfg config.Cookies, pair auth.TokenPair) {
	setCookie(c, cfg, AccessTokenCookie, pair.AccessToken, int(pair.AccessTTL.Seconds()))
	setCookie(c, cfg, RefreshTokenCookie, pair.RefreshToken, int(pair.RefreshTTL.Seconds()))
}

func ClearTokenCookies(c *gin.Context, cfg config.Cookies) {
	setCookie(c, cfg, AccessTokenCookie, "", -1)
	setCookie(c, cfg, RefreshTokenCookie, "", -1)
}

func setCookie(c *gin.Context, cfg config.Cookies, name, value string, maxAge int) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   cfg.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
