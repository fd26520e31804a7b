package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/auth"
	"github.com/princinho/elearnbackend/config"
	"github.com/princinho/elearnbackend/utils"
)

// Refresher is implemented by *auth.SessionManager.
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (auth.Identity, auth.TokenPair, error)
}

// RefreshSession rotates the token pair from the refresh_token cookie, writes
// both cookies and attaches the reloaded identity to the request.
func RefreshSession(refresher Refresher, cookies config.Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(utils.RefreshTokenCookie)

		id, pair, err := refresher.Refresh(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		utils.SetTokenCookies(c, cookies, pair)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}
