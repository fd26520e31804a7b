package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/auth"
	"github.com/princinho/elearnbackend/models"
	"github.com/princinho/elearnbackend/utils"
)

// IdentityResolver is implemented by *auth.SessionManager.
type IdentityResolver interface {
	Resolve(ctx context.Context, accessToken string) (auth.Identity, error)
}

// Authenticate requires a valid access token, read from the access_token
// cookie or an Authorization bearer header. An identity already attached by
// RefreshSession is accepted as is.
func Authenticate(resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if _, ok := auth.IdentityFrom(ctx); ok {
			c.Next()
			return
		}

		id, err := resolver.Resolve(ctx, accessToken(c))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(ctx, id))
		c.Next()
	}
}

// AuthorizeRoles must run after Authenticate.
func AuthorizeRoles(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		id, ok := auth.IdentityFrom(c.Request.Context())
		if !ok {
			_ = c.Error(apperr.New(apperr.Unauthenticated, "Please login to access this resource"))
			c.Abort()
			return
		}
		if _, ok := allowed[id.User.Role]; !ok {
			_ = c.Error(apperr.New(apperr.Forbidden, "Role: "+string(id.User.Role)+" is not allowed to access this resource"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user attached by Authenticate or RefreshSession.
func CurrentUser(c *gin.Context) (models.User, bool) {
	id, ok := auth.IdentityFrom(c.Request.Context())
	if !ok {
		return models.User{}, false
	}
	return id.User, true
}

func accessToken(c *gin.Context) string {
	if v, err := c.Cookie(utils.AccessTokenCookie); err == nil && v != "" {
		return v
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return ""
}
