package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/princinho/elearnbackend/apperr"
	"github.com/princinho/elearnbackend/logging"
)

// ErrorHandler renders the last error recorded with c.Error. Causes of
// server-side failures are logged and never sent to the client.
func ErrorHandler(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		kind := apperr.KindOf(err)
		status := kind.Status()

		if status >= http.StatusInternalServerError {
			log.Error(c.Request.Context(), "request failed",
				"kind", kind.String(),
				"path", c.FullPath(),
				"err", err,
			)
		}
		if c.Writer.Written() {
			return
		}
		c.JSON(status, gin.H{"success": false, "message": apperr.Message(err)})
	}
}
