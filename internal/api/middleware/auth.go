package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/moviereview/internal/api/session"
	"go.uber.org/zap"
)

const msgLoginRequired = "Please log in first"

// RequireLogin sends anonymous visitors to the login page with a notice
func RequireLogin(store session.Store, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := session.FromContext(c)
		if sess.User != "" {
			c.Next()
			return
		}

		sess.AddFlash(msgLoginRequired)
		if err := store.Save(c.Request.Context(), c.Writer, c.Request, sess); err != nil {
			log.Error("failed to save session", zap.Error(err))
		}
		c.Redirect(http.StatusFound, "/login")
		c.Abort()
	}
}
