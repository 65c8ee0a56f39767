package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/moviereview/internal/api/session"
	"github.com/martijn/moviereview/internal/api/view"
	"go.uber.org/zap"
)

// ErrorHandlerMiddleware renders the error page for panics and for errors
// handlers attached with c.Error. Store and connectivity failures end up here.
func ErrorHandlerMiddleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("panic while handling request",
					zap.Any("panic", rec),
					zap.String("path", c.Request.URL.Path),
					zap.Stack("stack"),
				)
				renderError(c)
				c.Abort()
			}
		}()

		c.Next()

		if len(c.Errors) > 0 {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.Error(c.Errors.Last().Err),
			)
			if !c.Writer.Written() {
				renderError(c)
			}
		}
	}
}

func renderError(c *gin.Context) {
	c.HTML(http.StatusInternalServerError, view.Error, gin.H{
		"Title":   "Error",
		"Query":   "",
		"User":    session.CurrentUser(c),
		"Flashes": []string(nil),
		"Message": "",
	})
}
