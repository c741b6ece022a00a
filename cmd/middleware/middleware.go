package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wb-go/wbf/zlog"

	"sparxfest/internal/auth"
)

func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		zlog.Logger.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request handled")
	}
}

// AdminAuthMiddleware gates the admin routes. The session token is verified
// on every request, so a session that expires while the dashboard is open is
// caught on the very next call and the client redirects to login.
func AdminAuthMiddleware(sessions *auth.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "error": gin.H{
				"code": "AUTH_FAILED", "desc": "Missing session token",
			}})
			return
		}

		email, err := sessions.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			zlog.Logger.Warn().Str("path", c.Request.URL.Path).Msg("rejected admin request with invalid session")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"status": "error", "error": gin.H{
				"code": "AUTH_FAILED", "desc": "Session expired. Please sign in again.",
			}})
			return
		}

		c.Set("admin_email", email)
		c.Next()
	}
}
