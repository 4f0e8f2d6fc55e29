package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/filedepot/filedepot/internal/ratelimiter"
)

// userIDKey is the gin context key under which the auth middleware
// stores the authenticated user id.
const userIDKey = "userID"

// authMiddleware resolves the X-Token header to a user id and aborts
// with 401 if it cannot.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("X-Token")

		userID, err := s.service.Authenticate(c.Request.Context(), token)
		if err != nil {
			writeError(c, err)
			c.Abort()
			return
		}

		c.Set(userIDKey, userID)
		c.Next()
	}
}

// rateLimitMiddleware rejects requests above the configured rate with 429.
func rateLimitMiddleware(limiter *ratelimiter.RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}

// metricsMiddleware records request latency by method, route and status.
func (s *Server) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
