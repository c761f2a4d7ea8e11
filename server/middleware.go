package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blog-api/access"
)

const (
	identityKey   = "identity"
	tokenErrorKey = "token_error"
)

func (s *Server) requestLogging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.ClientIP(),
		}
		if route := c.FullPath(); route != "" {
			fields = append(fields, "route", route)
		}

		if status >= http.StatusInternalServerError {
			s.logger.Error("request complete", fields...)
			return
		}
		s.logger.Debug("request complete", fields...)
	}
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("X-XSS-Protection", "1; mode=block")
		c.Next()
	}
}

// identify attaches the requester's identity. A bad token downgrades to
// Anonymous here; requireIdentity turns that into a 401 where it matters.
func (s *Server) identify(c *gin.Context) {
	who, err := s.accounts.Identify(c.GetHeader("Authorization"))
	if err != nil {
		c.Set(identityKey, access.Anonymous)
		c.Set(tokenErrorKey, err)
		c.Next()
		return
	}
	c.Set(identityKey, who)
	c.Next()
}

func (s *Server) requireIdentity(c *gin.Context) {
	if !identity(c).IsAnonymous() {
		c.Next()
		return
	}
	if _, failed := c.Get(tokenErrorKey); failed {
		s.writeError(c, unauthorized("Not authorized, token failed"))
		return
	}
	s.writeError(c, unauthorized("Not authorized, no token"))
}

func identity(c *gin.Context) access.Identity {
	if v, ok := c.Get(identityKey); ok {
		if who, ok := v.(access.Identity); ok {
			return who
		}
	}
	return access.Anonymous
}
