package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK", "environment": s.opts.Env})
}

func (s *Server) handleDBHealth(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusOK, gin.H{"db_ok": true})
		return
	}
	if err := s.db.Ping(c.Request.Context()); err != nil {
		s.logger.Error("store ping failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"db_ok":      false,
			"code":       "unavailable",
			"error_code": ErrCodeStoreDown,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"db_ok": true})
}
