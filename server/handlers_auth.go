package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"blog-api/auth"
	"blog-api/models"
)

func sessionBody(sess *auth.Session) gin.H {
	return gin.H{
		"token":      sess.Token,
		"expires_at": sess.ExpiresAt,
		"user":       sess.User.Author(),
	}
}

func (s *Server) handleRegister(c *gin.Context) {
	var req models.RegisterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, badRequest(err, ErrCodeInvalidJSON))
		return
	}
	sess, err := s.accounts.Register(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionBody(sess))
}

func (s *Server) handleLogin(c *gin.Context) {
	var req models.LoginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, badRequest(err, ErrCodeInvalidJSON))
		return
	}
	sess, err := s.accounts.Login(c.Request.Context(), req)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionBody(sess))
}

func (s *Server) handleMe(c *gin.Context) {
	user, err := s.accounts.Me(c.Request.Context(), identity(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, user.Author())
}
