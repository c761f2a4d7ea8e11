package server

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"blog-api/media"
)

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(s.requestLogging(), gin.Recovery(), securityHeaders(), s.cors())
	r.MaxMultipartMemory = s.maxImageBytes() + formOverhead

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, s.opts.FrontendURL)
	})
	r.GET("/health", s.handleHealth)
	r.GET("/db/health", s.handleDBHealth)
	if s.opts.MediaDir != "" {
		r.Static("/uploads", s.opts.MediaDir)
	}

	api := r.Group("/api", s.identify)

	accounts := api.Group("/auth")
	accounts.POST("/register", s.handleRegister)
	accounts.POST("/login", s.handleLogin)
	accounts.GET("/me", s.requireIdentity, s.handleMe)

	blogs := api.Group("/blogs")
	blogs.GET("/public", s.handleListPublic)
	blogs.GET("/my-blogs", s.requireIdentity, s.handleListMine)
	blogs.GET("/:id", s.handleGetPost)
	blogs.GET("/:id/edit", s.requireIdentity, s.handleGetPostForEdit)
	blogs.POST("", s.requireIdentity, s.handleCreatePost)
	blogs.PUT("/:id", s.requireIdentity, s.handleUpdatePost)
	blogs.DELETE("/:id", s.requireIdentity, s.handleDeletePost)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"message":    "Route not found",
			"code":       "not_found",
			"error_code": ErrCodeRouteNotFound,
		})
	})
	return r
}

func (s *Server) cors() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	if s.opts.FrontendURL == "" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = []string{s.opts.FrontendURL}
		cfg.AllowCredentials = true
	}
	cfg.AddAllowHeaders("Authorization")
	return cors.New(cfg)
}

func (s *Server) maxImageBytes() int64 {
	if s.opts.MaxImageBytes > 0 {
		return s.opts.MaxImageBytes
	}
	return media.DefaultMaxImageBytes
}
