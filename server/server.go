// Package server exposes the blog over HTTP with gin.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"blog-api/auth"
	"blog-api/blog"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second

	// formOverhead is allowed on top of the image limit for the other
	// multipart fields.
	formOverhead int64 = 1 << 20
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Addr          string
	Env           string
	Production    bool
	FrontendURL   string
	MediaDir      string // served under /uploads when set
	MaxImageBytes int64
}

type Server struct {
	opts     Options
	posts    *blog.Service
	accounts *auth.Service
	db       Pinger
	logger   *slog.Logger
	engine   *gin.Engine
}

func New(opts Options, posts *blog.Service, accounts *auth.Service, db Pinger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		opts:     opts,
		posts:    posts,
		accounts: accounts,
		db:       db,
		logger:   logger,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the gin engine; tests drive it through httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves until ctx is cancelled, then drains in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.opts.Addr, "env", s.opts.Env)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
