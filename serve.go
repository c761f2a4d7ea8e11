package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"blog-api/auth"
	"blog-api/blog"
	"blog-api/server"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := opts.setup()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := slog.Default().With("component", "server")
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("opening store", "driver", cfg.Store.Driver)
	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Migrate(ctx); err != nil {
		return err
	}

	posts, closeCache := postStore(ctx, store, cfg.Cache, logger)
	defer closeCache()

	host, mediaDir, err := mediaHost(cfg.Media, cfg.Port)
	if err != nil {
		return err
	}

	accounts := auth.NewService(store, auth.NewTokens(cfg.JWTSecret, cfg.TokenTTL))
	blogs := blog.NewService(posts, store, host,
		blog.WithMaxImageBytes(cfg.Media.MaxImageBytes),
		blog.WithLogger(logger),
	)

	srv := server.New(server.Options{
		Addr:          ":" + cfg.Port,
		Env:           cfg.Env,
		Production:    cfg.IsProduction(),
		FrontendURL:   cfg.FrontendURL,
		MediaDir:      mediaDir,
		MaxImageBytes: cfg.Media.MaxImageBytes,
	}, blogs, accounts, store, logger)
	return srv.ListenAndServe(ctx)
}
