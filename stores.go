package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"blog-api/cache"
	"blog-api/config"
	"blog-api/media"
	"blog-api/repository"
	"blog-api/repository/mongodb"
	"blog-api/repository/sqlite"
)

func openStore(ctx context.Context, cfg config.StoreConfig) (repository.Store, error) {
	switch cfg.Driver {
	case config.StorePostgres:
		dsn := cfg.Postgres.URL
		if dsn == "" {
			p := cfg.Postgres
			dsn = repository.PostgresURL(p.User, p.Password, p.Host, p.Port, p.Name, p.SSLMode)
		}
		return repository.OpenPostgres(ctx, dsn)
	case config.StoreSQLite:
		return sqlite.Open(cfg.SQLitePath)
	case config.StoreMongo:
		return mongodb.Open(ctx, cfg.MongoURI, cfg.MongoDB)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// postStore wraps store with the Redis cache when one is configured. The
// returned close func releases the Redis client.
func postStore(ctx context.Context, store repository.PostStore, cfg config.CacheConfig, logger *slog.Logger) (repository.PostStore, func() error) {
	if cfg.RedisAddr == "" {
		return store, func() error { return nil }
	}
	rc := cache.New(cfg.RedisAddr, cfg.RedisDB, cfg.TTLSeconds)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx); err != nil {
		logger.Warn("redis unreachable; reads fall through to the store", "addr", cfg.RedisAddr, "error", err)
	} else {
		logger.Info("post cache enabled", "addr", cfg.RedisAddr, "ttl_seconds", cfg.TTLSeconds)
	}
	return cache.NewPosts(store, rc, logger), rc.Close
}

func mediaHost(cfg config.MediaConfig, port string) (media.Host, string, error) {
	switch cfg.Driver {
	case config.MediaCloudinary:
		host, err := media.NewCloudinary(cfg.CloudName, cfg.APIKey, cfg.APISecret, cfg.Folder)
		return host, "", err
	case config.MediaLocal:
		publicURL := cfg.PublicURL
		if publicURL == "" {
			publicURL = "http://localhost:" + port + "/uploads"
		}
		host, err := media.NewLocal(cfg.LocalDir, publicURL)
		if err != nil {
			return nil, "", err
		}
		return host, host.Dir(), nil
	default:
		return nil, "", fmt.Errorf("unknown media driver %q", cfg.Driver)
	}
}
