package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"blog-api/models"
	"blog-api/repository"
)

const postKeyPrefix = "post:"

// tombstone marks a post key as recently written. Fills never overwrite it,
// so a read that loaded the post before a concurrent update cannot put the
// old snapshot back.
const tombstone = "-"

// DefaultTombstoneTTL bounds how long reads bypass the cache after a write.
// It must outlast the slowest store read.
const DefaultTombstoneTTL = 30 * time.Second

// Cache is the subset of RedisCache used for post snapshots.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, val string) (bool, error)
	SetFor(ctx context.Context, key string, val string, ttl time.Duration) error
}

// Posts is a cache-aside PostStore. Single post reads go through the cache;
// updates and deletes replace the entry with a tombstone after the store
// write succeeds. Lists are not cached. Cache failures are logged and
// otherwise ignored.
type Posts struct {
	repository.PostStore
	cache        Cache
	logger       *slog.Logger
	tombstoneTTL time.Duration
}

func NewPosts(store repository.PostStore, c Cache, logger *slog.Logger) *Posts {
	if logger == nil {
		logger = slog.Default()
	}
	return &Posts{PostStore: store, cache: c, logger: logger, tombstoneTTL: DefaultTombstoneTTL}
}

func PostKey(id string) string { return postKeyPrefix + id }

func (p *Posts) GetPost(ctx context.Context, id string) (*models.Post, error) {
	key := PostKey(id)

	val, err := p.cache.Get(ctx, key)
	switch {
	case err == nil && val != "" && val != tombstone:
		var post models.Post
		if jsonErr := json.Unmarshal([]byte(val), &post); jsonErr == nil {
			return &post, nil
		}
		p.logger.Warn("discarding unreadable cache entry", "key", key)
	case err != nil && !errors.Is(err, ErrMiss):
		p.logger.Warn("cache get failed", "key", key, "error", err)
	}

	post, err := p.PostStore.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if val == tombstone {
		return post, nil
	}

	b, err := json.Marshal(post)
	if err == nil {
		// Loses to a tombstone written while the store read was in flight.
		_, err = p.cache.SetNX(ctx, key, string(b))
	}
	if err != nil {
		p.logger.Warn("cache set failed", "key", key, "error", err)
	}
	return post, nil
}

func (p *Posts) UpdatePost(ctx context.Context, post *models.Post) error {
	if err := p.PostStore.UpdatePost(ctx, post); err != nil {
		return err
	}
	p.invalidate(ctx, post.ID)
	return nil
}

func (p *Posts) DeletePost(ctx context.Context, id string) error {
	if err := p.PostStore.DeletePost(ctx, id); err != nil {
		return err
	}
	p.invalidate(ctx, id)
	return nil
}

func (p *Posts) invalidate(ctx context.Context, id string) {
	if err := p.cache.SetFor(ctx, PostKey(id), tombstone, p.tombstoneTTL); err != nil {
		p.logger.Warn("cache invalidate failed", "key", PostKey(id), "error", err)
	}
}
