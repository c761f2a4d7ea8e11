// Package repository persists posts and users. The Postgres store lives in
// this package; embedded and document-store variants live in the sqlite
// and mongo subpackages and satisfy the same Store interface.
package repository

import (
	"context"
	"errors"

	"blog-api/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("duplicate email")
)

// PostStore lists are ordered newest first.
type PostStore interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPost(ctx context.Context, id string) (*models.Post, error)
	UpdatePost(ctx context.Context, post *models.Post) error
	DeletePost(ctx context.Context, id string) error
	ListPublicPosts(ctx context.Context) ([]models.Post, error)
	ListPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

type Store interface {
	PostStore
	UserStore
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Activity log actions written alongside post mutations.
const (
	ActionNewPost    = "new_post"
	ActionUpdatePost = "update_post"
	ActionDeletePost = "delete_post"
)
