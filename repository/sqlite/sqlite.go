// Package sqlite is an embedded repository.Store for local development and
// tests.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"blog-api/models"
	"blog-api/repository"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS users (
  id            TEXT PRIMARY KEY,
  name          TEXT NOT NULL,
  email         TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at    INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS posts (
  id             TEXT PRIMARY KEY,
  title          TEXT NOT NULL,
  content        TEXT NOT NULL,
  featured_image TEXT NOT NULL,
  visibility     TEXT NOT NULL CHECK (visibility IN ('public', 'private')),
  author_id      TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  created_at     INTEGER NOT NULL,
  updated_at     INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_posts_visibility_created ON posts(visibility, created_at);
CREATE INDEX IF NOT EXISTS idx_posts_author_created ON posts(author_id, created_at);

CREATE TABLE IF NOT EXISTS activity_logs (
  id         INTEGER PRIMARY KEY AUTOINCREMENT,
  action     TEXT NOT NULL,
  post_id    TEXT NOT NULL,
  created_at INTEGER NOT NULL
);
`

const postColumns = `id, title, content, featured_image, visibility, author_id, created_at, updated_at`

// Store keeps timestamps as unix nanoseconds so ordering is numeric.
type Store struct {
	db *sql.DB
}

var _ repository.Store = (*Store)(nil)

// Open opens (or creates) the database at path. ":memory:" is accepted.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	return s.withLogTx(ctx, repository.ActionNewPost, p.ID, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO posts(`+postColumns+`) VALUES (?,?,?,?,?,?,?,?)`,
			p.ID, p.Title, p.Content, p.FeaturedImage, string(p.Visibility), p.AuthorID,
			p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano(),
		)
		return err
	})
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM posts WHERE id=?`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	return p, err
}

func (s *Store) UpdatePost(ctx context.Context, p *models.Post) error {
	return s.withLogTx(ctx, repository.ActionUpdatePost, p.ID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE posts SET title=?, content=?, featured_image=?, visibility=?, updated_at=? WHERE id=?`,
			p.Title, p.Content, p.FeaturedImage, string(p.Visibility), p.UpdatedAt.UnixNano(), p.ID,
		)
		return requireAffected(res, err)
	})
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	return s.withLogTx(ctx, repository.ActionDeletePost, id, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM posts WHERE id=?`, id)
		return requireAffected(res, err)
	})
}

func (s *Store) ListPublicPosts(ctx context.Context) ([]models.Post, error) {
	return s.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts WHERE visibility=? ORDER BY created_at DESC`,
		string(models.Public))
}

func (s *Store) ListPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return s.queryPosts(ctx,
		`SELECT `+postColumns+` FROM posts WHERE author_id=? ORDER BY created_at DESC`,
		authorID)
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users(id, name, email, password_hash, created_at) VALUES (?,?,?,?,?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt.UnixNano(),
	)
	if isUniqueConstraint(err, "users.email") {
		return repository.ErrDuplicateEmail
	}
	return err
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id=?`, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE email=?`, email)
}

func (s *Store) getUser(ctx context.Context, query, arg string) (*models.User, error) {
	var u models.User
	var created int64
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = fromNanos(created)
	return &u, nil
}

func (s *Store) queryPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (s *Store) withLogTx(ctx context.Context, action, postID string, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO activity_logs(action, post_id, created_at) VALUES (?,?,?)`,
		action, postID, time.Now().UnixNano(),
	); err != nil {
		return err
	}
	return tx.Commit()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*models.Post, error) {
	var p models.Post
	var visibility string
	var created, updated int64
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.FeaturedImage, &visibility, &p.AuthorID, &created, &updated); err != nil {
		return nil, err
	}
	p.Visibility = models.Visibility(visibility)
	p.CreatedAt = fromNanos(created)
	p.UpdatedAt = fromNanos(updated)
	return &p, nil
}

func requireAffected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

func isUniqueConstraint(err error, column string) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed: "+column)
}
