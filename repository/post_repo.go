package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"blog-api/models"
)

const postColumns = `id, title, content, featured_image, visibility, author_id, created_at, updated_at`

// CreatePost inserts the post and its activity log entry in one transaction.
func (r *PostgresStore) CreatePost(ctx context.Context, p *models.Post) error {
	return r.withLogTx(ctx, ActionNewPost, p.ID, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO posts(`+postColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
			p.ID, p.Title, p.Content, p.FeaturedImage, string(p.Visibility), p.AuthorID, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
}

func (r *PostgresStore) GetPost(ctx context.Context, id string) (*models.Post, error) {
	row := r.DB.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id=$1`, id)
	p, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

// UpdatePost replaces the mutable fields. author_id and created_at are
// never written after creation.
func (r *PostgresStore) UpdatePost(ctx context.Context, p *models.Post) error {
	return r.withLogTx(ctx, ActionUpdatePost, p.ID, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE posts SET title=$1, content=$2, featured_image=$3, visibility=$4, updated_at=$5 WHERE id=$6`,
			p.Title, p.Content, p.FeaturedImage, string(p.Visibility), p.UpdatedAt, p.ID,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PostgresStore) DeletePost(ctx context.Context, id string) error {
	return r.withLogTx(ctx, ActionDeletePost, id, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `DELETE FROM posts WHERE id=$1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *PostgresStore) ListPublicPosts(ctx context.Context) ([]models.Post, error) {
	return r.queryPosts(ctx,
		`SELECT `+postColumns+`
		 FROM posts
		 WHERE visibility=$1
		 ORDER BY created_at DESC`, string(models.Public))
}

func (r *PostgresStore) ListPostsByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return r.queryPosts(ctx,
		`SELECT `+postColumns+`
		 FROM posts
		 WHERE author_id=$1
		 ORDER BY created_at DESC`, authorID)
}

func (r *PostgresStore) queryPosts(ctx context.Context, sql string, args ...any) ([]models.Post, error) {
	rows, err := r.DB.Query(ctx, sql, args...)
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

func (r *PostgresStore) withLogTx(ctx context.Context, action, postID string, fn func(pgx.Tx) error) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }() // no-op after Commit

	if err := fn(tx); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO activity_logs(action, post_id) VALUES ($1,$2)`,
		action, postID,
	); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func scanPost(row pgx.Row) (*models.Post, error) {
	var p models.Post
	var visibility string
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.FeaturedImage, &visibility, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Visibility = models.Visibility(visibility)
	return &p, nil
}
