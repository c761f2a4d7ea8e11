package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"blog-api/models"
)

const uniqueViolation = "23505"

func (r *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	_, err := r.DB.Exec(ctx,
		`INSERT INTO users(id, name, email, password_hash, created_at) VALUES ($1,$2,$3,$4,$5)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicateEmail
	}
	return err
}

func (r *PostgresStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	return r.getUser(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE id=$1`, id)
}

func (r *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, `SELECT id, name, email, password_hash, created_at FROM users WHERE email=$1`, email)
}

func (r *PostgresStore) getUser(ctx context.Context, sql string, arg string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRow(ctx, sql, arg).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
