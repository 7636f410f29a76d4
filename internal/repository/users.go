// Package repository provides PostgreSQL persistence for users and jobs.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/JobTracker/internal/apperr"
	"github.com/atinyakov/JobTracker/internal/models"
)

// PostgresUserRepository stores user credentials in PostgreSQL.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a PostgresUserRepository with the given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

const userColumns = `id, username, email, hashed_password`

// FindByUsername returns the user with the given username, or an apperr
// not-found error when there is none.
func (r *PostgresUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	)
	return scanUser(row)
}

// FindByID returns the user with the given id, or an apperr not-found error
// when there is none.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		id,
	)
	return scanUser(row)
}

// Create inserts a new user. A username or email that is already taken
// yields an apperr duplicate-key error naming the field.
func (r *PostgresUserRepository) Create(ctx context.Context, username, email, passwordHash string) (*models.User, error) {
	user := &models.User{Username: username, Email: email, PasswordHash: passwordHash}
	err := r.DB.QueryRowContext(ctx,
		`INSERT INTO users (username, email, hashed_password) VALUES ($1, $2, $3) RETURNING id`,
		username, email, passwordHash,
	).Scan(&user.ID)
	if err != nil {
		return nil, fmt.Errorf("create user: %w", mapWriteError(err))
	}
	return user, nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.NotFound("User not found")
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
