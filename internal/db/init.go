// Package db opens the PostgreSQL connection pool and creates the schema.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Schema is applied at startup. jobs.owner_id intentionally has no ON DELETE
// action: users are never deleted.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    username TEXT NOT NULL UNIQUE,
    email TEXT NOT NULL UNIQUE,
    hashed_password TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS jobs (
    id BIGSERIAL PRIMARY KEY,
    title TEXT NOT NULL,
    company TEXT NOT NULL,
    link TEXT,
    status TEXT NOT NULL DEFAULT 'new',
    notes TEXT,
    owner_id BIGINT NOT NULL REFERENCES users(id)
);

CREATE INDEX IF NOT EXISTS jobs_owner_id_idx ON jobs (owner_id);
CREATE INDEX IF NOT EXISTS jobs_status_idx ON jobs (status);
CREATE INDEX IF NOT EXISTS jobs_title_idx ON jobs (title);
CREATE INDEX IF NOT EXISTS jobs_company_idx ON jobs (company);
`

const pingTimeout = 5 * time.Second

// InitPostgres opens a connection pool for dsn, checks it is reachable and
// applies Schema.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := Prepare(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Prepare pings db and applies Schema.
func Prepare(db *sql.DB) error {
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
