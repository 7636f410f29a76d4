package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/atinyakov/JobTracker/internal/apperr"
	"github.com/atinyakov/JobTracker/internal/models"
)

// PostgresJobRepository stores jobs in PostgreSQL. Every statement is scoped
// by owner_id, so a job owned by someone else is indistinguishable from one
// that does not exist.
type PostgresJobRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresJobRepository creates a PostgresJobRepository using the provided *sql.DB.
func NewPostgresJobRepository(db *sql.DB) *PostgresJobRepository {
	return &PostgresJobRepository{DB: db}
}

const jobColumns = `id, title, company, link, status, notes, owner_id`

func errJobNotFound() error {
	return apperr.NotFound("Job not found")
}

// List returns up to limit jobs of ownerID in insertion order, skipping the first skip.
func (r *PostgresJobRepository) List(ctx context.Context, ownerID int64, skip, limit int) ([]models.Job, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE owner_id = $1 ORDER BY id OFFSET $2 LIMIT $3`,
		ownerID, skip, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]models.Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, *job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// Get returns job id if it belongs to ownerID.
func (r *PostgresJobRepository) Get(ctx context.Context, ownerID, id int64) (*models.Job, error) {
	row := r.DB.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1 AND owner_id = $2`,
		id, ownerID,
	)
	return scanJobRow(row)
}

// Create inserts a job owned by ownerID. in.Status must already be set.
func (r *PostgresJobRepository) Create(ctx context.Context, ownerID int64, in models.JobInput) (*models.Job, error) {
	row := r.DB.QueryRowContext(ctx,
		`INSERT INTO jobs (title, company, link, status, notes, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+jobColumns,
		in.Title, in.Company, in.Link, in.Status, in.Notes, ownerID,
	)
	job, err := scanJobRow(row)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", mapWriteError(err))
	}
	return job, nil
}

// Update merges the supplied fields of upd into job id and returns the
// result. Fields left nil keep their stored values.
func (r *PostgresJobRepository) Update(ctx context.Context, ownerID, id int64, upd models.JobUpdate) (*models.Job, error) {
	row := r.DB.QueryRowContext(ctx,
		`UPDATE jobs SET
			title = COALESCE($3, title),
			company = COALESCE($4, company),
			link = COALESCE($5, link),
			status = COALESCE($6, status),
			notes = COALESCE($7, notes)
		WHERE id = $1 AND owner_id = $2
		RETURNING `+jobColumns,
		id, ownerID, upd.Title, upd.Company, upd.Link, upd.Status, upd.Notes,
	)
	job, err := scanJobRow(row)
	if err != nil {
		return nil, fmt.Errorf("update job: %w", mapWriteError(err))
	}
	return job, nil
}

// Delete removes job id and returns the removed record.
func (r *PostgresJobRepository) Delete(ctx context.Context, ownerID, id int64) (*models.Job, error) {
	row := r.DB.QueryRowContext(ctx,
		`DELETE FROM jobs WHERE id = $1 AND owner_id = $2 RETURNING `+jobColumns,
		id, ownerID,
	)
	job, err := scanJobRow(row)
	if err != nil {
		return nil, fmt.Errorf("delete job: %w", err)
	}
	return job, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*models.Job, error) {
	var job models.Job
	if err := s.Scan(&job.ID, &job.Title, &job.Company, &job.Link, &job.Status, &job.Notes, &job.OwnerID); err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return &job, nil
}

func scanJobRow(row *sql.Row) (*models.Job, error) {
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errJobNotFound()
		}
		return nil, err
	}
	return job, nil
}
