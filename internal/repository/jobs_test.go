package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/atinyakov/JobTracker/internal/apperr"
	"github.com/atinyakov/JobTracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jobRowColumns = []string{"id", "title", "company", "link", "status", "notes", "owner_id"}

func setupJobMock(t *testing.T) (*PostgresJobRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresJobRepository(db), mock
}

func strPtr(s string) *string { return &s }

func TestListJobs(t *testing.T) {
	repo, mock := setupJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, title, company, link, status, notes, owner_id FROM jobs WHERE owner_id = $1 ORDER BY id OFFSET $2 LIMIT $3`)).
		WithArgs(int64(1), 0, 100).
		WillReturnRows(sqlmock.NewRows(jobRowColumns).
			AddRow(1, "SWE", "Acme", nil, "new", nil, 1).
			AddRow(2, "SRE", "Globex", "https://globex.example/jobs/2", "applied", "referral", 1))

	jobs, err := repo.List(context.Background(), 1, 0, 100)
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, int64(1), jobs[0].ID)
	assert.Nil(t, jobs[0].Link)
	assert.Nil(t, jobs[0].Notes)
	assert.Equal(t, "new", jobs[0].Status)

	require.NotNil(t, jobs[1].Link)
	assert.Equal(t, "https://globex.example/jobs/2", *jobs[1].Link)
	require.NotNil(t, jobs[1].Notes)
	assert.Equal(t, "referral", *jobs[1].Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListJobs_EmptyIsNotNil(t *testing.T) {
	repo, mock := setupJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM jobs WHERE owner_id = $1`)).
		WithArgs(int64(5), 10, 5).
		WillReturnRows(sqlmock.NewRows(jobRowColumns))

	jobs, err := repo.List(context.Background(), 5, 10, 5)
	require.NoError(t, err)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
}

func TestListJobs_QueryError(t *testing.T) {
	repo, mock := setupJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM jobs WHERE owner_id = $1`)).
		WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background(), 1, 0, 100)
	assert.Error(t, err)
}

func TestGetJob_ScopedByOwner(t *testing.T) {
	repo, mock := setupJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM jobs WHERE id = $1 AND owner_id = $2`)).
		WithArgs(int64(3), int64(1)).
		WillReturnRows(sqlmock.NewRows(jobRowColumns).AddRow(3, "SWE", "Acme", nil, "new", nil, 1))

	job, err := repo.Get(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), job.ID)
	assert.Equal(t, int64(1), job.OwnerID)
}

func TestGetJob_OtherOwnerIsNotFound(t *testing.T) {
	repo, mock := setupJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM jobs WHERE id = $1 AND owner_id = $2`)).
		WithArgs(int64(3), int64(2)).
		WillReturnRows(sqlmock.NewRows(jobRowColumns))

	_, err := repo.Get(context.Background(), 2, 3)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Job not found", apperr.MessageOf(err))
}

func TestCreateJob(t *testing.T) {
	repo, mock := setupJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`INSERT INTO jobs (title, company, link, status, notes, owner_id)`)).
		WithArgs("SWE", "Acme", nil, "new", "remote ok", int64(1)).
		WillReturnRows(sqlmock.NewRows(jobRowColumns).AddRow(10, "SWE", "Acme", nil, "new", "remote ok", 1))

	job, err := repo.Create(context.Background(), 1, models.JobInput{
		Title: "SWE", Company: "Acme", Status: "new", Notes: strPtr("remote ok"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), job.ID)
	assert.Equal(t, int64(1), job.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateJob_PartialArgs(t *testing.T) {
	repo, mock := setupJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE jobs SET`)).
		WithArgs(int64(10), int64(1), nil, nil, nil, "applied", nil).
		WillReturnRows(sqlmock.NewRows(jobRowColumns).
			AddRow(10, "SWE", "Acme", "https://acme.example", "applied", "keep me", 1))

	job, err := repo.Update(context.Background(), 1, 10, models.JobUpdate{Status: strPtr("applied")})
	require.NoError(t, err)
	assert.Equal(t, "applied", job.Status)
	assert.Equal(t, "SWE", job.Title)
	require.NotNil(t, job.Notes)
	assert.Equal(t, "keep me", *job.Notes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateJob_NotFound(t *testing.T) {
	repo, mock := setupJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE jobs SET`)).
		WithArgs(int64(10), int64(2), "x", nil, nil, nil, nil).
		WillReturnRows(sqlmock.NewRows(jobRowColumns))

	_, err := repo.Update(context.Background(), 2, 10, models.JobUpdate{Title: strPtr("x")})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeleteJob_ReturnsRemoved(t *testing.T) {
	repo, mock := setupJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM jobs WHERE id = $1 AND owner_id = $2 RETURNING`)).
		WithArgs(int64(10), int64(1)).
		WillReturnRows(sqlmock.NewRows(jobRowColumns).AddRow(10, "SWE", "Acme", nil, "new", nil, 1))

	job, err := repo.Delete(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "SWE", job.Title)
}

func TestDeleteJob_NotFound(t *testing.T) {
	repo, mock := setupJobMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`DELETE FROM jobs`)).
		WithArgs(int64(10), int64(2)).
		WillReturnRows(sqlmock.NewRows(jobRowColumns))

	_, err := repo.Delete(context.Background(), 2, 10)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
