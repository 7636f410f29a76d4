package service

import (
	"context"
	"strings"

	"github.com/atinyakov/JobTracker/internal/apperr"
	"github.com/atinyakov/JobTracker/internal/models"
)

// JobRepository defines the owner-scoped persistence operations needed by the JobService.
type JobRepository interface {
	// List returns jobs of ownerID ordered by insertion.
	List(ctx context.Context, ownerID int64, skip, limit int) ([]models.Job, error)
	// Get returns job id when owned by ownerID.
	Get(ctx context.Context, ownerID, id int64) (*models.Job, error)
	// Create stores a new job for ownerID.
	Create(ctx context.Context, ownerID int64, in models.JobInput) (*models.Job, error)
	// Update merges the supplied fields into job id when owned by ownerID.
	Update(ctx context.Context, ownerID, id int64, upd models.JobUpdate) (*models.Job, error)
	// Delete removes job id when owned by ownerID and returns it.
	Delete(ctx context.Context, ownerID, id int64) (*models.Job, error)
}

// JobService implements the job-tracking operations. Every call is scoped
// to the authenticated owner.
type JobService struct {
	repo JobRepository
}

// NewJobService constructs a JobService with the provided JobRepository.
func NewJobService(repo JobRepository) *JobService {
	return &JobService{repo: repo}
}

// List returns a page of the owner's jobs.
func (s *JobService) List(ctx context.Context, ownerID int64, skip, limit int) ([]models.Job, error) {
	if skip < 0 {
		return nil, apperr.Validation("skip", "skip must not be negative")
	}
	if limit < 0 {
		return nil, apperr.Validation("limit", "limit must not be negative")
	}
	return s.repo.List(ctx, ownerID, skip, limit)
}

// Get returns one of the owner's jobs.
func (s *JobService) Get(ctx context.Context, ownerID, id int64) (*models.Job, error) {
	return s.repo.Get(ctx, ownerID, id)
}

// Create stores a new job, defaulting the status to "new".
func (s *JobService) Create(ctx context.Context, ownerID int64, in models.JobInput) (*models.Job, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Company = strings.TrimSpace(in.Company)
	in.Status = strings.TrimSpace(in.Status)
	if in.Title == "" {
		return nil, apperr.Validation("title", "title is required")
	}
	if in.Company == "" {
		return nil, apperr.Validation("company", "company is required")
	}
	if in.Status == "" {
		in.Status = models.DefaultJobStatus
	}
	return s.repo.Create(ctx, ownerID, in)
}

// Update applies a partial update to one of the owner's jobs.
func (s *JobService) Update(ctx context.Context, ownerID, id int64, upd models.JobUpdate) (*models.Job, error) {
	required := []struct {
		field string
		value **string
	}{
		{"title", &upd.Title},
		{"company", &upd.Company},
		{"status", &upd.Status},
	}
	for _, r := range required {
		if *r.value == nil {
			continue
		}
		trimmed := strings.TrimSpace(**r.value)
		if trimmed == "" {
			return nil, apperr.Validation(r.field, r.field+" must not be empty")
		}
		*r.value = &trimmed
	}
	return s.repo.Update(ctx, ownerID, id, upd)
}

// Delete removes one of the owner's jobs and returns it.
func (s *JobService) Delete(ctx context.Context, ownerID, id int64) (*models.Job, error) {
	return s.repo.Delete(ctx, ownerID, id)
}
