package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/atinyakov/JobTracker/internal/apperr"
	"github.com/atinyakov/JobTracker/internal/middleware"
	"github.com/atinyakov/JobTracker/internal/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// JobService defines the owner-scoped job operations required by the JobsHandler.
type JobService interface {
	List(ctx context.Context, ownerID int64, skip, limit int) ([]models.Job, error)
	Get(ctx context.Context, ownerID, id int64) (*models.Job, error)
	Create(ctx context.Context, ownerID int64, in models.JobInput) (*models.Job, error)
	Update(ctx context.Context, ownerID, id int64, upd models.JobUpdate) (*models.Job, error)
	Delete(ctx context.Context, ownerID, id int64) (*models.Job, error)
}

// JobsHandler serves the /jobs endpoints. It must run behind
// middleware.BearerAuth.
type JobsHandler struct {
	JobService JobService
	Log        *zap.Logger
}

// DefaultSkip and DefaultLimit apply when the query omits skip or limit.
const (
	DefaultSkip  = 0
	DefaultLimit = 100
)

// List handles GET /jobs?skip=&limit=.
func (h *JobsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	skip, err := queryInt(r, "skip", DefaultSkip)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	limit, err := queryInt(r, "limit", DefaultLimit)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	jobs, err := h.JobService.List(r.Context(), user.ID, skip, limit)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	for i := range jobs {
		jobs[i].Owner = user
	}
	writeJSON(w, http.StatusOK, jobs)
}

// Get handles GET /jobs/{id}.
func (h *JobsHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	id, err := jobID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	job, err := h.JobService.Get(r.Context(), user.ID, id)
	h.respondJob(w, user, job, err)
}

// Create handles POST /jobs.
func (h *JobsHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	var in models.JobInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, h.Log, err)
		return
	}

	job, err := h.JobService.Create(r.Context(), user.ID, in)
	h.respondJob(w, user, job, err)
}

// Update handles PUT /jobs/{id}. Only the fields present in the body change.
func (h *JobsHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	id, err := jobID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	var upd models.JobUpdate
	if err := decodeJSON(w, r, &upd); err != nil {
		writeError(w, h.Log, err)
		return
	}

	job, err := h.JobService.Update(r.Context(), user.ID, id, upd)
	h.respondJob(w, user, job, err)
}

// Delete handles DELETE /jobs/{id} and answers with the removed job.
func (h *JobsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := h.user(w, r)
	if !ok {
		return
	}
	id, err := jobID(r)
	if err != nil {
		writeError(w, h.Log, err)
		return
	}

	job, err := h.JobService.Delete(r.Context(), user.ID, id)
	h.respondJob(w, user, job, err)
}

func (h *JobsHandler) user(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, h.Log, apperr.InvalidToken(nil))
		return nil, false
	}
	return user, true
}

func (h *JobsHandler) respondJob(w http.ResponseWriter, owner *models.User, job *models.Job, err error) {
	if err != nil {
		writeError(w, h.Log, err)
		return
	}
	job.Owner = owner
	writeJSON(w, http.StatusOK, job)
}

// jobID parses the {id} URL parameter. A value that cannot be a job id is
// reported as not found, like any other id the caller does not own.
func jobID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound("Job not found")
	}
	return id, nil
}

func queryInt(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation(name, name+" must be an integer")
	}
	return v, nil
}
