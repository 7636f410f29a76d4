// Package models defines the core data structures for users and tracked jobs.
package models

// DefaultJobStatus is the status a job gets when none is supplied.
const DefaultJobStatus = "new"

// JobStatus values offered by the client. The server accepts any non-empty status.
const (
	StatusNew       = "new"
	StatusApplied   = "applied"
	StatusInterview = "interview"
	StatusOffer     = "offer"
	StatusRejected  = "rejected"
)

// KnownStatuses lists the statuses in their usual progression order.
var KnownStatuses = []string{StatusNew, StatusApplied, StatusInterview, StatusOffer, StatusRejected}

// User represents an application user with credentials.
type User struct {
	// ID is the system-assigned identifier.
	ID int64 `json:"id"`
	// Username is the unique login name.
	Username string `json:"username"`
	// Email is the unique contact address.
	Email string `json:"email"`
	// PasswordHash is the bcrypt hash of the password. Never serialized.
	PasswordHash string `json:"-"`
}

// Job is a tracked job application owned by exactly one user.
type Job struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Company string  `json:"company"`
	Link    *string `json:"link"`
	Status  string  `json:"status"`
	Notes   *string `json:"notes"`
	OwnerID int64   `json:"owner_id"`
	// Owner is filled by the HTTP layer from the authenticated user.
	Owner *User `json:"owner,omitempty"`
}

// JobInput holds the fields of a new job.
type JobInput struct {
	Title   string  `json:"title" validate:"required,max=255"`
	Company string  `json:"company" validate:"required,max=255"`
	Link    *string `json:"link,omitempty" validate:"omitempty,max=2048"`
	Status  string  `json:"status,omitempty" validate:"omitempty,max=64"`
	Notes   *string `json:"notes,omitempty"`
}

// JobUpdate holds a partial update. A nil field is left unchanged.
type JobUpdate struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,max=255"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=255"`
	Link    *string `json:"link,omitempty" validate:"omitempty,max=2048"`
	Status  *string `json:"status,omitempty" validate:"omitempty,max=64"`
	Notes   *string `json:"notes,omitempty"`
}

// Empty reports whether the update carries no fields.
func (u JobUpdate) Empty() bool {
	return u.Title == nil && u.Company == nil && u.Link == nil && u.Status == nil && u.Notes == nil
}

