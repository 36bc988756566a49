package store

import "jobportal/pkg/domain"

// JobStore is the typed CRUD facade over one persistence adapter. The
// store assigns ids and creation timestamps; callers never choose them.
type JobStore interface {
	// CreateJob assigns a fresh id and creation timestamp, persists the
	// record, and returns it as stored.
	CreateJob(job domain.Job) (domain.Job, error)
	// ListJobs returns all jobs. A corrupted stored payload degrades to
	// an empty list rather than an error.
	ListJobs() ([]domain.Job, error)
	// GetJob returns the job and true, or ok=false when absent.
	GetJob(id string) (domain.Job, bool, error)
	// UpdateJob replaces every field of the record matching job.ID except
	// the creation timestamp. Returns ErrNotFound when the id is unknown.
	UpdateJob(job domain.Job) (domain.Job, error)
	// DeleteJob removes the record. Returns ErrNotFound when absent.
	// Bookmark cleanup is the caller's responsibility.
	DeleteJob(id string) error
}

// UserStore persists accounts. Email uniqueness is enforced at
// registration with an exact match.
type UserStore interface {
	// RegisterUser assigns a fresh id, forces Admin=false, and persists.
	// Returns ErrDuplicateEmail when the email is taken.
	RegisterUser(name, email, passwordHash string) (domain.User, error)
	// EnsureUser inserts the user if no record with its email exists.
	// Admin flag and name are kept as given. Used by seeding; idempotent.
	EnsureUser(user domain.User) error
	GetUserByEmail(email string) (domain.User, bool, error)
	GetUserByID(id string) (domain.User, bool, error)
	ListUsers() ([]domain.User, error)
	UserCount() (int, error)
}

// BookmarkStore tracks which jobs a user saved. The materialization
// depends on Mode: snapshot stores copies, reference stores jobId links
// resolved on read. Toggle returns the resolved list in both modes.
type BookmarkStore interface {
	Mode() domain.BookmarkMode
	// Bookmarks returns the user's saved jobs. In reference mode, links
	// to deleted jobs are filtered out silently.
	Bookmarks(userID string) ([]domain.Job, error)
	// ToggleBookmark removes the bookmark when present, adds it when not,
	// and returns the resulting resolved list.
	ToggleBookmark(userID string, job domain.Job) ([]domain.Job, error)
	IsBookmarked(userID, jobID string) (bool, error)
	// RemoveForJob strips the job from every user's bookmarks. Invoked on
	// the job delete path to avoid dangling references.
	RemoveForJob(jobID string) error
}
