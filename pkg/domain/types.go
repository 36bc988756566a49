package domain

import "time"

// BookmarkMode selects how the bookmark store materializes saved jobs.
type BookmarkMode string

const (
	// SnapshotMode stores full job copies per user. Edits to the original
	// job do not propagate to existing bookmarks.
	SnapshotMode BookmarkMode = "snapshot"
	// ReferenceMode stores jobId references resolved against the job store
	// at read time. Edits propagate; deleted jobs drop out silently.
	ReferenceMode BookmarkMode = "reference"
)

// ContactInfo is how applicants reach the posting company.
type ContactInfo struct {
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
}

// Job is a single posting. The ID is an opaque string assigned by the
// store at creation time; callers never choose it. CreatedAt is set once
// and survives updates unchanged.
type Job struct {
	ID              string      `json:"id"`
	Title           string      `json:"title"`
	Company         string      `json:"company"`
	Location        string      `json:"location"`
	Salary          int64       `json:"salary"`
	Description     string      `json:"description"`
	LongDescription string      `json:"longDescription"`
	Requirements    []string    `json:"requirements"`
	ContactInfo     ContactInfo `json:"contactInfo"`
	CreatedAt       time.Time   `json:"createdAt"`
}

// User is a registered account. PasswordHash is empty when authentication
// is delegated to an external identity provider.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Bookmark is the reference-mode materialization of a saved job.
type Bookmark struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	JobID     string    `json:"jobId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Identity is the session's view of an authenticated user.
type Identity struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Admin  bool   `json:"admin"`
}

// IdentityOf projects a stored user into a session identity.
func IdentityOf(u User) Identity {
	return Identity{UserID: u.ID, Name: u.Name, Email: u.Email, Admin: u.Admin}
}
