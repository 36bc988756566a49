package store

import (
	"encoding/json"
	"fmt"
	"time"

	"jobportal/pkg/domain"
)

// Fixed blob keys, matching the browser-profile layout this store was
// migrated from.
const (
	jobsKey        = "jobs"
	usersKey       = "jobportal_users"
	bookmarkPrefix = "bookmarks_"
)

func bookmarkKey(userID string) string {
	return bookmarkPrefix + userID
}

// readCollection unmarshals a whole-collection blob. A missing key or an
// unparsable payload degrades to an empty collection so reads stay
// usable; only an adapter failure surfaces as ErrPersistence.
func readCollection[T any](blob Blob, key string) ([]T, error) {
	data, ok, err := blob.Get(key)
	if err != nil {
		return nil, persistence("read "+key, err)
	}
	if !ok {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, nil
	}
	return items, nil
}

func writeCollection[T any](blob Blob, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return persistence("encode "+key, err)
	}
	if err := blob.Set(key, data); err != nil {
		return persistence("write "+key, err)
	}
	return nil
}

// LocalJobs is the whole-collection job store: every operation reads the
// full jobs blob, mutates it in memory, and writes it back. Concurrent
// writers race with last-write-wins at collection granularity.
type LocalJobs struct {
	blob Blob
	bc   *broadcaster
}

// NewLocalJobs wraps a blob adapter.
func NewLocalJobs(blob Blob) *LocalJobs {
	return &LocalJobs{blob: blob, bc: newBroadcaster()}
}

// SeedDefaults writes the given jobs once, only when the jobs key has
// never been written. An existing (even empty) collection is left alone.
func (s *LocalJobs) SeedDefaults(jobs []domain.Job) error {
	_, ok, err := s.blob.Get(jobsKey)
	if err != nil {
		return persistence("read "+jobsKey, err)
	}
	if ok {
		return nil
	}
	return writeCollection(s.blob, jobsKey, jobs)
}

// CreateJob assigns the next numeric id (max+1, "1" when empty) and the
// creation timestamp, then appends to the collection.
func (s *LocalJobs) CreateJob(job domain.Job) (domain.Job, error) {
	jobs, err := readCollection[domain.Job](s.blob, jobsKey)
	if err != nil {
		return domain.Job{}, err
	}
	ids := make([]string, 0, len(jobs))
	for _, j := range jobs {
		ids = append(ids, j.ID)
	}
	id, err := nextNumericID(ids)
	if err != nil {
		return domain.Job{}, err
	}
	job.ID = id
	job.CreatedAt = time.Now().UTC()
	if err := writeCollection(s.blob, jobsKey, append(jobs, job)); err != nil {
		return domain.Job{}, err
	}
	s.bc.notify()
	return job, nil
}

// ListJobs returns all jobs in insertion order.
func (s *LocalJobs) ListJobs() ([]domain.Job, error) {
	return readCollection[domain.Job](s.blob, jobsKey)
}

// GetJob finds a job by id; absence is a normal outcome.
func (s *LocalJobs) GetJob(id string) (domain.Job, bool, error) {
	jobs, err := s.ListJobs()
	if err != nil {
		return domain.Job{}, false, err
	}
	for _, j := range jobs {
		if j.ID == id {
			return j, true, nil
		}
	}
	return domain.Job{}, false, nil
}

// UpdateJob replaces the stored record wholesale, keeping only the
// original creation timestamp.
func (s *LocalJobs) UpdateJob(job domain.Job) (domain.Job, error) {
	jobs, err := s.ListJobs()
	if err != nil {
		return domain.Job{}, err
	}
	for i, j := range jobs {
		if j.ID != job.ID {
			continue
		}
		job.CreatedAt = j.CreatedAt
		jobs[i] = job
		if err := writeCollection(s.blob, jobsKey, jobs); err != nil {
			return domain.Job{}, err
		}
		s.bc.notify()
		return job, nil
	}
	return domain.Job{}, fmt.Errorf("update job %s: %w", job.ID, ErrNotFound)
}

// DeleteJob removes the record. Bookmark cleanup is the caller's job.
func (s *LocalJobs) DeleteJob(id string) error {
	jobs, err := s.ListJobs()
	if err != nil {
		return err
	}
	filtered := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.ID != id {
			filtered = append(filtered, j)
		}
	}
	if len(filtered) == len(jobs) {
		return fmt.Errorf("delete job %s: %w", id, ErrNotFound)
	}
	if err := writeCollection(s.blob, jobsKey, filtered); err != nil {
		return err
	}
	s.bc.notify()
	return nil
}

// Watch signals after every successful write.
func (s *LocalJobs) Watch() (<-chan struct{}, func()) {
	return s.bc.Watch()
}

// LocalUsers persists accounts in a single users blob.
type LocalUsers struct {
	blob Blob
}

// userRecord is the persisted form. domain.User keeps the hash out of
// its JSON so API responses never carry it; the blob record must not.
type userRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	Admin        bool      `json:"admin"`
	CreatedAt    time.Time `json:"createdAt"`
}

func userToRecord(u domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Admin:        u.Admin,
		CreatedAt:    u.CreatedAt,
	}
}

func userFromRecord(r userRecord) domain.User {
	return domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		Admin:        r.Admin,
		CreatedAt:    r.CreatedAt,
	}
}

// NewLocalUsers wraps a blob adapter.
func NewLocalUsers(blob Blob) *LocalUsers {
	return &LocalUsers{blob: blob}
}

// RegisterUser enforces exact-match email uniqueness and forces the
// admin flag off regardless of caller input.
func (s *LocalUsers) RegisterUser(name, email, passwordHash string) (domain.User, error) {
	records, err := readCollection[userRecord](s.blob, usersKey)
	if err != nil {
		return domain.User{}, err
	}
	for _, r := range records {
		if r.Email == email {
			return domain.User{}, fmt.Errorf("register %s: %w", email, ErrDuplicateEmail)
		}
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	id, err := nextNumericID(ids)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		ID:           id,
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Admin:        false,
		CreatedAt:    time.Now().UTC(),
	}
	if err := writeCollection(s.blob, usersKey, append(records, userToRecord(user))); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// EnsureUser inserts the record if its email is absent. Repeated calls
// are no-ops, which keeps seeding idempotent.
func (s *LocalUsers) EnsureUser(user domain.User) error {
	records, err := readCollection[userRecord](s.blob, usersKey)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.Email == user.Email {
			return nil
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	return writeCollection(s.blob, usersKey, append(records, userToRecord(user)))
}

func (s *LocalUsers) GetUserByEmail(email string) (domain.User, bool, error) {
	records, err := readCollection[userRecord](s.blob, usersKey)
	if err != nil {
		return domain.User{}, false, err
	}
	for _, r := range records {
		if r.Email == email {
			return userFromRecord(r), true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *LocalUsers) GetUserByID(id string) (domain.User, bool, error) {
	records, err := readCollection[userRecord](s.blob, usersKey)
	if err != nil {
		return domain.User{}, false, err
	}
	for _, r := range records {
		if r.ID == id {
			return userFromRecord(r), true, nil
		}
	}
	return domain.User{}, false, nil
}

func (s *LocalUsers) ListUsers() ([]domain.User, error) {
	records, err := readCollection[userRecord](s.blob, usersKey)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(records))
	for _, r := range records {
		users = append(users, userFromRecord(r))
	}
	return users, nil
}

func (s *LocalUsers) UserCount() (int, error) {
	users, err := s.ListUsers()
	if err != nil {
		return 0, err
	}
	return len(users), nil
}

// LocalBookmarks keeps one blob per user. The mode is an explicit
// construction choice, not a side effect of the backend: snapshot mode
// stores full job copies (edits to the original do not propagate),
// reference mode stores links resolved against the job store on read.
type LocalBookmarks struct {
	blob Blob
	mode domain.BookmarkMode
	jobs JobStore
	bc   *broadcaster
}

// NewLocalBookmarks wires the bookmark store. The job store is only
// consulted in reference mode.
func NewLocalBookmarks(blob Blob, mode domain.BookmarkMode, jobs JobStore) *LocalBookmarks {
	return &LocalBookmarks{blob: blob, mode: mode, jobs: jobs, bc: newBroadcaster()}
}

func (s *LocalBookmarks) Mode() domain.BookmarkMode {
	return s.mode
}

// Bookmarks resolves the user's saved jobs. In reference mode, links to
// jobs that no longer exist are dropped silently.
func (s *LocalBookmarks) Bookmarks(userID string) ([]domain.Job, error) {
	if s.mode == domain.SnapshotMode {
		return readCollection[domain.Job](s.blob, bookmarkKey(userID))
	}
	refs, err := readCollection[domain.Bookmark](s.blob, bookmarkKey(userID))
	if err != nil {
		return nil, err
	}
	jobs := make([]domain.Job, 0, len(refs))
	for _, ref := range refs {
		job, ok, err := s.jobs.GetJob(ref.JobID)
		if err != nil {
			return nil, err
		}
		if ok {
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

// ToggleBookmark flips membership for (userID, job.ID) and returns the
// resulting resolved list. Calling it twice restores the original state.
func (s *LocalBookmarks) ToggleBookmark(userID string, job domain.Job) ([]domain.Job, error) {
	key := bookmarkKey(userID)
	if s.mode == domain.SnapshotMode {
		saved, err := readCollection[domain.Job](s.blob, key)
		if err != nil {
			return nil, err
		}
		next := make([]domain.Job, 0, len(saved)+1)
		removed := false
		for _, j := range saved {
			if j.ID == job.ID {
				removed = true
				continue
			}
			next = append(next, j)
		}
		if !removed {
			next = append(next, job)
		}
		if err := writeCollection(s.blob, key, next); err != nil {
			return nil, err
		}
		s.bc.notify()
		return next, nil
	}

	refs, err := readCollection[domain.Bookmark](s.blob, key)
	if err != nil {
		return nil, err
	}
	next := make([]domain.Bookmark, 0, len(refs)+1)
	removed := false
	for _, ref := range refs {
		if ref.JobID == job.ID {
			removed = true
			continue
		}
		next = append(next, ref)
	}
	if !removed {
		next = append(next, domain.Bookmark{
			ID:        newOpaqueID(),
			UserID:    userID,
			JobID:     job.ID,
			CreatedAt: time.Now().UTC(),
		})
	}
	if err := writeCollection(s.blob, key, next); err != nil {
		return nil, err
	}
	s.bc.notify()
	return s.Bookmarks(userID)
}

func (s *LocalBookmarks) IsBookmarked(userID, jobID string) (bool, error) {
	key := bookmarkKey(userID)
	if s.mode == domain.SnapshotMode {
		saved, err := readCollection[domain.Job](s.blob, key)
		if err != nil {
			return false, err
		}
		for _, j := range saved {
			if j.ID == jobID {
				return true, nil
			}
		}
		return false, nil
	}
	refs, err := readCollection[domain.Bookmark](s.blob, key)
	if err != nil {
		return false, err
	}
	for _, ref := range refs {
		if ref.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

// RemoveForJob strips the job from every user's collection, not just the
// current session's. Invoked on the job delete path.
func (s *LocalBookmarks) RemoveForJob(jobID string) error {
	keys, err := s.blob.Keys(bookmarkPrefix)
	if err != nil {
		return persistence("scan bookmarks", err)
	}
	changed := false
	for _, key := range keys {
		if s.mode == domain.SnapshotMode {
			saved, err := readCollection[domain.Job](s.blob, key)
			if err != nil {
				return err
			}
			filtered := make([]domain.Job, 0, len(saved))
			for _, j := range saved {
				if j.ID != jobID {
					filtered = append(filtered, j)
				}
			}
			if len(filtered) == len(saved) {
				continue
			}
			if err := writeCollection(s.blob, key, filtered); err != nil {
				return err
			}
			changed = true
			continue
		}
		refs, err := readCollection[domain.Bookmark](s.blob, key)
		if err != nil {
			return err
		}
		filtered := make([]domain.Bookmark, 0, len(refs))
		for _, ref := range refs {
			if ref.JobID != jobID {
				filtered = append(filtered, ref)
			}
		}
		if len(filtered) == len(refs) {
			continue
		}
		if err := writeCollection(s.blob, key, filtered); err != nil {
			return err
		}
		changed = true
	}
	if changed {
		s.bc.notify()
	}
	return nil
}

// Watch signals after every successful bookmark write.
func (s *LocalBookmarks) Watch() (<-chan struct{}, func()) {
	return s.bc.Watch()
}
