package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"jobportal/pkg/auth"
	"jobportal/pkg/domain"
	"jobportal/pkg/session"
	"jobportal/pkg/store"
)

// Config holds runtime configuration for the core application.
type Config struct {
	Storage       string
	DataDir       string
	RedisAddr     string
	RedisPassword string
	DatabaseURL   string
	BookmarkMode  domain.BookmarkMode
	SessionSecret string
	SessionTTL    time.Duration
	PollInterval  time.Duration
	SeedDemoJobs  bool

	// Pre-built dependencies override the wiring above; used by tests.
	Blob      store.Blob
	Jobs      store.JobStore
	Users     store.UserStore
	Bookmarks store.BookmarkStore
	Sessions  *session.Manager
}

// App wires the entity stores and session state together and owns the
// cross-store behaviors: seeding, search, and delete-with-cascade.
type App struct {
	jobs      store.JobStore
	users     store.UserStore
	bookmarks store.BookmarkStore
	sessions  *session.Manager
	watcher   store.Watcher
	poller    *store.Poller
}

// New builds the stores for the configured variant, restores any
// persisted session, and runs the idempotent account seeding.
func New(cfg Config) (*App, error) {
	blob := cfg.Blob
	if blob == nil {
		var err error
		if cfg.RedisAddr != "" {
			blob = store.NewRedisBlob(cfg.RedisAddr, cfg.RedisPassword, "jobportal")
		} else {
			dataDir := cfg.DataDir
			if dataDir == "" {
				dataDir = "data"
			}
			blob, err = store.NewFileBlob(dataDir)
			if err != nil {
				return nil, fmt.Errorf("init blob store: %w", err)
			}
		}
	}

	mode := cfg.BookmarkMode
	jobs := cfg.Jobs
	users := cfg.Users
	bookmarks := cfg.Bookmarks
	if jobs == nil || users == nil || bookmarks == nil {
		switch cfg.Storage {
		case "remote":
			if cfg.DatabaseURL == "" {
				return nil, fmt.Errorf("database URL required for remote storage")
			}
			gs, err := store.NewGormStore(cfg.DatabaseURL)
			if err != nil {
				return nil, fmt.Errorf("init remote store: %w", err)
			}
			if mode == "" {
				mode = domain.ReferenceMode
			}
			jobs, users, bookmarks = gs, gs, gs.Bookmarks(mode)
		default:
			if mode == "" {
				mode = domain.SnapshotMode
			}
			localJobs := store.NewLocalJobs(blob)
			if cfg.SeedDemoJobs {
				if err := localJobs.SeedDefaults(store.DefaultJobs()); err != nil {
					return nil, fmt.Errorf("seed jobs: %w", err)
				}
			}
			jobs = localJobs
			users = store.NewLocalUsers(blob)
			bookmarks = store.NewLocalBookmarks(blob, mode, jobs)
		}
	}

	if err := store.SeedAccounts(users, auth.HashPassword); err != nil {
		return nil, fmt.Errorf("seed accounts: %w", err)
	}

	sessions := cfg.Sessions
	if sessions == nil {
		codec := session.NewTokenCodec(cfg.SessionSecret, cfg.SessionTTL)
		var err error
		sessions, err = session.NewManager(blob, codec)
		if err != nil {
			return nil, fmt.Errorf("restore session: %w", err)
		}
	}

	a := &App{
		jobs:      jobs,
		users:     users,
		bookmarks: bookmarks,
		sessions:  sessions,
	}
	// Stores that push change notifications are watched directly;
	// everything else falls back to interval polling.
	if w, ok := bookmarks.(store.Watcher); ok {
		a.watcher = w
	} else {
		a.poller = store.NewPoller(context.Background(), cfg.PollInterval)
		a.watcher = a.poller
	}
	return a, nil
}

// Close stops the polling fallback, if one is running.
func (a *App) Close() {
	if a.poller != nil {
		a.poller.Stop()
	}
}

// Sessions exposes the session manager to guards and the HTTP layer.
func (a *App) Sessions() *session.Manager {
	return a.sessions
}

// Register creates an account. The password is hashed before it reaches
// any store and is never logged.
func (a *App) Register(name, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, ErrEmailAndPasswordRequired
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	return a.users.RegisterUser(name, email, hash)
}

// Login sets the session on an exact credential match. A mismatch is a
// no-op: the prior session, if any, stays intact and no error is raised.
func (a *App) Login(email, password string) (domain.Identity, bool, error) {
	user, ok, err := a.users.GetUserByEmail(email)
	if err != nil {
		return domain.Identity{}, false, fmt.Errorf("fetch user: %w", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return domain.Identity{}, false, nil
	}
	id := domain.IdentityOf(user)
	if err := a.sessions.Set(id); err != nil {
		return domain.Identity{}, false, fmt.Errorf("persist session: %w", err)
	}
	return id, true, nil
}

// Logout clears session state and returns the root route the client is
// expected to navigate to, flushing any in-memory view state.
func (a *App) Logout() (string, error) {
	if err := a.sessions.Clear(); err != nil {
		return "", fmt.Errorf("clear session: %w", err)
	}
	return "/", nil
}

// CreateJob stores a posting; the store assigns id and timestamp.
func (a *App) CreateJob(job domain.Job) (domain.Job, error) {
	return a.jobs.CreateJob(job)
}

// ListJobs returns all postings.
func (a *App) ListJobs() ([]domain.Job, error) {
	return a.jobs.ListJobs()
}

// GetJob finds one posting; absence is a normal outcome.
func (a *App) GetJob(id string) (domain.Job, bool, error) {
	return a.jobs.GetJob(id)
}

// UpdateJob replaces a posting wholesale, keeping its creation time.
func (a *App) UpdateJob(job domain.Job) (domain.Job, error) {
	return a.jobs.UpdateJob(job)
}

// DeleteJob removes the posting and then strips it from every user's
// bookmarks so no dangling references remain.
func (a *App) DeleteJob(id string) error {
	if err := a.jobs.DeleteJob(id); err != nil {
		return err
	}
	if err := a.bookmarks.RemoveForJob(id); err != nil {
		return fmt.Errorf("cascade bookmarks: %w", err)
	}
	return nil
}

// SearchJobs filters postings by case-insensitive substring match on
// title, company, and location. An empty term returns everything.
func (a *App) SearchJobs(term string) ([]domain.Job, error) {
	jobs, err := a.jobs.ListJobs()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	if needle == "" {
		return jobs, nil
	}
	matched := make([]domain.Job, 0, len(jobs))
	for _, j := range jobs {
		if strings.Contains(strings.ToLower(j.Title), needle) ||
			strings.Contains(strings.ToLower(j.Company), needle) ||
			strings.Contains(strings.ToLower(j.Location), needle) {
			matched = append(matched, j)
		}
	}
	return matched, nil
}

// Bookmarks lists the session user's saved jobs.
func (a *App) Bookmarks() ([]domain.Job, error) {
	id, ok := a.sessions.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	return a.bookmarks.Bookmarks(id.UserID)
}

// ToggleBookmark flips membership of the job for the session user and
// returns the resulting list.
func (a *App) ToggleBookmark(jobID string) ([]domain.Job, error) {
	id, ok := a.sessions.Current()
	if !ok {
		return nil, ErrNotAuthenticated
	}
	job, found, err := a.jobs.GetJob(jobID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("toggle bookmark %s: %w", jobID, store.ErrNotFound)
	}
	return a.bookmarks.ToggleBookmark(id.UserID, job)
}

// IsBookmarked reports membership for the session user.
func (a *App) IsBookmarked(jobID string) (bool, error) {
	id, ok := a.sessions.Current()
	if !ok {
		return false, nil
	}
	return a.bookmarks.IsBookmarked(id.UserID, jobID)
}

// WatchBookmarks streams the user's resolved bookmark list: once
// immediately, then after every change signal. The stream ends when ctx
// is cancelled; the subscription is detached on the way out, so no
// timer or goroutine outlives the consumer.
func (a *App) WatchBookmarks(ctx context.Context, userID string) <-chan []domain.Job {
	out := make(chan []domain.Job, 1)
	signals, cancel := a.watcher.Watch()
	go func() {
		defer close(out)
		defer cancel()
		emit := func() {
			jobs, err := a.bookmarks.Bookmarks(userID)
			if err != nil {
				return
			}
			select {
			case out <- jobs:
			case <-ctx.Done():
			}
		}
		emit()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-signals:
				if !ok {
					return
				}
				emit()
			}
		}
	}()
	return out
}
