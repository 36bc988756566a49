package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"jobportal/pkg/domain"
)

// GormStore is the remote persistence adapter: per-record CRUD against a
// Postgres-backed document store for the jobs and users collections.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&JobModel{}, &UserModel{}, &BookmarkModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// Bookmarks returns a bookmark store over the same connection. The mode
// is chosen here, independent of the backend.
func (s *GormStore) Bookmarks(mode domain.BookmarkMode) *GormBookmarks {
	return &GormBookmarks{db: s.db, mode: mode, jobs: s}
}

// CreateJob assigns an opaque id and creation timestamp.
func (s *GormStore) CreateJob(job domain.Job) (domain.Job, error) {
	job.ID = newOpaqueID()
	job.CreatedAt = time.Now().UTC()
	model, err := jobToModel(job)
	if err != nil {
		return domain.Job{}, err
	}
	if err := s.db.Create(&model).Error; err != nil {
		return domain.Job{}, persistence("create job", err)
	}
	return job, nil
}

// ListJobs returns all jobs ordered by creation time.
func (s *GormStore) ListJobs() ([]domain.Job, error) {
	var models []JobModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, persistence("list jobs", err)
	}
	jobs := make([]domain.Job, 0, len(models))
	for _, m := range models {
		jobs = append(jobs, jobFromModel(m))
	}
	return jobs, nil
}

// GetJob retrieves one job; absence is not an error.
func (s *GormStore) GetJob(id string) (domain.Job, bool, error) {
	var model JobModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.Job{}, false, nil
		}
		return domain.Job{}, false, persistence("get job", err)
	}
	return jobFromModel(model), true, nil
}

// UpdateJob overwrites every stored field except the creation timestamp.
func (s *GormStore) UpdateJob(job domain.Job) (domain.Job, error) {
	existing, ok, err := s.GetJob(job.ID)
	if err != nil {
		return domain.Job{}, err
	}
	if !ok {
		return domain.Job{}, fmt.Errorf("update job %s: %w", job.ID, ErrNotFound)
	}
	job.CreatedAt = existing.CreatedAt
	model, err := jobToModel(job)
	if err != nil {
		return domain.Job{}, err
	}
	if err := s.db.Model(&JobModel{}).Where("id = ?", job.ID).Updates(map[string]any{
		"title":            model.Title,
		"company":          model.Company,
		"location":         model.Location,
		"salary":           model.Salary,
		"description":      model.Description,
		"long_description": model.LongDescription,
		"requirements":     model.Requirements,
		"contact_info":     model.ContactInfo,
	}).Error; err != nil {
		return domain.Job{}, persistence("update job", err)
	}
	return job, nil
}

// DeleteJob removes the record; bookmark cleanup stays with the caller.
func (s *GormStore) DeleteJob(id string) error {
	res := s.db.Delete(&JobModel{}, "id = ?", id)
	if res.Error != nil {
		return persistence("delete job", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("delete job %s: %w", id, ErrNotFound)
	}
	return nil
}

// RegisterUser enforces email uniqueness and forces Admin off.
func (s *GormStore) RegisterUser(name, email, passwordHash string) (domain.User, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return domain.User{}, persistence("check email", err)
	}
	if count > 0 {
		return domain.User{}, fmt.Errorf("register %s: %w", email, ErrDuplicateEmail)
	}
	user := domain.User{
		ID:           newOpaqueID(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Admin:        false,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.Create(userToModel(user)).Error; err != nil {
		return domain.User{}, persistence("create user", err)
	}
	return user, nil
}

// EnsureUser inserts the record when its email is absent; idempotent.
func (s *GormStore) EnsureUser(user domain.User) error {
	var count int64
	if err := s.db.Model(&UserModel{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return persistence("check email", err)
	}
	if count > 0 {
		return nil
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if err := s.db.Create(userToModel(user)).Error; err != nil {
		return persistence("create user", err)
	}
	return nil
}

func (s *GormStore) GetUserByEmail(email string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, persistence("get user", err)
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) GetUserByID(id string) (domain.User, bool, error) {
	var model UserModel
	if err := s.db.First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.User{}, false, nil
		}
		return domain.User{}, false, persistence("get user", err)
	}
	return userFromModel(model), true, nil
}

func (s *GormStore) ListUsers() ([]domain.User, error) {
	var models []UserModel
	if err := s.db.Order("created_at ASC").Find(&models).Error; err != nil {
		return nil, persistence("list users", err)
	}
	users := make([]domain.User, 0, len(models))
	for _, m := range models {
		users = append(users, userFromModel(m))
	}
	return users, nil
}

func (s *GormStore) UserCount() (int, error) {
	var count int64
	if err := s.db.Model(&UserModel{}).Count(&count).Error; err != nil {
		return 0, persistence("count users", err)
	}
	return int(count), nil
}

// GormBookmarks stores one row per saved job. In reference mode each row
// is resolved against the job store on read, concurrently; rows whose
// job has been deleted resolve to nothing and are dropped silently.
type GormBookmarks struct {
	db   *gorm.DB
	mode domain.BookmarkMode
	jobs JobStore
}

func (s *GormBookmarks) Mode() domain.BookmarkMode {
	return s.mode
}

func (s *GormBookmarks) Bookmarks(userID string) ([]domain.Job, error) {
	var models []BookmarkModel
	if err := s.db.Order("created_at ASC").Find(&models, "user_id = ?", userID).Error; err != nil {
		return nil, persistence("list bookmarks", err)
	}
	if s.mode == domain.SnapshotMode {
		jobs := make([]domain.Job, 0, len(models))
		for _, m := range models {
			var job domain.Job
			if err := json.Unmarshal(m.Snapshot, &job); err != nil {
				continue
			}
			jobs = append(jobs, job)
		}
		return jobs, nil
	}

	// Resolve each reference against the live job collection. Misses are
	// dropped; ordering follows the bookmark rows.
	resolved := make([]*domain.Job, len(models))
	var g errgroup.Group
	for i, m := range models {
		i, m := i, m
		g.Go(func() error {
			job, ok, err := s.jobs.GetJob(m.JobID)
			if err != nil {
				return err
			}
			if ok {
				resolved[i] = &job
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	jobs := make([]domain.Job, 0, len(resolved))
	for _, job := range resolved {
		if job != nil {
			jobs = append(jobs, *job)
		}
	}
	return jobs, nil
}

func (s *GormBookmarks) ToggleBookmark(userID string, job domain.Job) ([]domain.Job, error) {
	res := s.db.Delete(&BookmarkModel{}, "user_id = ? AND job_id = ?", userID, job.ID)
	if res.Error != nil {
		return nil, persistence("toggle bookmark", res.Error)
	}
	if res.RowsAffected == 0 {
		model := BookmarkModel{
			ID:        newOpaqueID(),
			UserID:    userID,
			JobID:     job.ID,
			CreatedAt: time.Now().UTC(),
		}
		if s.mode == domain.SnapshotMode {
			snapshot, err := json.Marshal(job)
			if err != nil {
				return nil, persistence("encode bookmark", err)
			}
			model.Snapshot = snapshot
		}
		if err := s.db.Create(&model).Error; err != nil {
			return nil, persistence("create bookmark", err)
		}
	}
	return s.Bookmarks(userID)
}

func (s *GormBookmarks) IsBookmarked(userID, jobID string) (bool, error) {
	var count int64
	if err := s.db.Model(&BookmarkModel{}).
		Where("user_id = ? AND job_id = ?", userID, jobID).
		Count(&count).Error; err != nil {
		return false, persistence("check bookmark", err)
	}
	return count > 0, nil
}

func (s *GormBookmarks) RemoveForJob(jobID string) error {
	if err := s.db.Delete(&BookmarkModel{}, "job_id = ?", jobID).Error; err != nil {
		return persistence("remove bookmarks", err)
	}
	return nil
}

func jobToModel(j domain.Job) (JobModel, error) {
	reqs, err := json.Marshal(j.Requirements)
	if err != nil {
		return JobModel{}, persistence("encode requirements", err)
	}
	contact, err := json.Marshal(j.ContactInfo)
	if err != nil {
		return JobModel{}, persistence("encode contact info", err)
	}
	return JobModel{
		ID:              j.ID,
		Title:           j.Title,
		Company:         j.Company,
		Location:        j.Location,
		Salary:          j.Salary,
		Description:     j.Description,
		LongDescription: j.LongDescription,
		Requirements:    reqs,
		ContactInfo:     contact,
		CreatedAt:       j.CreatedAt,
	}, nil
}

func jobFromModel(m JobModel) domain.Job {
	job := domain.Job{
		ID:              m.ID,
		Title:           m.Title,
		Company:         m.Company,
		Location:        m.Location,
		Salary:          m.Salary,
		Description:     m.Description,
		LongDescription: m.LongDescription,
		CreatedAt:       m.CreatedAt,
	}
	_ = json.Unmarshal(m.Requirements, &job.Requirements)
	_ = json.Unmarshal(m.ContactInfo, &job.ContactInfo)
	return job
}

func userToModel(u domain.User) *UserModel {
	return &UserModel{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Admin:        u.Admin,
		CreatedAt:    u.CreatedAt,
	}
}

func userFromModel(m UserModel) domain.User {
	return domain.User{
		ID:           m.ID,
		Name:         m.Name,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Admin:        m.Admin,
		CreatedAt:    m.CreatedAt,
	}
}
