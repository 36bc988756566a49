package store

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"jobportal/pkg/domain"
)

// memBlob is an in-memory Blob for tests, with optional write faults.
type memBlob struct {
	mu         sync.Mutex
	data       map[string][]byte
	failWrites bool
}

func newMemBlob() *memBlob {
	return &memBlob{data: make(map[string][]byte)}
}

func (m *memBlob) Get(key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.data[key]
	return val, ok, nil
}

func (m *memBlob) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return errors.New("disk full")
	}
	m.data[key] = value
	return nil
}

func (m *memBlob) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memBlob) Keys(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var keys []string
	for k := range m.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func sampleJob(title string) domain.Job {
	return domain.Job{
		Title:           title,
		Company:         "Acme",
		Location:        "Budapest",
		Salary:          500000,
		Description:     "short",
		LongDescription: "long",
		Requirements:    []string{"Go"},
		ContactInfo:     domain.ContactInfo{Email: "jobs@acme.test"},
	}
}

func TestCreateJobAssignsSequentialIDs(t *testing.T) {
	jobs := NewLocalJobs(newMemBlob())

	first, err := jobs.CreateJob(sampleJob("A"))
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if first.ID != "1" {
		t.Fatalf("expected id %q, got %q", "1", first.ID)
	}
	if first.CreatedAt.IsZero() {
		t.Fatalf("expected creation timestamp to be set")
	}

	second, err := jobs.CreateJob(sampleJob("B"))
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if second.ID != "2" {
		t.Fatalf("expected id %q, got %q", "2", second.ID)
	}

	got, ok, err := jobs.GetJob("1")
	if err != nil || !ok {
		t.Fatalf("get job 1: ok=%v err=%v", ok, err)
	}
	if got.Title != "A" || got.Company != "Acme" || got.ContactInfo.Email != "jobs@acme.test" {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}

	all, err := jobs.ListJobs()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(all))
	}
}

func TestCreateJobRejectsNonNumericIDs(t *testing.T) {
	blob := newMemBlob()
	blob.data[jobsKey] = []byte(`[{"id":"abc","title":"X"}]`)
	jobs := NewLocalJobs(blob)

	if _, err := jobs.CreateJob(sampleJob("A")); !errors.Is(err, ErrBadID) {
		t.Fatalf("expected ErrBadID, got: %v", err)
	}
}

func TestListJobsDegradations(t *testing.T) {
	t.Run("missing key is empty", func(t *testing.T) {
		jobs := NewLocalJobs(newMemBlob())
		all, err := jobs.ListJobs()
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(all) != 0 {
			t.Fatalf("expected empty list, got %d", len(all))
		}
	})
	t.Run("corrupt payload is empty", func(t *testing.T) {
		blob := newMemBlob()
		blob.data[jobsKey] = []byte(`{definitely not an array`)
		jobs := NewLocalJobs(blob)
		all, err := jobs.ListJobs()
		if err != nil {
			t.Fatalf("expected degradation to empty, got error: %v", err)
		}
		if len(all) != 0 {
			t.Fatalf("expected empty list, got %d", len(all))
		}
	})
}

func TestCreateJobSurfacesWriteFailure(t *testing.T) {
	blob := newMemBlob()
	blob.failWrites = true
	jobs := NewLocalJobs(blob)

	if _, err := jobs.CreateJob(sampleJob("A")); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got: %v", err)
	}
}

func TestUpdateJobKeepsCreationTimestamp(t *testing.T) {
	jobs := NewLocalJobs(newMemBlob())
	created, err := jobs.CreateJob(sampleJob("A"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated := created
	updated.Title = "A (updated)"
	updated.CreatedAt = time.Now().Add(48 * time.Hour) // caller must not control this
	got, err := jobs.UpdateJob(updated)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("creation timestamp changed on update: %v != %v", got.CreatedAt, created.CreatedAt)
	}
	if got.Title != "A (updated)" {
		t.Fatalf("title not updated: %q", got.Title)
	}
}

func TestUpdateJobNotFound(t *testing.T) {
	jobs := NewLocalJobs(newMemBlob())
	if _, err := jobs.UpdateJob(domain.Job{ID: "99"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestDeleteJobNotFound(t *testing.T) {
	jobs := NewLocalJobs(newMemBlob())
	if err := jobs.DeleteJob("99"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got: %v", err)
	}
}

func TestGetJobAbsenceIsNotAnError(t *testing.T) {
	jobs := NewLocalJobs(newMemBlob())
	_, ok, err := jobs.GetJob("99")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if ok {
		t.Fatalf("expected absence")
	}
}

func TestSeedDefaultsOnlyOnFirstRun(t *testing.T) {
	blob := newMemBlob()
	jobs := NewLocalJobs(blob)
	if err := jobs.SeedDefaults(DefaultJobs()); err != nil {
		t.Fatalf("seed: %v", err)
	}
	all, err := jobs.ListJobs()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 seeded jobs, got %d", len(all))
	}

	// An emptied collection is an existing collection; seeding again
	// must not resurrect the demo data.
	for _, j := range all {
		if err := jobs.DeleteJob(j.ID); err != nil {
			t.Fatalf("delete %s: %v", j.ID, err)
		}
	}
	if err := jobs.SeedDefaults(DefaultJobs()); err != nil {
		t.Fatalf("re-seed: %v", err)
	}
	all, _ = jobs.ListJobs()
	if len(all) != 0 {
		t.Fatalf("expected seeding to respect an existing empty collection, got %d jobs", len(all))
	}
}

func testHash(password string) (string, error) {
	return "hashed:" + password, nil
}

func TestRegisterUserForcesAdminOffAndChecksDuplicates(t *testing.T) {
	users := NewLocalUsers(newMemBlob())

	u, err := users.RegisterUser("Jane", "jane@example.com", "hash")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Admin {
		t.Fatalf("self-registered user must not be admin")
	}
	if u.ID != "1" {
		t.Fatalf("expected id %q, got %q", "1", u.ID)
	}

	if _, err := users.RegisterUser("Jane Again", "jane@example.com", "hash2"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got: %v", err)
	}
	count, err := users.UserCount()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("duplicate registration changed user count: %d", count)
	}
}

func TestDuplicateEmailMatchIsExact(t *testing.T) {
	users := NewLocalUsers(newMemBlob())
	if _, err := users.RegisterUser("A", "Jane@Example.com", "h"); err != nil {
		t.Fatalf("register: %v", err)
	}
	// Case-sensitive match: a differently cased email is a new account.
	if _, err := users.RegisterUser("B", "jane@example.com", "h"); err != nil {
		t.Fatalf("expected distinct casing to register, got: %v", err)
	}
}

func TestSeedAccountsIdempotent(t *testing.T) {
	users := NewLocalUsers(newMemBlob())

	for i := 0; i < 3; i++ {
		if err := SeedAccounts(users, testHash); err != nil {
			t.Fatalf("seed round %d: %v", i, err)
		}
	}

	all, err := users.ListUsers()
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	admins, tests := 0, 0
	for _, u := range all {
		switch u.Email {
		case AdminEmail:
			admins++
			if !u.Admin {
				t.Fatalf("seeded admin lost admin flag")
			}
		case TestEmail:
			tests++
			if u.Admin {
				t.Fatalf("seeded test account must not be admin")
			}
		}
	}
	if admins != 1 || tests != 1 {
		t.Fatalf("expected exactly one admin and one test account, got %d/%d", admins, tests)
	}
}

func TestToggleBookmarkIsAnInvolution(t *testing.T) {
	for _, mode := range []domain.BookmarkMode{domain.SnapshotMode, domain.ReferenceMode} {
		t.Run(string(mode), func(t *testing.T) {
			blob := newMemBlob()
			jobs := NewLocalJobs(blob)
			bookmarks := NewLocalBookmarks(blob, mode, jobs)

			job, err := jobs.CreateJob(sampleJob("A"))
			if err != nil {
				t.Fatalf("create: %v", err)
			}

			list, err := bookmarks.ToggleBookmark("u1", job)
			if err != nil {
				t.Fatalf("toggle on: %v", err)
			}
			if len(list) != 1 || list[0].ID != job.ID {
				t.Fatalf("expected [%s], got %v", job.ID, list)
			}
			saved, err := bookmarks.IsBookmarked("u1", job.ID)
			if err != nil || !saved {
				t.Fatalf("expected bookmarked, ok=%v err=%v", saved, err)
			}

			list, err = bookmarks.ToggleBookmark("u1", job)
			if err != nil {
				t.Fatalf("toggle off: %v", err)
			}
			if len(list) != 0 {
				t.Fatalf("expected empty list after second toggle, got %v", list)
			}
			saved, _ = bookmarks.IsBookmarked("u1", job.ID)
			if saved {
				t.Fatalf("expected membership restored to original state")
			}
		})
	}
}

func TestIsBookmarkedWithoutAnyBookmarks(t *testing.T) {
	blob := newMemBlob()
	bookmarks := NewLocalBookmarks(blob, domain.SnapshotMode, NewLocalJobs(blob))
	saved, err := bookmarks.IsBookmarked("nobody", "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved {
		t.Fatalf("user with no bookmarks must report false")
	}
}

func TestSnapshotBookmarksDoNotFollowJobEdits(t *testing.T) {
	blob := newMemBlob()
	jobs := NewLocalJobs(blob)
	bookmarks := NewLocalBookmarks(blob, domain.SnapshotMode, jobs)

	job, _ := jobs.CreateJob(sampleJob("Original"))
	if _, err := bookmarks.ToggleBookmark("u1", job); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	job.Title = "Edited"
	if _, err := jobs.UpdateJob(job); err != nil {
		t.Fatalf("update: %v", err)
	}

	list, err := bookmarks.Bookmarks("u1")
	if err != nil {
		t.Fatalf("bookmarks: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Original" {
		t.Fatalf("snapshot must keep the copy as bookmarked: %v", list)
	}
}

func TestReferenceBookmarksFollowEditsAndDropDeleted(t *testing.T) {
	blob := newMemBlob()
	jobs := NewLocalJobs(blob)
	bookmarks := NewLocalBookmarks(blob, domain.ReferenceMode, jobs)

	first, _ := jobs.CreateJob(sampleJob("First"))
	second, _ := jobs.CreateJob(sampleJob("Second"))
	if _, err := bookmarks.ToggleBookmark("u1", first); err != nil {
		t.Fatalf("toggle first: %v", err)
	}
	if _, err := bookmarks.ToggleBookmark("u1", second); err != nil {
		t.Fatalf("toggle second: %v", err)
	}

	first.Title = "First (edited)"
	if _, err := jobs.UpdateJob(first); err != nil {
		t.Fatalf("update: %v", err)
	}
	list, err := bookmarks.Bookmarks("u1")
	if err != nil {
		t.Fatalf("bookmarks: %v", err)
	}
	if len(list) != 2 || list[0].Title != "First (edited)" {
		t.Fatalf("reference mode must resolve live records: %v", list)
	}

	// A dangling reference resolves to nothing and is filtered silently.
	if err := jobs.DeleteJob(second.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	list, err = bookmarks.Bookmarks("u1")
	if err != nil {
		t.Fatalf("bookmarks after delete: %v", err)
	}
	if len(list) != 1 || list[0].ID != first.ID {
		t.Fatalf("expected deleted job filtered out, got %v", list)
	}
}

func TestRemoveForJobVisitsAllUsers(t *testing.T) {
	for _, mode := range []domain.BookmarkMode{domain.SnapshotMode, domain.ReferenceMode} {
		t.Run(string(mode), func(t *testing.T) {
			blob := newMemBlob()
			jobs := NewLocalJobs(blob)
			bookmarks := NewLocalBookmarks(blob, mode, jobs)

			job, _ := jobs.CreateJob(sampleJob("Shared"))
			keep, _ := jobs.CreateJob(sampleJob("Keep"))
			userIDs := []string{"u1", "u2", "u3"}
			for _, uid := range userIDs {
				if _, err := bookmarks.ToggleBookmark(uid, job); err != nil {
					t.Fatalf("toggle %s: %v", uid, err)
				}
			}
			if _, err := bookmarks.ToggleBookmark("u2", keep); err != nil {
				t.Fatalf("toggle keep: %v", err)
			}

			if err := jobs.DeleteJob(job.ID); err != nil {
				t.Fatalf("delete: %v", err)
			}
			if err := bookmarks.RemoveForJob(job.ID); err != nil {
				t.Fatalf("remove for job: %v", err)
			}

			for _, uid := range userIDs {
				saved, err := bookmarks.IsBookmarked(uid, job.ID)
				if err != nil {
					t.Fatalf("check %s: %v", uid, err)
				}
				if saved {
					t.Fatalf("user %s still references deleted job", uid)
				}
			}
			list, err := bookmarks.Bookmarks("u2")
			if err != nil {
				t.Fatalf("bookmarks u2: %v", err)
			}
			if len(list) != 1 || list[0].ID != keep.ID {
				t.Fatalf("unrelated bookmark lost: %v", list)
			}
		})
	}
}

func TestNextNumericID(t *testing.T) {
	cases := []struct {
		ids  []string
		want string
	}{
		{nil, "1"},
		{[]string{"1"}, "2"},
		{[]string{"3", "1", "2"}, "4"},
		{[]string{"9", "10"}, "11"},
	}
	for _, tc := range cases {
		got, err := nextNumericID(tc.ids)
		if err != nil {
			t.Fatalf("ids %v: %v", tc.ids, err)
		}
		if got != tc.want {
			t.Fatalf("ids %v: expected %q, got %q", tc.ids, tc.want, got)
		}
	}
	if _, err := nextNumericID([]string{"1", "x2"}); !errors.Is(err, ErrBadID) {
		t.Fatalf("expected ErrBadID for non-numeric input, got: %v", err)
	}
}

func TestConcurrentTogglesStayConsistentPerUser(t *testing.T) {
	blob := newMemBlob()
	jobs := NewLocalJobs(blob)
	bookmarks := NewLocalBookmarks(blob, domain.SnapshotMode, jobs)

	var created []domain.Job
	for i := 0; i < 4; i++ {
		job, err := jobs.CreateJob(sampleJob(fmt.Sprintf("J%d", i)))
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		created = append(created, job)
	}

	// Different users write to different keys, so these do not race on a
	// shared collection.
	var wg sync.WaitGroup
	for i, job := range created {
		i, job := i, job
		wg.Add(1)
		go func() {
			defer wg.Done()
			uid := fmt.Sprintf("u%d", i)
			if _, err := bookmarks.ToggleBookmark(uid, job); err != nil {
				t.Errorf("toggle %s: %v", uid, err)
			}
		}()
	}
	wg.Wait()

	for i, job := range created {
		uid := fmt.Sprintf("u%d", i)
		saved, err := bookmarks.IsBookmarked(uid, job.ID)
		if err != nil || !saved {
			t.Fatalf("user %s lost bookmark: ok=%v err=%v", uid, saved, err)
		}
	}
}
