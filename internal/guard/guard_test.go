package guard

import (
	"testing"

	"jobportal/pkg/domain"
	"jobportal/pkg/session"
	"jobportal/pkg/store"
)

func newManager(t *testing.T) *session.Manager {
	t.Helper()
	blob, err := store.NewFileBlob(t.TempDir())
	if err != nil {
		t.Fatalf("new blob: %v", err)
	}
	m, err := session.NewManager(blob, session.NewTokenCodec("guard-secret", 0))
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestGuardsWithoutManager(t *testing.T) {
	if Authenticated(nil) {
		t.Fatalf("nil manager must not pass Authenticated")
	}
	if Admin(nil) {
		t.Fatalf("nil manager must not pass Admin")
	}
}

func TestGuardsWithoutSession(t *testing.T) {
	m := newManager(t)
	if Authenticated(m) {
		t.Fatalf("logged-out manager must not pass Authenticated")
	}
	if Admin(m) {
		t.Fatalf("logged-out manager must not pass Admin")
	}
}

func TestGuardsForRegularUser(t *testing.T) {
	m := newManager(t)
	if err := m.Set(domain.Identity{UserID: "2", Email: "user@test.com"}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !Authenticated(m) {
		t.Fatalf("regular user must pass Authenticated")
	}
	if Admin(m) {
		t.Fatalf("regular user must not pass Admin")
	}
}

func TestGuardsForAdmin(t *testing.T) {
	m := newManager(t)
	if err := m.Set(domain.Identity{UserID: "1", Email: "admin@admin.com", Admin: true}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if !Authenticated(m) || !Admin(m) {
		t.Fatalf("admin must pass both guards")
	}
}

func TestGuardsFollowLogout(t *testing.T) {
	m := newManager(t)
	if err := m.Set(domain.Identity{UserID: "1", Admin: true}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if Authenticated(m) || Admin(m) {
		t.Fatalf("guards must deny after logout")
	}
}
