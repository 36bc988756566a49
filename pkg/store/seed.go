package store

import (
	"fmt"
	"time"

	"jobportal/pkg/domain"
)

// Fixed accounts inserted at first run. Matching is by email, so running
// initialization repeatedly never duplicates them.
const (
	AdminEmail    = "admin@admin.com"
	AdminPassword = "admin"
	TestEmail     = "user@test.com"
	TestPassword  = "test123"
)

// SeedAccounts ensures the administrative and test accounts exist.
// hashPassword is injected so the store package stays free of the
// hashing dependency.
func SeedAccounts(users UserStore, hashPassword func(string) (string, error)) error {
	adminHash, err := hashPassword(AdminPassword)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	if err := users.EnsureUser(domain.User{
		ID:           "1",
		Name:         "Admin",
		Email:        AdminEmail,
		PasswordHash: adminHash,
		Admin:        true,
	}); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	testHash, err := hashPassword(TestPassword)
	if err != nil {
		return fmt.Errorf("hash test password: %w", err)
	}
	if err := users.EnsureUser(domain.User{
		ID:           "2",
		Name:         "Test User",
		Email:        TestEmail,
		PasswordHash: testHash,
		Admin:        false,
	}); err != nil {
		return fmt.Errorf("seed test user: %w", err)
	}
	return nil
}

// DefaultJobs returns the demo postings written to an empty local job
// collection on first run.
func DefaultJobs() []domain.Job {
	now := time.Now().UTC()
	return []domain.Job{
		{
			ID:              "1",
			Title:           "Frontend Fejlesztő (Senior)",
			Company:         "Tech Corp International",
			Location:        "Budapest, Magyarország",
			Salary:          1200000,
			Description:     "Szenior Angular fejlesztői pozíció, amely Angular 15+, RxJS és NgRx állapotkezelés mély ismeretét követeli meg.",
			LongDescription: "Csatlakozz csapatunkhoz, ahol legújabb Angular alkalmazásokon dolgozhatsz. Együttműködés UX tervezőkkel és backend csapatokkal kiváló minőségű webalkalmazások létrehozásában.",
			Requirements:    []string{"Angular", "TypeScript", "HTML/CSS"},
			ContactInfo:     domain.ContactInfo{Email: "careers@techcorp.hu", Phone: "+36 123 4567"},
			CreatedAt:       now,
		},
		{
			ID:              "2",
			Title:           "Backend Fejlesztő",
			Company:         "Code Masters",
			Location:        "Távoli",
			Salary:          900000,
			Description:     "Node.js backend fejlesztés",
			LongDescription: "Skálázható mikroszolgáltatás architektúra fejlesztése Node.js és TypeScript használatával.",
			Requirements:    []string{"Node.js", "PostgreSQL", "REST API"},
			ContactInfo:     domain.ContactInfo{Email: "hr@codemasters.com"},
			CreatedAt:       now,
		},
		{
			ID:              "3",
			Title:           "UX Designer",
			Company:         "Design Hub",
			Location:        "Szeged",
			Salary:          700000,
			Description:     "Felhasználói élmény tervezés",
			LongDescription: "Intuitív felhasználói felületek tervezése és felhasználói kutatások végrehajtása.",
			Requirements:    []string{"Figma", "UI/UX", "Prototípus készítés"},
			ContactInfo:     domain.ContactInfo{Email: "design-jobs@designhub.hu", Phone: "+36 987 6543"},
			CreatedAt:       now,
		},
	}
}
