package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"jobportal/pkg/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadLocalConfig(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
logLevel: debug
storage: local
dataDir: data
sessionSecret: s3cret
sessionTTL: 12h
seedDemoJobs: true
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" || cfg.Storage != StorageLocal || cfg.DataDir != "data" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if !cfg.SeedDemoJobs {
		t.Fatalf("seedDemoJobs not parsed")
	}
	ttl, err := ParseSessionTTL(cfg.SessionTTL)
	if err != nil || ttl != 12*time.Hour {
		t.Fatalf("ttl: %v %v", ttl, err)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, `
port: "8080"
storage: remote
databaseURL: postgres://file/db
sessionSecret: file-secret
`)
	t.Setenv("DATABASE_URL", "postgres://env/db")
	t.Setenv("SESSION_SECRET", "env-secret")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://env/db" {
		t.Fatalf("env must override databaseURL, got %q", cfg.DatabaseURL)
	}
	if cfg.SessionSecret != "env-secret" {
		t.Fatalf("env must override sessionSecret, got %q", cfg.SessionSecret)
	}
}

func TestValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing port",
			yaml: "storage: local\ndataDir: d\nsessionSecret: s\n",
			want: "port is required",
		},
		{
			name: "missing session secret",
			yaml: "port: \"8080\"\nstorage: local\ndataDir: d\n",
			want: "sessionSecret is required",
		},
		{
			name: "remote without database",
			yaml: "port: \"8080\"\nstorage: remote\nsessionSecret: s\n",
			want: "databaseURL is required",
		},
		{
			name: "local without a backend",
			yaml: "port: \"8080\"\nstorage: local\nsessionSecret: s\n",
			want: "dataDir or redisAddr",
		},
		{
			name: "unknown storage",
			yaml: "port: \"8080\"\nstorage: cloud\nsessionSecret: s\n",
			want: "unknown storage",
		},
		{
			name: "unknown bookmark mode",
			yaml: "port: \"8080\"\nstorage: local\ndataDir: d\nsessionSecret: s\nbookmarkMode: hybrid\n",
			want: "unknown bookmarkMode",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeConfig(t, tc.yaml)
			_, err := Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got: %v", tc.want, err)
			}
		})
	}
}

func TestResolveBookmarkModeDefaults(t *testing.T) {
	if got := ResolveBookmarkMode(FileConfig{Storage: StorageLocal}); got != domain.SnapshotMode {
		t.Fatalf("local default = %q", got)
	}
	if got := ResolveBookmarkMode(FileConfig{Storage: StorageRemote}); got != domain.ReferenceMode {
		t.Fatalf("remote default = %q", got)
	}
	if got := ResolveBookmarkMode(FileConfig{Storage: StorageLocal, BookmarkMode: "reference"}); got != domain.ReferenceMode {
		t.Fatalf("explicit mode must win, got %q", got)
	}
}

func TestParseDurationsRejectGarbage(t *testing.T) {
	if _, err := ParseSessionTTL("soon"); err == nil {
		t.Fatalf("expected error for bad sessionTTL")
	}
	if _, err := ParsePollInterval("often"); err == nil {
		t.Fatalf("expected error for bad pollInterval")
	}
	if d, err := ParsePollInterval(""); err != nil || d != 0 {
		t.Fatalf("empty interval must be zero: %v %v", d, err)
	}
}
