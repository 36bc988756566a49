package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"jobportal/pkg/domain"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

// Storage variants.
const (
	StorageLocal  = "local"
	StorageRemote = "remote"
)

// FileConfig represents configuration loaded from YAML, with selected
// environment-variable overrides.
type FileConfig struct {
	Port          string `yaml:"port"`
	LogLevel      string `yaml:"logLevel"`
	Storage       string `yaml:"storage"`
	DataDir       string `yaml:"dataDir"`
	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`
	DatabaseURL   string `yaml:"databaseURL"`
	BookmarkMode  string `yaml:"bookmarkMode"`
	SessionSecret string `yaml:"sessionSecret"`
	SessionTTL    string `yaml:"sessionTTL"`
	PollInterval  string `yaml:"pollInterval"`
	SeedDemoJobs  bool   `yaml:"seedDemoJobs"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("STORAGE"); v != "" {
		cfg.Storage = v
	}
	if v := os.Getenv("BOOKMARK_MODE"); v != "" {
		cfg.BookmarkMode = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.SessionSecret = v
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml)")
	}
	if cfg.SessionSecret == "" {
		return errors.New("config: sessionSecret is required (set SESSION_SECRET)")
	}
	switch cfg.Storage {
	case StorageLocal:
		if cfg.DataDir == "" && cfg.RedisAddr == "" {
			return errors.New("config: local storage needs dataDir or redisAddr")
		}
	case StorageRemote:
		if cfg.DatabaseURL == "" {
			return errors.New("config: databaseURL is required for remote storage")
		}
	default:
		return fmt.Errorf("config: unknown storage %q (local or remote)", cfg.Storage)
	}
	switch cfg.BookmarkMode {
	case "", string(domain.SnapshotMode), string(domain.ReferenceMode):
	default:
		return fmt.Errorf("config: unknown bookmarkMode %q (snapshot or reference)", cfg.BookmarkMode)
	}
	return nil
}

// ResolveBookmarkMode applies the per-variant default when the mode is
// not set explicitly: local defaults to snapshot, remote to reference.
func ResolveBookmarkMode(cfg FileConfig) domain.BookmarkMode {
	if cfg.BookmarkMode != "" {
		return domain.BookmarkMode(cfg.BookmarkMode)
	}
	if cfg.Storage == StorageRemote {
		return domain.ReferenceMode
	}
	return domain.SnapshotMode
}

// ParseSessionTTL parses the optional session TTL duration string.
func ParseSessionTTL(ttlStr string) (time.Duration, error) {
	if ttlStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(ttlStr)
	if err != nil {
		return 0, fmt.Errorf("invalid sessionTTL duration: %w", err)
	}
	return dur, nil
}

// ParsePollInterval parses the optional bookmark poll interval.
func ParsePollInterval(intervalStr string) (time.Duration, error) {
	if intervalStr == "" {
		return 0, nil
	}
	dur, err := time.ParseDuration(intervalStr)
	if err != nil {
		return 0, fmt.Errorf("invalid pollInterval duration: %w", err)
	}
	return dur, nil
}
