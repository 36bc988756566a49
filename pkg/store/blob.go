package store

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Blob is the local-storage analog: named UTF-8 JSON blobs under fixed
// keys. Readers treat a missing key as absent; key enumeration supports
// the per-user bookmark key scheme.
type Blob interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
	// Keys returns every key starting with prefix.
	Keys(prefix string) ([]string, error)
}

// FileBlob keeps one file per key under a base directory.
type FileBlob struct {
	basePath string
}

// NewFileBlob creates the base directory if missing.
func NewFileBlob(basePath string) (*FileBlob, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("blob base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &FileBlob{basePath: basePath}, nil
}

func (f *FileBlob) path(key string) string {
	// Escape so arbitrary keys stay single flat filenames.
	return filepath.Join(f.basePath, url.PathEscape(key)+".json")
}

func (f *FileBlob) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (f *FileBlob) Set(key string, value []byte) error {
	tmp := f.path(key) + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, f.path(key))
}

func (f *FileBlob) Delete(key string) error {
	err := os.Remove(f.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *FileBlob) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(f.basePath)
	if err != nil {
		return nil, err
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
