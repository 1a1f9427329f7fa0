package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Local stores objects on the local filesystem under baseDir and serves them
// through the static /uploads route.
type Local struct {
	baseDir string
	baseURL string
}

func NewLocal(baseDir, baseURL string) (*Local, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload directory: %w", err)
	}
	return &Local{baseDir: baseDir, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

func (l *Local) Upload(_ context.Context, path string, data []byte, _ string) error {
	full, err := l.resolve(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (l *Local) Read(_ context.Context, path string) ([]byte, error) {
	full, err := l.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func (l *Local) PublicURL(path string) string {
	return l.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// Remove deletes objects best-effort: a missing object is not an error, the
// first real failure is returned after attempting the rest.
func (l *Local) Remove(_ context.Context, paths []string) error {
	var firstErr error
	for _, p := range paths {
		full, err := l.resolve(p)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			if firstErr == nil {
				firstErr = fmt.Errorf("remove %s: %w", p, err)
			}
		}
	}
	return firstErr
}

// resolve joins the object path onto baseDir, refusing traversal outside it.
func (l *Local) resolve(path string) (string, error) {
	clean := filepath.Clean("/" + path)
	if strings.Contains(clean, "..") {
		return "", fmt.Errorf("invalid object path %q", path)
	}
	return filepath.Join(l.baseDir, clean), nil
}
