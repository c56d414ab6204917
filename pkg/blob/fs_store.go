package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FSStore saves objects to disk under a base directory and resolves them
// against a base URL. Meant for development setups without object storage.
type FSStore struct {
	basePath string
	baseURL  string
}

// NewFSStore creates the base directory if missing.
func NewFSStore(basePath, baseURL string) (*FSStore, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, fmt.Errorf("blob base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create blob dir: %w", err)
	}
	return &FSStore{basePath: basePath, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Upload writes the object under the base directory.
func (f *FSStore) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) (string, error) {
	target := f.targetPath(key)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}
	out, err := os.Create(target)
	if err != nil {
		return "", fmt.Errorf("create object: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, r); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	return f.baseURL + "/" + path.Clean(key), nil
}

// Delete removes the object file if present.
func (f *FSStore) Delete(_ context.Context, key string) error {
	err := os.Remove(f.targetPath(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (f *FSStore) targetPath(key string) string {
	return filepath.Join(f.basePath, filepath.FromSlash(path.Clean(key)))
}
