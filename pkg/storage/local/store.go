package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/angelmondragon/storefront-backend/pkg/config"
	"github.com/angelmondragon/storefront-backend/pkg/storage"
)

// Store writes product images to a directory served under PublicBaseURL.
type Store struct {
	root    string
	baseURL string
}

var _ storage.Store = (*Store)(nil)

// New prepares the upload directory.
func New(cfg config.StorageConfig) (*Store, error) {
	root := strings.TrimSpace(cfg.UploadDir)
	if root == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir %q: %w", root, err)
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if base == "" {
		base = "/uploads"
	}
	return &Store{root: root, baseURL: base}, nil
}

// Root returns the directory holding uploaded files.
func (s *Store) Root() string {
	return s.root
}

// Put writes the object to disk and returns its public path.
func (s *Store) Put(ctx context.Context, obj storage.Object) (string, error) {
	full, err := s.resolve(obj.Key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("creating dir for %q: %w", obj.Key, err)
	}

	f, err := os.OpenFile(full, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("creating %q: %w", obj.Key, err)
	}
	if _, err := io.Copy(f, obj.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(full)
		return "", fmt.Errorf("writing %q: %w", obj.Key, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %q: %w", obj.Key, err)
	}
	return s.baseURL + "/" + obj.Key, nil
}

// Delete removes the file; a missing file is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing %q: %w", key, err)
	}
	return nil
}

// Ping verifies the upload directory still exists.
func (s *Store) Ping(ctx context.Context) error {
	info, err := os.Stat(s.root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%q is not a directory", s.root)
	}
	return nil
}

func (s *Store) resolve(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}
