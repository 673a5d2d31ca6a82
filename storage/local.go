package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/leohmarruda/health-food-score/config"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// LocalStore keeps objects on the local filesystem and serves them under a
// public base URL (the router mounts the directory at /files/).
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates the storage directory if needed.
func NewLocalStore() (*LocalStore, error) {
	root := config.GetEnv("STORAGE_DIR", "./data/images")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage dir: %w", err)
	}
	return &LocalStore{
		root:    root,
		baseURL: strings.TrimSuffix(config.GetEnv("STORAGE_BASE_URL", "/files"), "/"),
	}, nil
}

// Upload stores the object under a collision-free name derived from the
// original filename.
func (s *LocalStore) Upload(ctx context.Context, name string, r io.Reader) (UploadInfo, error) {
	if err := ctx.Err(); err != nil {
		return UploadInfo{}, err
	}

	clean := unsafeChars.ReplaceAllString(filepath.Base(name), "_")
	objectName := uuid.NewString()[:8] + "-" + clean

	f, err := os.Create(filepath.Join(s.root, objectName))
	if err != nil {
		return UploadInfo{}, fmt.Errorf("failed to create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return UploadInfo{}, fmt.Errorf("failed to write object: %w", err)
	}

	return UploadInfo{
		Path:      objectName,
		PublicURL: s.PublicURL(objectName),
	}, nil
}

// Remove deletes the named objects, continuing past individual failures and
// reporting them joined. Missing objects are not errors.
func (s *LocalStore) Remove(ctx context.Context, paths []string) error {
	var errs []error
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		// Object names never contain separators; drop anything that does.
		p = filepath.Base(p)
		if p == "." || p == "/" || p == "" {
			continue
		}
		if err := os.Remove(filepath.Join(s.root, p)); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("remove %s: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// PublicURL maps an object path to its served URL.
func (s *LocalStore) PublicURL(path string) string {
	return s.baseURL + "/" + filepath.Base(path)
}

// Root exposes the storage directory for static file serving.
func (s *LocalStore) Root() string { return s.root }
