// Package storage abstracts the object store that holds label photos.
package storage

import (
	"context"
	"io"
)

// UploadInfo describes a stored object.
type UploadInfo struct {
	Path      string `json:"path"`
	PublicURL string `json:"public_url"`
}

// ObjectStore is the storage collaborator contract. Remove is best-effort:
// callers tolerate and log partial failures instead of rolling back.
type ObjectStore interface {
	Upload(ctx context.Context, name string, r io.Reader) (UploadInfo, error)
	Remove(ctx context.Context, paths []string) error
	PublicURL(path string) string
}
