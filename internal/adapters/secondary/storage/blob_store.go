package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chalktalk/studio/internal/domain/ports"
)

// ErrBlobNotFound is returned when a ref resolves to no stored blob.
var ErrBlobNotFound = errors.New("blob not found")

// FSBlobStore keeps audio blobs as files under a root directory. Refs are the
// slash-separated relative paths used at Put time.
type FSBlobStore struct {
	root string
}

// NewFSBlobStore creates a blob store rooted at dir.
func NewFSBlobStore(dir string) (*FSBlobStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("creating blob root %s: %w", dir, err)
	}
	return &FSBlobStore{root: dir}, nil
}

// Put stores a blob under name and returns its ref.
func (s *FSBlobStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	ref, err := s.cleanRef(name)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.root, filepath.FromSlash(ref))
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return "", fmt.Errorf("creating blob directory: %w", err)
	}

	// Write-then-rename so a crashed write never leaves a torn blob behind
	// the ref.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", fmt.Errorf("writing blob %s: %w", ref, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("publishing blob %s: %w", ref, err)
	}
	return ref, nil
}

// Get returns the blob for a ref.
func (s *FSBlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	clean, err := s.cleanRef(ref)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.root, filepath.FromSlash(clean))) // #nosec G304 - ref is sanitized
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrBlobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("reading blob %s: %w", clean, err)
	}
	return data, nil
}

// Delete removes the blob for a ref. Deleting a missing blob is not an error.
func (s *FSBlobStore) Delete(ctx context.Context, ref string) error {
	clean, err := s.cleanRef(ref)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("deleting blob %s: %w", clean, err)
	}
	return nil
}

// URL returns the serving path for a ref.
func (s *FSBlobStore) URL(ref string) string {
	return "/audio/" + strings.TrimPrefix(ref, "/")
}

// Root returns the directory blobs live under, for static file serving.
func (s *FSBlobStore) Root() string {
	return s.root
}

// cleanRef normalizes a ref and rejects anything escaping the root.
func (s *FSBlobStore) cleanRef(ref string) (string, error) {
	clean := filepath.ToSlash(filepath.Clean("/" + ref))
	clean = strings.TrimPrefix(clean, "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("invalid blob ref %q", ref)
	}
	return clean, nil
}

// Ensure FSBlobStore implements ports.BlobStore
var _ ports.BlobStore = (*FSBlobStore)(nil)
