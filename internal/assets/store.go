// Package assets manages uploaded image files for articles. Stored files
// are named with a freshly generated identifier plus the original
// extension, never with the user-supplied filename, so a crafted filename
// cannot traverse outside the upload root.
package assets

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PublicPrefix is the leading segment of every stored asset path. It
// matches the route that serves uploaded files and stays the same no
// matter where the upload root lives on disk.
const PublicPrefix = "uploads"

// Store persists image blobs under a single upload root and addresses them
// by root-relative path strings suitable for persisting on an article row.
type Store struct {
	root string
}

// NewStore creates a Store rooted at dir, creating the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root %s: %w", dir, err)
	}
	return &Store{root: dir}, nil
}

// Save writes the file bytes under a generated name and returns the
// root-relative path to persist. Two uploads of identically named source
// files always land under distinct stored names.
func (s *Store) Save(data []byte, originalExt string) (string, error) {
	name := uuid.NewString() + normalizeExt(originalExt)
	rel := path.Join(PublicPrefix, name)

	dst := filepath.Join(s.root, name)
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to store asset: %w", err)
	}
	return rel, nil
}

// Delete removes a stored file by its root-relative path. Deleting a path
// that does not exist is a no-op, not an error.
func (s *Store) Delete(rel string) error {
	if rel == "" {
		return nil
	}
	// Only paths issued by Save are valid; anything trying to climb out of
	// the upload root is refused.
	if strings.Contains(rel, "..") {
		return fmt.Errorf("invalid asset path %q", rel)
	}
	name := strings.TrimPrefix(rel, PublicPrefix+"/")
	abs := filepath.Join(s.root, filepath.FromSlash(name))
	if err := os.Remove(abs); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete asset %s: %w", rel, err)
	}
	return nil
}

// Replace deletes the old file (tolerating a missing one) and stores the
// new bytes, returning the new relative path.
func (s *Store) Replace(oldRel string, data []byte, originalExt string) (string, error) {
	if err := s.Delete(oldRel); err != nil {
		return "", err
	}
	return s.Save(data, originalExt)
}

// normalizeExt keeps only a plain ".xyz" suffix from whatever extension the
// client claimed. Anything with separators or without a leading dot is
// dropped entirely.
func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || !strings.HasPrefix(ext, ".") {
		return ""
	}
	if strings.ContainsAny(ext[1:], "./\\") {
		return ""
	}
	return ext
}
