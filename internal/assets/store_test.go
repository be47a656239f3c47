//go:build unit

package assets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestStore creates a Store rooted in a fresh temp directory.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	return store
}

func TestStore_Save_GeneratesDistinctNames(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save([]byte("payload-one"), ".png")
	if err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	second, err := store.Save([]byte("payload-one"), ".png")
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	if first == second {
		t.Errorf("expected distinct stored paths, both were %q", first)
	}
	if !strings.HasSuffix(first, ".png") {
		t.Errorf("expected stored path to keep the extension, got %q", first)
	}
	if !strings.HasPrefix(first, "uploads/") {
		t.Errorf("expected root-relative path, got %q", first)
	}
}

func TestStore_Save_DropsSuspiciousExtensions(t *testing.T) {
	store := newTestStore(t)

	cases := []string{"png", ".pn/g", "../../etc", ".a.b", ""}
	for _, ext := range cases {
		rel, err := store.Save([]byte("x"), ext)
		if err != nil {
			t.Fatalf("Save with extension %q failed: %v", ext, err)
		}
		if strings.ContainsAny(filepath.Base(rel), ".") {
			t.Errorf("extension %q should have been dropped, got stored path %q", ext, rel)
		}
	}
}

func TestStore_PathPrefixIndependentOfRootName(t *testing.T) {
	// The served URL prefix is fixed, so stored paths must carry it even
	// when the upload directory is named something else.
	dir := filepath.Join(t.TempDir(), "data", "images")
	store, err := NewStore(dir)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	rel, err := store.Save([]byte("pic"), ".png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !strings.HasPrefix(rel, PublicPrefix+"/") {
		t.Errorf("expected stored path under %q, got %q", PublicPrefix, rel)
	}

	if err := store.Delete(rel); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	abs := filepath.Join(dir, strings.TrimPrefix(rel, PublicPrefix+"/"))
	if _, err := os.Stat(abs); !os.IsNotExist(err) {
		t.Errorf("expected file to be gone, stat err: %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)

	t.Run("removes a stored file", func(t *testing.T) {
		rel, err := store.Save([]byte("doomed"), ".jpg")
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		if err := store.Delete(rel); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		abs := filepath.Join(store.root, strings.TrimPrefix(rel, PublicPrefix+"/"))
		if _, err := os.Stat(abs); !os.IsNotExist(err) {
			t.Errorf("expected file to be gone, stat err: %v", err)
		}
	})

	t.Run("is idempotent for missing files", func(t *testing.T) {
		if err := store.Delete("uploads/never-existed.png"); err != nil {
			t.Errorf("expected no error for missing file, got %v", err)
		}
	})

	t.Run("empty path is a no-op", func(t *testing.T) {
		if err := store.Delete(""); err != nil {
			t.Errorf("expected no error for empty path, got %v", err)
		}
	})

	t.Run("refuses traversal paths", func(t *testing.T) {
		if err := store.Delete("../secrets.txt"); err == nil {
			t.Error("expected error for traversal path, got nil")
		}
	})
}

func TestStore_Replace(t *testing.T) {
	store := newTestStore(t)

	old, err := store.Save([]byte("old"), ".png")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	rel, err := store.Replace(old, []byte("new"), ".gif")
	if err != nil {
		t.Fatalf("Replace failed: %v", err)
	}
	if rel == old {
		t.Errorf("expected a new stored path, got the old one %q", rel)
	}

	oldAbs := filepath.Join(store.root, strings.TrimPrefix(old, PublicPrefix+"/"))
	if _, err := os.Stat(oldAbs); !os.IsNotExist(err) {
		t.Errorf("expected old file to be removed, stat err: %v", err)
	}

	// Replacing with no previous file still stores the new one.
	rel2, err := store.Replace("", []byte("fresh"), ".png")
	if err != nil {
		t.Fatalf("Replace without old file failed: %v", err)
	}
	if rel2 == "" {
		t.Error("expected a stored path, got empty string")
	}
}
