package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/felixgeelhaar/chamai/pkg/domain"
)

func TestFilesystemRepository_SetGetRemove(t *testing.T) {
	dir := t.TempDir()
	repo := NewFilesystemRepository(dir)

	if repo.IsInitialized() {
		t.Fatal("fresh directory should not be initialized")
	}

	if _, err := repo.Get(DefaultStateKey); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.Set(DefaultStateKey, []byte(`{"scores":{}}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !repo.IsInitialized() {
		t.Error("Set should create the .chamai directory")
	}

	info, err := os.Stat(filepath.Join(dir, ChamaiDir, DefaultStateKey+".json"))
	if err != nil {
		t.Fatalf("state file missing: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("expected 0600, got %v", info.Mode().Perm())
	}

	data, err := repo.Get(DefaultStateKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != `{"scores":{}}` {
		t.Errorf("unexpected data %q", data)
	}

	if err := repo.Remove(DefaultStateKey); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := repo.Get(DefaultStateKey); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after Remove, got %v", err)
	}
	if err := repo.Remove(DefaultStateKey); err != nil {
		t.Errorf("removing a missing key should succeed, got %v", err)
	}
}

func TestFilesystemRepository_InvalidKeys(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	for _, key := range []string{"", "../escape", `a\b`, "nested/key"} {
		if err := repo.Set(key, []byte("x")); err == nil {
			t.Errorf("Set(%q) should fail", key)
		}
		if _, err := repo.Get(key); err == nil {
			t.Errorf("Get(%q) should fail", key)
		}
	}
}

func TestFilesystemRepository_ResolvePath(t *testing.T) {
	repo := NewFilesystemRepository(t.TempDir())
	if _, err := repo.ResolvePath(""); err == nil {
		t.Error("empty filename should fail")
	}
	if _, err := repo.ResolvePath("../outside.yaml"); err == nil {
		t.Error("traversal should fail")
	}
	path, err := repo.ResolvePath(ConfigFile)
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(repo.Dir(), ConfigFile) {
		t.Errorf("unexpected path %s", path)
	}
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage()
	if _, err := m.Get("k"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	buf := []byte("v1")
	if err := m.Set("k", buf); err != nil {
		t.Fatal(err)
	}
	buf[0] = 'x'
	got, err := m.Get("k")
	if err != nil || string(got) != "v1" {
		t.Errorf("Get = %q, %v; stored value must not alias the caller's slice", got, err)
	}
	if err := m.Remove("k"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.Get("k"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound after Remove, got %v", err)
	}
}
