package vault_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/internal/vault"
)

func newTestLayout(t *testing.T) *vault.Layout {
	t.Helper()
	return vault.NewLayout(&configs.VaultConfig{
		BasePath:      t.TempDir(),
		TempDir:       "tmp",
		QuarantineDir: "quarantine",
	})
}

func TestStageCommitRead(t *testing.T) {
	l := newTestLayout(t)
	content := []byte("hello vault")

	staged, err := l.Stage("01ABC", content)
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	final := l.PathFor(vault.CategoryDocument, "01ABC", "notes.txt")
	if err := l.Commit(staged, final); err != nil {
		t.Fatalf("commit: %v", err)
	}

	if _, err := os.Stat(staged); !errors.Is(err, os.ErrNotExist) {
		t.Error("staged file should be gone after commit")
	}
	got, err := l.Read(final)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("read back %q, want %q", got, content)
	}
}

func TestPathForLayout(t *testing.T) {
	l := newTestLayout(t)
	p := l.PathFor(vault.CategoryImage, "01XYZ", "photo.png")
	if filepath.Base(p) != "01XYZ_photo.png" {
		t.Errorf("unexpected file name: %s", filepath.Base(p))
	}
	if filepath.Base(filepath.Dir(p)) != "image" {
		t.Errorf("expected category directory, got %s", filepath.Dir(p))
	}
}

func TestDiscardIdempotent(t *testing.T) {
	l := newTestLayout(t)
	staged, err := l.Stage("01DEF", []byte("x"))
	if err != nil {
		t.Fatalf("stage: %v", err)
	}
	if err := l.Discard(staged); err != nil {
		t.Fatalf("discard: %v", err)
	}
	// second discard of a missing file must not fail
	if err := l.Discard(staged); err != nil {
		t.Fatalf("discard twice: %v", err)
	}
}

func TestRemoveMissingFile(t *testing.T) {
	l := newTestLayout(t)
	if err := l.Remove(l.PathFor(vault.CategoryOther, "01GHI", "gone.bin")); err != nil {
		t.Fatalf("remove of missing file should succeed: %v", err)
	}
}

func TestReadMissingIsNotFound(t *testing.T) {
	l := newTestLayout(t)
	_, err := l.Read(l.PathFor(vault.CategoryOther, "01JKL", "none.bin"))
	if !errors.Is(err, vault.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
