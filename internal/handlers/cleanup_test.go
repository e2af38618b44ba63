package handlers

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSweepRemovesExpiredDocuments(t *testing.T) {
	root := t.TempDir()
	oldDir := filepath.Join(root, "documents", "old")
	newDir := filepath.Join(root, "documents", "new")
	for _, dir := range []string{oldDir, newDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	oldFile := filepath.Join(oldDir, "contract.html")
	newFile := filepath.Join(newDir, "contract.html")
	for _, f := range []string{oldFile, newFile} {
		if err := os.WriteFile(f, []byte("<p>x</p>"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	past := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(oldFile, past, past); err != nil {
		t.Fatal(err)
	}

	fcs := NewFileCleanupService(root, 24*time.Hour)
	if n := fcs.Sweep(); n != 1 {
		t.Fatalf("removed %d files, want 1", n)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Fatalf("expected empty document directory to be removed, stat err = %v", err)
	}
	if _, err := os.Stat(newFile); err != nil {
		t.Fatalf("fresh file should survive: %v", err)
	}
}

func TestSweepMissingDirectory(t *testing.T) {
	fcs := NewFileCleanupService(filepath.Join(t.TempDir(), "absent"), time.Hour)
	if n := fcs.Sweep(); n != 0 {
		t.Fatalf("removed %d files", n)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	fcs := NewFileCleanupService(t.TempDir(), time.Hour)
	fcs.Start()
	fcs.Stop()
	fcs.Stop()
}
