package fileutil

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.md")

	if err := WriteFileAtomic(path, []byte("first"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "second" {
		t.Fatalf("content mismatch: got %q", got)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("mode mismatch: got %o", info.Mode().Perm())
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the target file, found %d entries", len(entries))
	}
}

func TestWriteFileAtomic_MissingDir(t *testing.T) {
	if err := WriteFileAtomic(filepath.Join(t.TempDir(), "missing", "out.md"), []byte("x"), 0o644); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestCopyFileVerified(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "sample.md")
	dst := filepath.Join(dir, "copy.md")
	content := []byte("I write short sentences. Mostly.")
	if err := os.WriteFile(src, content, 0o644); err != nil {
		t.Fatal(err)
	}

	digest, err := CopyFileVerified(src, dst)
	if err != nil {
		t.Fatal(err)
	}
	sum := sha256.Sum256(content)
	if digest != hex.EncodeToString(sum[:]) {
		t.Fatalf("digest mismatch: got %s", digest)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q", got)
	}
}

func TestCopyFileVerified_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.md")
	dst := filepath.Join(dir, "b.md")
	for _, p := range []string{src, dst} {
		if err := os.WriteFile(p, []byte(p), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := CopyFileVerified(src, dst); err == nil {
		t.Fatal("expected error when destination exists")
	}
}

func TestCopyFileVerified_MissingSource(t *testing.T) {
	dir := t.TempDir()
	if _, err := CopyFileVerified(filepath.Join(dir, "missing"), filepath.Join(dir, "dst")); err == nil {
		t.Fatal("expected error for missing source")
	}
}
