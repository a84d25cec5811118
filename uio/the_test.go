package uio

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileExists(t *testing.T) {
	file := filepath.Join(t.TempDir(), "exists.txt")

	if FileExists(file) {
		t.Fatalf("file %s should not exist yet", file)
	}

	if err := os.WriteFile(file, []byte("just a test"), 0644); err != nil {
		t.Fatalf("unable to create %s: %s", file, err)
	}

	if !FileExists(file) {
		t.Fatalf("file %s should exist", file)
	}
}

func TestSortByModTime(t *testing.T) {
	dir := t.TempDir()
	names := []string{"oldest", "middle", "newest"}
	now := time.Now()

	for i, name := range names {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte(name), 0644); err != nil {
			t.Fatalf("unable to create %s: %s", p, err)
		}
		mtime := now.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(p, mtime, mtime); err != nil {
			t.Fatalf("unable to chtimes %s: %s", p, err)
		}
	}

	files := make([]os.FileInfo, 0, len(names))
	for _, shuffled := range []string{"newest", "oldest", "middle"} {
		fi, err := os.Stat(filepath.Join(dir, shuffled))
		if err != nil {
			t.Fatalf("unable to stat %s: %s", shuffled, err)
		}
		files = append(files, fi)
	}

	SortByModTime(files)

	for i, name := range names {
		if files[i].Name() != name {
			t.Fatalf("expected %s at position %d, got %s", name, i, files[i].Name())
		}
	}
}
