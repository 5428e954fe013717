package osfilesystem

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileSystem_WriteAndReadFile(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "a", "b", "000000000001_keypoints.json")

	if err := fs.WriteFile(path, []byte(`{"people":[]}`)); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := fs.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(data) != `{"people":[]}` {
		t.Errorf("unexpected content %q", data)
	}
}

func TestFileSystem_WriteFileReplacesWithoutLeftovers(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	path := filepath.Join(dir, "000000000002_keypoints.json")

	if err := fs.WriteFile(path, []byte("first")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if err := fs.WriteFile(path, []byte("second")); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil || string(data) != "second" {
		t.Errorf("expected replaced content, got %q, %v", data, err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, found %d entries", len(entries))
	}
	info, err := os.Stat(path)
	if err != nil || info.Mode().Perm() != 0644 {
		t.Errorf("expected mode 0644, got %v", info.Mode().Perm())
	}
}

func TestFileSystem_MkdirAll(t *testing.T) {
	fs := New()
	path := filepath.Join(t.TempDir(), "x", "y")

	if err := fs.MkdirAll(path); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		t.Errorf("expected directory at %s", path)
	}
}

func TestFileSystem_ListFiles(t *testing.T) {
	fs := New()
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.JPG", "c.txt", "d.jpeg"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "e.png"), 0755); err != nil {
		t.Fatal(err)
	}

	files, err := fs.ListFiles(dir, ".png", ".jpg", ".jpeg")
	if err != nil {
		t.Fatalf("ListFiles failed: %v", err)
	}
	want := []string{"a.JPG", "b.png", "d.jpeg"}
	if len(files) != len(want) {
		t.Fatalf("got %v, want %v", files, want)
	}
	for i, name := range want {
		if files[i] != filepath.Join(dir, name) {
			t.Errorf("files[%d] = %s, want %s", i, files[i], name)
		}
	}

	all, err := fs.ListFiles(dir)
	if err != nil || len(all) != 4 {
		t.Errorf("expected 4 files without filter, got %v, %v", all, err)
	}

	if _, err := fs.ListFiles(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}
