package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pinpoint/internal/driver"
	"pinpoint/internal/scancache"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll failed: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile failed: %v", err)
		}
	}
	return dir
}

func TestIndexDir(t *testing.T) {
	dir := writeTree(t, map[string]string{
		"b.txt":      "x\ny",
		"a.txt":      "hello",
		"sub/c.txt":  "1\n2\n3\n",
		"ignored.md": "not matched",
	})

	results, err := driver.IndexDir(context.Background(), dir, "*.txt", 2, driver.Options{})
	if err != nil {
		t.Fatalf("IndexDir failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("Expected 3 results, got %d", len(results))
	}

	wantOrder := []string{
		filepath.Join(dir, "a.txt"),
		filepath.Join(dir, "b.txt"),
		filepath.Join(dir, "sub", "c.txt"),
	}
	for i, want := range wantOrder {
		if results[i].Path != want {
			t.Errorf("results[%d].Path = %q, want %q", i, results[i].Path, want)
		}
	}

	if got := results[0].Stats; got.Size != 5 || got.Lines != 1 {
		t.Errorf("a.txt stats = %+v, want size 5, 1 line", got)
	}
	if got := results[1].Stats; got.Size != 3 || got.Lines != 2 {
		t.Errorf("b.txt stats = %+v, want size 3, 2 lines", got)
	}
	if got := results[2].Stats; got.Size != 6 || got.Lines != 4 {
		t.Errorf("c.txt stats = %+v, want size 6, 4 lines", got)
	}
	var zero scancache.Digest
	for _, r := range results {
		if r.Bag.HasErrors() {
			t.Errorf("Expected no errors for %s, got %v", r.Path, r.Bag.Items())
		}
		if r.Hash == zero {
			t.Errorf("Expected a content hash for %s", r.Path)
		}
	}
}

func TestIndexDir_Empty(t *testing.T) {
	results, err := driver.IndexDir(context.Background(), t.TempDir(), "*.txt", 0, driver.Options{})
	if err != nil {
		t.Fatalf("IndexDir failed: %v", err)
	}
	if results != nil {
		t.Fatalf("Expected no results for an empty directory, got %d", len(results))
	}
}

func TestIndexDir_Canceled(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.txt": "x", "b.txt": "y"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := driver.IndexDir(ctx, dir, "", 1, driver.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
}

func TestIndexDir_BadPattern(t *testing.T) {
	dir := writeTree(t, map[string]string{"a.txt": "x"})
	if _, err := driver.IndexDir(context.Background(), dir, "[", 1, driver.Options{}); err == nil {
		t.Fatal("Expected an error for a malformed pattern")
	}
}
