package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/matzehuels/orgtower/pkg/config"
)

func TestClearCache(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ab/one.json", "cd/two.json", "cd/three.json"} {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	if n := countFiles(dir); n != 3 {
		t.Fatalf("countFiles() = %d, want 3", n)
	}

	cfg := config.Default()
	cfg.Cache.Dir = dir
	if err := clearCache(context.Background(), cfg); err != nil {
		t.Fatalf("clearCache() error: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir has %d entries after clear, want 0", len(entries))
	}
}

func TestClearCacheMissingDir(t *testing.T) {
	cfg := config.Default()
	cfg.Cache.Dir = filepath.Join(t.TempDir(), "missing")
	if err := clearCache(context.Background(), cfg); err != nil {
		t.Errorf("clearCache() on missing dir error: %v", err)
	}
}
