package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsGraphFile(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"graph.json":     `{"nodes": [], "edges": []}`,
		"bom.json":       "\ufeff\n  {\"nodes\": []}",
		"rows.json":      `[{"issue": "G1"}]`,
		"empty.json":     "",
		"graph.csv":      `{"nodes": []}`,
		"groups.yaml":    "- issue: G1\n",
		"spaced.JSON":    "\n\t{}",
		"not-there.json": "",
	}
	for name, body := range files {
		if name == "not-there.json" {
			continue
		}
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name string
		want bool
	}{
		{"graph.json", true},
		{"bom.json", true},
		{"spaced.JSON", true},
		{"rows.json", false},
		{"empty.json", false},
		{"graph.csv", false},
		{"groups.yaml", false},
		{"not-there.json", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isGraphFile(filepath.Join(dir, tt.name)); got != tt.want {
				t.Errorf("isGraphFile(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		name   string
		output string
		input  string
		want   string
	}{
		{"derived from input", "", "groups.csv", "groups"},
		{"derived from nested input", "", "data/groups.json", "data/groups"},
		{"output with format ext", "out/tsc.svg", "groups.csv", "out/tsc"},
		{"output with upper ext", "tsc.PNG", "groups.csv", "tsc"},
		{"output without ext", "out/tsc", "groups.csv", "out/tsc"},
		{"output with unknown ext", "tsc.txt", "groups.csv", "tsc.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := basePath(tt.output, tt.input); got != tt.want {
				t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
			}
		})
	}
}

func TestOpenOutputCreatesDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a", "b", "graph.json")
	out, err := openOutput(path)
	if err != nil {
		t.Fatalf("openOutput() error: %v", err)
	}
	if _, err := out.Write([]byte("{}")); err != nil {
		t.Fatal(err)
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("output not written: %v", err)
	}
}
