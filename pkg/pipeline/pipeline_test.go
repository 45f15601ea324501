package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/rows"
)

var sampleRows = []rows.Row{
	{ID: "HC1", Name: "Software HC", Status: "Active", ParentName: "Technical Steering Committee (TSC)"},
	{ID: "HC2", Name: "Hardware HC", Status: "Active", ParentName: "Technical Steering Committee (TSC)"},
	{ID: "G1", Name: "Alpha SIG", Status: "Active", ParentName: "Software HC"},
	{ID: "G2", Name: "Beta TG", Status: "Proposing", ParentName: "Hardware HC"},
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "dot", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	err := ValidateFormats([]string{"svg", "invalid"})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Invalid format error = %v, want INVALID_FORMAT", err)
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Rows: sampleRows}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error: %v", err)
	}
	if opts.Mode != DefaultMode || opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("layout defaults = %q %vx%v", opts.Mode, opts.Width, opts.Height)
	}
	if opts.Force.Width != DefaultWidth || opts.Tree.Height != DefaultHeight {
		t.Error("viewport size should propagate into the engine configs")
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatSVG || opts.Scale != DefaultScale {
		t.Errorf("render defaults = %v scale %v", opts.Formats, opts.Scale)
	}
	if opts.RootID != "TSC" || opts.Logger == nil || opts.Measurer == nil {
		t.Error("runtime defaults not applied")
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"no source", Options{}, errors.ErrCodeInvalidRowSource},
		{"bad extension", Options{Source: "groups.txt"}, errors.ErrCodeInvalidRowSource},
		{"bad mode", Options{Rows: sampleRows, Mode: "radial"}, errors.ErrCodeInvalidMode},
		{"bad format", Options{Rows: sampleRows, Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLayoutKeyOptsDependOnMode(t *testing.T) {
	a := Options{Mode: "tree"}
	a.SetLayoutDefaults()
	b := Options{Mode: "graph"}
	b.SetLayoutDefaults()
	if a.LayoutKeyOpts() == b.LayoutKeyOpts() {
		t.Error("tree and graph layouts should not share a cache key")
	}

	c := Options{Mode: "graph", Force: a.Force}
	c.Force.LinkDistance = 200
	c.SetLayoutDefaults()
	if b.LayoutKeyOpts() == c.LayoutKeyOpts() {
		t.Error("engine parameters should be part of the cache key")
	}
}

func TestLoadRows(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "groups.json")
	var buf bytes.Buffer
	if err := rows.WriteJSON(&buf, sampleRows); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	rs, err := LoadRows(Options{Source: path, ActiveOnly: true})
	if err != nil {
		t.Fatalf("LoadRows() error: %v", err)
	}
	if len(rs) != 3 {
		t.Errorf("len(rows) = %d, want 3 active rows", len(rs))
	}

	_, err = LoadRows(Options{Source: filepath.Join(dir, "missing.csv")})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestGenerateLayoutTree(t *testing.T) {
	opts := Options{Rows: sampleRows, Mode: "tree"}
	_ = opts.ValidateForBuild()
	g, _ := Build(sampleRows, opts)

	l, err := GenerateLayout(g, opts)
	if err != nil {
		t.Fatalf("GenerateLayout() error: %v", err)
	}
	if !l.IsTree() || len(l.Nodes) != 5 || len(l.Connectors) != 4 {
		t.Errorf("layout = %s with %d nodes and %d connectors", l.Mode, len(l.Nodes), len(l.Connectors))
	}
	if l.Nodes[0].ID != "TSC" || l.Nodes[0].Depth != 0 {
		t.Errorf("first node = %+v, want the root", l.Nodes[0])
	}
	if !l.Transform.Finite() || l.Transform.K > 1 {
		t.Errorf("transform = %v", l.Transform)
	}
}

func TestGenerateLayoutGraph(t *testing.T) {
	opts := Options{Rows: sampleRows, Mode: "graph"}
	_ = opts.ValidateForBuild()
	g, _ := Build(sampleRows, opts)

	l, err := GenerateLayout(g, opts)
	if err != nil {
		t.Fatalf("GenerateLayout() error: %v", err)
	}
	if !l.IsGraph() || !l.Settled || len(l.Nodes) != g.NodeCount() {
		t.Errorf("layout = %s settled=%v nodes=%d", l.Mode, l.Settled, len(l.Nodes))
	}
	if !l.Transform.Finite() {
		t.Errorf("transform = %v, want a fitted transform", l.Transform)
	}
}

func TestGenerateLayoutMissingRoot(t *testing.T) {
	opts := Options{Rows: sampleRows, Mode: "tree"}
	_ = opts.ValidateForBuild()
	g, _ := Build(sampleRows, opts)

	opts.RootID = "nope"
	if _, err := GenerateLayout(g, opts); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
}

func TestRunnerExecuteCaches(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(fc, nil, nil)
	defer runner.Close()

	opts := Options{
		Rows:    sampleRows,
		Mode:    "tree",
		Formats: []string{FormatSVG, FormatDOT, FormatJSON},
		Title:   "RISC-V",
	}
	ctx := context.Background()

	first, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if first.CacheInfo.BuildHit || first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run hit the cache: %+v", first.CacheInfo)
	}
	if first.Stats.NodeCount != 5 || first.GraphHash == "" {
		t.Errorf("stats = %+v hash %q", first.Stats, first.GraphHash)
	}

	svg := string(first.Artifacts[FormatSVG])
	if !strings.HasPrefix(svg, "<svg") || !strings.Contains(svg, "RISC-V") {
		t.Errorf("svg artifact = %.80q", svg)
	}
	if !strings.Contains(string(first.Artifacts[FormatDOT]), `"TSC" -> "Software HC"`) {
		t.Errorf("dot artifact = %q", first.Artifacts[FormatDOT])
	}
	var l graph.Layout
	if err := json.Unmarshal(first.Artifacts[FormatJSON], &l); err != nil || l.Mode != "tree" {
		t.Errorf("json artifact: mode %q err %v", l.Mode, err)
	}

	second, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error: %v", err)
	}
	if !second.CacheInfo.BuildHit || !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v, want all hits", second.CacheInfo)
	}
	if !bytes.Equal(first.Artifacts[FormatSVG], second.Artifacts[FormatSVG]) {
		t.Error("cached svg differs")
	}

	opts.ActiveOnly = true
	third, err := runner.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("active-only Execute() error: %v", err)
	}
	if third.CacheInfo.BuildHit || third.Stats.NodeCount != 4 {
		t.Errorf("active-only run = %+v %+v", third.CacheInfo, third.Stats)
	}
}

func TestRunnerRefreshBypassesCache(t *testing.T) {
	fc, _ := cache.NewFileCache(t.TempDir())
	runner := NewRunner(fc, nil, nil)
	ctx := context.Background()

	opts := Options{Rows: sampleRows}
	if _, _, err := runner.Build(ctx, opts); err != nil {
		t.Fatal(err)
	}
	opts.Refresh = true
	_, _, hit, err := runner.BuildWithCacheInfo(ctx, opts)
	if err != nil || hit {
		t.Errorf("refresh build hit=%v err=%v", hit, err)
	}
}
