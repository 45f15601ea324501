package cli

import (
	"io"
	"slices"
	"testing"

	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"pdf only", "pdf", []string{"pdf"}},
		{"trims and lowercases", " SVG , Dot ", []string{"svg", "dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("parseFormats(%q) length = %d, want %d", tt.input, len(got), len(tt.want))
				return
			}
			for i, v := range got {
				if v != tt.want[i] {
					t.Errorf("parseFormats(%q)[%d] = %q, want %q", tt.input, i, v, tt.want[i])
				}
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid pdf", []string{"pdf"}, false},
		{"valid png", []string{"png"}, false},
		{"valid json", []string{"json"}, false},
		{"valid multiple", []string{"svg", "pdf", "png"}, false},
		{"valid all", []string{"svg", "pdf", "png", "dot", "graphviz", "json"}, false},
		{"invalid format", []string{"invalid"}, true},
		{"mixed valid invalid", []string{"svg", "invalid"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pipeline.ValidateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestLayoutFlagsApply(t *testing.T) {
	base := pipeline.Options{Mode: graph.ModeTree, Width: 960, Height: 640}

	t.Run("unset flags keep config", func(t *testing.T) {
		opts := base
		(&layoutFlags{}).apply(&opts)
		if opts.Mode != graph.ModeTree || opts.Width != 960 || opts.Height != 640 {
			t.Errorf("apply() changed options: %+v", opts)
		}
	})

	t.Run("set flags override", func(t *testing.T) {
		opts := base
		f := layoutFlags{mode: " Graph ", width: 1200, height: 800, seed: 7, activeOnly: true, refresh: true}
		f.apply(&opts)
		if opts.Mode != graph.ModeGraph {
			t.Errorf("Mode = %q, want %q", opts.Mode, graph.ModeGraph)
		}
		if opts.Width != 1200 || opts.Height != 800 {
			t.Errorf("size = %vx%v, want 1200x800", opts.Width, opts.Height)
		}
		if opts.Force.Seed != 7 {
			t.Errorf("Force.Seed = %d, want 7", opts.Force.Seed)
		}
		if !opts.ActiveOnly || !opts.Refresh {
			t.Errorf("ActiveOnly = %v, Refresh = %v, want both true", opts.ActiveOnly, opts.Refresh)
		}
	})
}

func TestRenderFlagsApply(t *testing.T) {
	var opts pipeline.Options
	f := renderFlags{formats: "svg,png", scale: 3, title: "TSC"}
	if err := f.apply(&opts); err != nil {
		t.Fatalf("apply() error: %v", err)
	}
	if len(opts.Formats) != 2 || opts.Scale != 3 || opts.Title != "TSC" {
		t.Errorf("apply() = %+v", opts)
	}

	bad := renderFlags{formats: "svg,gif"}
	if err := bad.apply(&opts); err == nil {
		t.Error("apply() with gif should fail")
	}
}

func TestArtifactPath(t *testing.T) {
	tests := []struct {
		name   string
		format string
		input  string
		output string
		single bool
		want   string
	}{
		{"single with output", "svg", "groups.csv", "out/tsc.svg", true, "out/tsc.svg"},
		{"single derived", "png", "groups.csv", "", true, "groups.png"},
		{"multiple from output base", "pdf", "groups.csv", "out/tsc.svg", false, "out/tsc.pdf"},
		{"graphviz suffix", "graphviz", "groups.csv", "", false, "groups.graphviz.svg"},
		{"json suffix", "json", "groups.csv", "", false, "groups.layout.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := artifactPath(tt.format, tt.input, tt.output, tt.single); got != tt.want {
				t.Errorf("artifactPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrimLayoutSuffix(t *testing.T) {
	if got := trimLayoutSuffix("out/groups.layout.json"); got != "out/groups.json" {
		t.Errorf("trimLayoutSuffix() = %q", got)
	}
	if got := trimLayoutSuffix("scene.json"); got != "scene.json" {
		t.Errorf("trimLayoutSuffix() = %q", got)
	}
}

func TestFormatCompletion(t *testing.T) {
	complete := formatCompletion([]string{"svg", "dot"})
	tests := []struct {
		typed string
		want  []string
	}{
		{"", []string{"svg", "dot"}},
		{"s", []string{"svg", "dot"}},
		{"png,", []string{"png,svg", "png,dot"}},
		{"png,pdf,d", []string{"png,pdf,svg", "png,pdf,dot"}},
	}
	for _, tt := range tests {
		got, _ := complete(nil, nil, tt.typed)
		if !slices.Equal(got, tt.want) {
			t.Errorf("complete(%q) = %v, want %v", tt.typed, got, tt.want)
		}
	}
}

func TestRegisterCompletions(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	for _, name := range []string{"parse", "render", "visualize"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil {
			t.Fatal(err)
		}
		if cmd.ValidArgsFunction == nil {
			t.Errorf("%s has no argument completion", name)
		}
	}
}
