// Package pipeline provides the batch pipeline of orgtower.
//
// This package implements the rows → graph → layout → render pipeline used
// by the CLI and the HTTP server. By centralizing this logic, every entry
// point builds, lays out and renders the same rows the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Build: Load rows and merge them into a governance graph
//  2. Layout: Relax the force layout or place the hierarchical tree
//  3. Render: Generate output in various formats (SVG, PNG, PDF, DOT, JSON)
//     and Graphviz SVG of the raw graph
//
// Each stage can be run independently or as part of the complete pipeline,
// and each stage result is cached by a content hash of its input.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:  "groups.csv",
//	    Mode:    "tree",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	// Build only
//	g, report, err := runner.Build(ctx, opts)
//
//	// Layout with existing graph
//	layout, err := runner.Layout(ctx, g, opts)
//
//	// Render with existing layout
//	artifacts, err := runner.Render(ctx, layout, g, opts)
//
// Layouts produced here are static: the force simulation is relaxed
// synchronously until settled and fitted once. Interactive sessions use
// package scene instead.
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orgtower/pkg/cache"
	"github.com/matzehuels/orgtower/pkg/dag"
	"github.com/matzehuels/orgtower/pkg/dag/build"
	"github.com/matzehuels/orgtower/pkg/errors"
	"github.com/matzehuels/orgtower/pkg/graph"
	"github.com/matzehuels/orgtower/pkg/layout/force"
	"github.com/matzehuels/orgtower/pkg/layout/text"
	"github.com/matzehuels/orgtower/pkg/layout/tree"
	"github.com/matzehuels/orgtower/pkg/rows"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the default viewport width in pixels.
	DefaultWidth = 960.0

	// DefaultHeight is the default viewport height in pixels.
	DefaultHeight = 640.0

	// DefaultMode is the default layout mode.
	DefaultMode = graph.ModeTree

	// DefaultScale is the default PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatSVG      = "svg"
	FormatPNG      = "png"
	FormatPDF      = "pdf"
	FormatDOT      = "dot"
	FormatGraphviz = "graphviz" // Graphviz-rendered SVG of the raw graph
	FormatJSON     = "json"
)

// ValidFormats lists the supported output formats.
var ValidFormats = []string{FormatSVG, FormatPNG, FormatPDF, FormatDOT, FormatGraphviz, FormatJSON}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Build options
	Source     string     `json:"source,omitempty"` // Row file (.csv, .json, .yaml)
	Rows       []rows.Row `json:"rows,omitempty"`   // Rows given directly; take precedence over Source
	ActiveOnly bool       `json:"active_only,omitempty"`
	RootID     string     `json:"root_id,omitempty"`
	RootName   string     `json:"root_name,omitempty"`
	Refresh    bool       `json:"refresh,omitempty"`

	// Layout options
	Mode   string       `json:"mode,omitempty"`
	Width  float64      `json:"width,omitempty"`
	Height float64      `json:"height,omitempty"`
	Force  force.Config `json:"force"`
	Tree   tree.Config  `json:"tree"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`    // DOT labels carry status and leadership
	Interactive bool     `json:"interactive,omitempty"` // SVG hover highlighting
	Scale       float64  `json:"scale,omitempty"`       // PNG scale factor
	Title       string   `json:"title,omitempty"`

	// Runtime options (not serialized)
	Logger   *log.Logger   `json:"-"`
	Measurer text.Measurer `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the merged governance graph.
	Graph *dag.DAG

	// Report lists the data-quality fallbacks of the build. It is empty
	// when the graph came from the cache.
	Report build.Report

	// GraphHash is the content hash of the graph.
	GraphHash string

	// Layout is the placed scene.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	RowCount   int
	NodeCount  int
	EdgeCount  int
	BuildTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	BuildHit  bool // Whether the graph came from cache
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, ValidFormats...); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForBuild(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForBuild checks required fields for building.
func (o *Options) ValidateForBuild() error {
	if o.Rows == nil {
		if err := errors.ValidateRowSource(o.Source); err != nil {
			return err
		}
	}
	if o.RootID == "" {
		o.RootID = build.RootID
	}
	if o.RootName == "" {
		o.RootName = build.RootName
	}
	o.setLogger()
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
// The viewport size is propagated into both engine configurations.
func (o *Options) SetLayoutDefaults() {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.RootID == "" {
		o.RootID = build.RootID
	}
	o.Force.Width, o.Force.Height = o.Width, o.Height
	o.Tree.Width, o.Tree.Height = o.Width, o.Height
	o.Force.SetDefaults()
	o.Tree.SetDefaults()
	if o.Measurer == nil {
		o.Measurer = text.Approx{}
	}
	o.setLogger()
}

// ValidateForLayout validates and sets defaults for layout computation.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	return errors.ValidateMode(o.Mode)
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	o.setLogger()
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// IsTree returns true if this is a hierarchical tree layout.
func (o *Options) IsTree() bool {
	return o.Mode == graph.ModeTree
}

// IsGraph returns true if this is a force layout.
func (o *Options) IsGraph() bool {
	return o.Mode == graph.ModeGraph
}

// GraphKeyOpts returns cache key options for graph building.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{ActiveOnly: o.ActiveOnly, RootID: o.RootID}
}

// LayoutKeyOpts returns cache key options for layout computation.
// Params hashes the engine configuration of the selected mode.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	var params []byte
	if o.IsTree() {
		params, _ = json.Marshal(o.Tree)
	} else {
		params, _ = json.Marshal(o.Force)
	}
	return cache.LayoutKeyOpts{
		Mode:   o.Mode,
		Width:  o.Width,
		Height: o.Height,
		Seed:   o.Force.Seed,
		Params: cache.Hash(params),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	opts := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatDOT, FormatGraphviz:
		opts.Detailed = o.Detailed
	case FormatSVG, FormatPNG, FormatPDF:
		opts.Interactive = o.Interactive && format == FormatSVG
		opts.Title = o.Title
		if format == FormatPNG {
			opts.Scale = o.Scale
		}
	}
	return opts
}
